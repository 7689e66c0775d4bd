package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "github.com/redis/go-redis/v9"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

// ConvoCacheService is a short-TTL Redis cache over a conversation's ordered
// turn history. Every failure path is a cache miss, never an error to the
// caller.
type ConvoCacheService interface {
  GetMessages(ctx context.Context, conversationID uuid.UUID) ([]*types.ConversationMessage, bool)
  SetMessages(ctx context.Context, conversationID uuid.UUID, msgs []*types.ConversationMessage)
  Invalidate(ctx context.Context, conversationID uuid.UUID)
}

type convoCacheService struct {
  log    *logger.Logger
  client *redis.Client
  ttl    time.Duration
}

func NewConvoCacheService(log *logger.Logger, address, password string, ttl time.Duration) (ConvoCacheService, error) {
  serviceLog := log.With("service", "ConvoCacheService")
  client := redis.NewClient(&redis.Options{
    Addr:     address,
    Password: password,
    DB:       0,
  })
  ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
  defer cancel()
  if err := client.Ping(ctx).Err(); err != nil {
    return nil, fmt.Errorf("redis ping failed: %w", err)
  }
  return &convoCacheService{
    log:    serviceLog,
    client: client,
    ttl:    ttl,
  }, nil
}

func cacheKey(conversationID uuid.UUID) string {
  return "convo:messages:" + conversationID.String()
}

func (ccs *convoCacheService) GetMessages(ctx context.Context, conversationID uuid.UUID) ([]*types.ConversationMessage, bool) {
  raw, err := ccs.client.Get(ctx, cacheKey(conversationID)).Result()
  if err != nil {
    if err != redis.Nil {
      ccs.log.Debug("Cache read failed, treating as miss", "conversationID", conversationID, "error", err)
    }
    return nil, false
  }
  var msgs []*types.ConversationMessage
  if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
    ccs.log.Debug("Cache payload unmarshal failed, treating as miss", "conversationID", conversationID, "error", err)
    return nil, false
  }
  return msgs, true
}

func (ccs *convoCacheService) SetMessages(ctx context.Context, conversationID uuid.UUID, msgs []*types.ConversationMessage) {
  payload, err := json.Marshal(msgs)
  if err != nil {
    ccs.log.Debug("Cache payload marshal failed, skipping set", "conversationID", conversationID, "error", err)
    return
  }
  if err := ccs.client.Set(ctx, cacheKey(conversationID), payload, ccs.ttl).Err(); err != nil {
    ccs.log.Debug("Cache write failed, skipping", "conversationID", conversationID, "error", err)
  }
}

func (ccs *convoCacheService) Invalidate(ctx context.Context, conversationID uuid.UUID) {
  if err := ccs.client.Del(ctx, cacheKey(conversationID)).Err(); err != nil {
    ccs.log.Debug("Cache invalidation failed, skipping", "conversationID", conversationID, "error", err)
  }
}
