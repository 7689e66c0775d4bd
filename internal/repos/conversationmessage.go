package repos

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type ConversationMessageRepo interface {
  CreateMessages(ctx context.Context, tx *gorm.DB, msgs []*types.ConversationMessage) ([]*types.ConversationMessage, error)
  GetByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.ConversationMessage, error)
}

type conversationMessageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewConversationMessageRepo(db *gorm.DB, baseLog *logger.Logger) ConversationMessageRepo {
  return &conversationMessageRepo{
    db:  db,
    log: baseLog.With("repo", "ConversationMessageRepo"),
  }
}

func (cmr *conversationMessageRepo) CreateMessages(ctx context.Context, tx *gorm.DB, msgs []*types.ConversationMessage) ([]*types.ConversationMessage, error) {
  if tx == nil {
    tx = cmr.db
  }
  if len(msgs) == 0 {
    return msgs, nil
  }
  for _, msg := range msgs {
    if msg.ID == uuid.Nil {
      msg.ID = uuid.New()
    }
  }
  if err := tx.WithContext(ctx).Create(&msgs).Error; err != nil {
    cmr.log.Error("failed to create conversation messages", "error", err)
    return nil, fmt.Errorf("failed to create conversation messages: %w", err)
  }
  return msgs, nil
}

func (cmr *conversationMessageRepo) GetByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.ConversationMessage, error) {
  if tx == nil {
    tx = cmr.db
  }
  var msgs []*types.ConversationMessage
  if err := tx.WithContext(ctx).
    Where("conversation_id = ?", conversationID).
    Order("created_at ASC").
    Find(&msgs).Error; err != nil {
    cmr.log.Error("failed to get conversation messages by conversation id", "error", err)
    return nil, fmt.Errorf("failed to get conversation messages by conversation id: %w", err)
  }
  return msgs, nil
}
