package repos

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type ConversationRepo interface {
  Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Conversation, error)
  GetByIDPreloaded(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Conversation, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Conversation, error)
  Update(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error)
}

type conversationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
  return &conversationRepo{
    db:  db,
    log: baseLog.With("repo", "ConversationRepo"),
  }
}

func (cr *conversationRepo) Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error) {
  if tx == nil {
    tx = cr.db
  }
  if conversation.ID == uuid.Nil {
    conversation.ID = uuid.New()
  }
  if err := tx.WithContext(ctx).Create(conversation).Error; err != nil {
    cr.log.Error("failed to create conversation", "error", err)
    return nil, fmt.Errorf("failed to create conversation: %w", err)
  }
  return conversation, nil
}

func (cr *conversationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Conversation, error) {
  if tx == nil {
    tx = cr.db
  }
  var conversation types.Conversation
  if err := tx.WithContext(ctx).
    Where("id = ?", id).
    First(&conversation).Error; err != nil {
    return nil, err
  }
  return &conversation, nil
}

// GetByIDPreloaded loads a conversation with its messages and documents in
// arrival order.
func (cr *conversationRepo) GetByIDPreloaded(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Conversation, error) {
  if tx == nil {
    tx = cr.db
  }
  var conversation types.Conversation
  if err := tx.WithContext(ctx).
    Preload("Messages", func(db *gorm.DB) *gorm.DB {
      return db.Order("created_at ASC")
    }).
    Preload("Documents", func(db *gorm.DB) *gorm.DB {
      return db.Order("created_at ASC")
    }).
    Where("id = ?", id).
    First(&conversation).Error; err != nil {
    return nil, err
  }
  return &conversation, nil
}

func (cr *conversationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Conversation, error) {
  if tx == nil {
    tx = cr.db
  }
  var conversations []*types.Conversation
  if err := tx.WithContext(ctx).
    Preload("Messages", func(db *gorm.DB) *gorm.DB {
      return db.Order("created_at ASC")
    }).
    Preload("Documents", func(db *gorm.DB) *gorm.DB {
      return db.Order("created_at ASC")
    }).
    Where("user_id = ?", userID).
    Order("updated_at DESC").
    Find(&conversations).Error; err != nil {
    cr.log.Error("failed to get conversations by user id", "error", err)
    return nil, fmt.Errorf("failed to get conversations by user id: %w", err)
  }
  return conversations, nil
}

func (cr *conversationRepo) Update(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error) {
  if tx == nil {
    tx = cr.db
  }
  if err := tx.WithContext(ctx).
    Model(&types.Conversation{}).
    Where("id = ?", conversation.ID).
    Updates(map[string]interface{}{
      "language":   conversation.Language,
      "title":      conversation.Title,
      "updated_at": conversation.UpdatedAt,
    }).Error; err != nil {
    cr.log.Error("failed to update conversation", "error", err, "conversationID", conversation.ID)
    return nil, fmt.Errorf("failed to update conversation: %w", err)
  }
  return conversation, nil
}
