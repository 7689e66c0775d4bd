package repos

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type ConversationDocumentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, doc *types.ConversationDocument) (*types.ConversationDocument, error)
  GetByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.ConversationDocument, error)
}

type conversationDocumentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewConversationDocumentRepo(db *gorm.DB, baseLog *logger.Logger) ConversationDocumentRepo {
  return &conversationDocumentRepo{
    db:  db,
    log: baseLog.With("repo", "ConversationDocumentRepo"),
  }
}

func (cdr *conversationDocumentRepo) Create(ctx context.Context, tx *gorm.DB, doc *types.ConversationDocument) (*types.ConversationDocument, error) {
  if tx == nil {
    tx = cdr.db
  }
  if doc.ID == uuid.Nil {
    doc.ID = uuid.New()
  }
  if err := tx.WithContext(ctx).Create(doc).Error; err != nil {
    cdr.log.Error("failed to create conversation document", "error", err)
    return nil, fmt.Errorf("failed to create conversation document: %w", err)
  }
  return doc, nil
}

func (cdr *conversationDocumentRepo) GetByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.ConversationDocument, error) {
  if tx == nil {
    tx = cdr.db
  }
  var docs []*types.ConversationDocument
  if err := tx.WithContext(ctx).
    Where("conversation_id = ?", conversationID).
    Order("created_at ASC").
    Find(&docs).Error; err != nil {
    cdr.log.Error("failed to get conversation documents by conversation id", "error", err)
    return nil, fmt.Errorf("failed to get conversation documents by conversation id: %w", err)
  }
  return docs, nil
}
