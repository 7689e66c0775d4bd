package repos

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type TransactionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, transactions []*types.Transaction) ([]*types.Transaction, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Transaction, error)
}

type transactionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
  return &transactionRepo{
    db:  db,
    log: baseLog.With("repo", "TransactionRepo"),
  }
}

func (tr *transactionRepo) Create(ctx context.Context, tx *gorm.DB, transactions []*types.Transaction) ([]*types.Transaction, error) {
  if tx == nil {
    tx = tr.db
  }
  if len(transactions) == 0 {
    return transactions, nil
  }
  for _, transaction := range transactions {
    if transaction.ID == uuid.Nil {
      transaction.ID = uuid.New()
    }
  }
  if err := tx.WithContext(ctx).Create(&transactions).Error; err != nil {
    tr.log.Error("failed to create transactions", "error", err)
    return nil, fmt.Errorf("failed to create transactions: %w", err)
  }
  return transactions, nil
}

func (tr *transactionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Transaction, error) {
  if tx == nil {
    tx = tr.db
  }
  var transactions []*types.Transaction
  if err := tx.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("date DESC").
    Find(&transactions).Error; err != nil {
    tr.log.Error("failed to get transactions by user id", "error", err)
    return nil, fmt.Errorf("failed to get transactions by user id: %w", err)
  }
  return transactions, nil
}
