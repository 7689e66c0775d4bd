package services

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/normalization"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/requestdata"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type TransactionService interface {
  GetMyTransactions(ctx context.Context) ([]*types.Transaction, error)
  CreateTransaction(ctx context.Context, transaction *types.Transaction) (*types.Transaction, error)
}

type transactionService struct {
  db              *gorm.DB
  log             *logger.Logger
  transactionRepo repos.TransactionRepo
}

func NewTransactionService(db *gorm.DB, log *logger.Logger, transactionRepo repos.TransactionRepo) TransactionService {
  return &transactionService{
    db:              db,
    log:             log.With("service", "TransactionService"),
    transactionRepo: transactionRepo,
  }
}

func (ts *transactionService) GetMyTransactions(ctx context.Context) ([]*types.Transaction, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    ts.log.Warn("No Request Data found in context, Cannot proceed.")
    return nil, apperr.Authentication("invalid or expired token")
  }
  return ts.transactionRepo.GetByUserID(ctx, nil, rd.UserID)
}

func (ts *transactionService) CreateTransaction(ctx context.Context, transaction *types.Transaction) (*types.Transaction, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    ts.log.Warn("No Request Data found in context, Cannot proceed.")
    return nil, apperr.Authentication("invalid or expired token")
  }
  if transaction == nil {
    return nil, apperr.Validation("transaction body is required")
  }

  //1) Ownership is always the caller, never the payload
  transaction.UserID = rd.UserID

  //2) Normalize and default
  transaction.Description = normalization.ParseInputStringPtr(transaction.Description)
  transaction.Category = normalization.ParseInputStringPtr(transaction.Category)
  transaction.Currency = normalization.ParseCurrencyCode(transaction.Currency)
  if transaction.Currency == "" {
    if rd.Currency != "" {
      transaction.Currency = normalization.ParseCurrencyCode(rd.Currency)
    } else {
      transaction.Currency = "USD"
    }
  }
  if transaction.Date.IsZero() {
    transaction.Date = time.Now()
  }

  //3) Persist
  if err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    created, cErr := ts.transactionRepo.Create(ctx, tx, []*types.Transaction{transaction})
    if cErr != nil {
      ts.log.Warn("Failed to create transaction, Cannot proceed. Returning error.", "error", cErr)
      return cErr
    }
    transaction = created[0]
    return nil
  }); err != nil {
    return nil, err
  }
  return transaction, nil
}
