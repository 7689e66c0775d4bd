package services

import (
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
  "gorm.io/gorm"
)

func newTestTransactionService(t *testing.T, db *gorm.DB) TransactionService {
  t.Helper()
  log := logger.NewNop()
  return NewTransactionService(db, log, repos.NewTransactionRepo(db, log))
}

func TestCreateTransactionDefaults(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "jon@example.com")
  ts := newTestTransactionService(t, db)

  created, err := ts.CreateTransaction(authedContext(user.ID), &types.Transaction{Amount: -42.50})
  if err != nil {
    t.Fatalf("CreateTransaction failed: %v", err)
  }
  if created.Currency != "USD" {
    t.Errorf("expected USD default, got %q", created.Currency)
  }
  if created.Date.IsZero() {
    t.Error("expected date to default to now")
  }
  if created.UserID != user.ID {
    t.Errorf("expected owner %s, got %s", user.ID, created.UserID)
  }
}

func TestCreateTransactionNormalizesCurrency(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "kim@example.com")
  ts := newTestTransactionService(t, db)

  created, err := ts.CreateTransaction(authedContext(user.ID), &types.Transaction{Amount: 10, Currency: " eur "})
  if err != nil {
    t.Fatalf("CreateTransaction failed: %v", err)
  }
  if created.Currency != "EUR" {
    t.Errorf("expected EUR, got %q", created.Currency)
  }
}

func TestCreateTransactionNormalizesDescriptionAndCategory(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "noa@example.com")
  ts := newTestTransactionService(t, db)

  description := "  weekly   groceries "
  category := " Food "
  created, err := ts.CreateTransaction(authedContext(user.ID), &types.Transaction{
    Amount:      -80,
    Description: &description,
    Category:    &category,
  })
  if err != nil {
    t.Fatalf("CreateTransaction failed: %v", err)
  }
  if created.Description == nil || *created.Description != "weekly groceries" {
    t.Errorf("expected normalized description, got %v", created.Description)
  }
  if created.Category == nil || *created.Category != "Food" {
    t.Errorf("expected trimmed category, got %v", created.Category)
  }
}

func TestGetMyTransactionsScopedAndOrdered(t *testing.T) {
  db := openTestDB(t)
  owner := seedUser(t, db, "lea@example.com")
  other := seedUser(t, db, "max@example.com")
  ts := newTestTransactionService(t, db)

  older := time.Now().Add(-48 * time.Hour)
  newer := time.Now().Add(-1 * time.Hour)
  if _, err := ts.CreateTransaction(authedContext(owner.ID), &types.Transaction{Amount: 1, Date: older}); err != nil {
    t.Fatalf("CreateTransaction failed: %v", err)
  }
  if _, err := ts.CreateTransaction(authedContext(owner.ID), &types.Transaction{Amount: 2, Date: newer}); err != nil {
    t.Fatalf("CreateTransaction failed: %v", err)
  }
  if _, err := ts.CreateTransaction(authedContext(other.ID), &types.Transaction{Amount: 3}); err != nil {
    t.Fatalf("CreateTransaction failed: %v", err)
  }

  mine, err := ts.GetMyTransactions(authedContext(owner.ID))
  if err != nil {
    t.Fatalf("GetMyTransactions failed: %v", err)
  }
  if len(mine) != 2 {
    t.Fatalf("expected 2 transactions, got %d", len(mine))
  }
  if mine[0].Amount != 2 || mine[1].Amount != 1 {
    t.Errorf("expected newest-first ordering, got %v then %v", mine[0].Amount, mine[1].Amount)
  }
}

func TestTransactionRequiresAuth(t *testing.T) {
  db := openTestDB(t)
  ts := newTestTransactionService(t, db)

  _, err := ts.GetMyTransactions(authedContext(uuid.Nil))
  if err == nil {
    t.Fatal("expected unauthenticated call to fail")
  }
  if apperr.KindOf(err) != apperr.KindAuthentication {
    t.Errorf("expected authentication error, got kind %v", apperr.KindOf(err))
  }
}
