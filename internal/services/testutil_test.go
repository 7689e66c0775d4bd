package services

import (
  "context"
  "testing"

  "github.com/glebarez/sqlite"
  "github.com/google/uuid"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/requestdata"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    t.Fatalf("failed to open test database: %v", err)
  }
  if err := db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Conversation{},
    &types.ConversationMessage{},
    &types.ConversationDocument{},
    &types.Transaction{},
  ); err != nil {
    t.Fatalf("failed to migrate test database: %v", err)
  }
  return db
}

func authedContext(userID uuid.UUID) context.Context {
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
    UserID: userID,
  })
}

// stubSutra lets tests script the model's behavior and capture what was sent.
type stubSutra struct {
  completeFn func(ctx context.Context, turns []ChatTurn) (string, error)
  detectFn   func(ctx context.Context, text string) (string, error)

  completeCalls [][]ChatTurn
}

func (s *stubSutra) Complete(ctx context.Context, turns []ChatTurn) (string, error) {
  s.completeCalls = append(s.completeCalls, turns)
  if s.completeFn != nil {
    return s.completeFn(ctx, turns)
  }
  return "stub answer", nil
}

func (s *stubSutra) DetectLanguage(ctx context.Context, text string) (string, error) {
  if s.detectFn != nil {
    return s.detectFn(ctx, text)
  }
  return "en", nil
}

type stubNotifier struct {
  updates []uuid.UUID
}

func (n *stubNotifier) ConversationUpdated(userID uuid.UUID, conversationID uuid.UUID) {
  n.updates = append(n.updates, conversationID)
}
