package services

import (
  "context"
  "strings"
  "testing"
  "unicode/utf8"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

func newTestAdvisorService(t *testing.T, db *gorm.DB, sutra SutraService, notifier ConversationNotifier) AdvisorService {
  t.Helper()
  log := logger.NewNop()
  return NewAdvisorService(
    db,
    log,
    repos.NewConversationRepo(db, log),
    repos.NewConversationMessageRepo(db, log),
    repos.NewConversationDocumentRepo(db, log),
    sutra,
    NewAnalyzerService(log),
    nil,
    nil,
    notifier,
  )
}

func seedUser(t *testing.T, db *gorm.DB, email string) *types.User {
  t.Helper()
  user := &types.User{
    ID:                uuid.New(),
    Email:             email,
    Password:          "hashed",
    PreferredLanguage: "en",
    Currency:          "USD",
  }
  if err := db.Create(user).Error; err != nil {
    t.Fatalf("failed to seed user: %v", err)
  }
  return user
}

func TestGetAdviceCreatesConversation(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "ana@example.com")
  stub := &stubSutra{
    completeFn: func(_ context.Context, _ []ChatTurn) (string, error) {
      return "Track your expenses weekly.", nil
    },
  }
  notifier := &stubNotifier{}
  as := newTestAdvisorService(t, db, stub, notifier)

  result, err := as.GetAdvice(authedContext(user.ID), "How should I budget?", "en", nil)
  if err != nil {
    t.Fatalf("GetAdvice failed: %v", err)
  }
  if result.Answer != "Track your expenses weekly." {
    t.Errorf("unexpected answer: %q", result.Answer)
  }
  if result.ConversationID == uuid.Nil {
    t.Fatal("expected a conversation id")
  }

  conversation, err := as.GetConversation(authedContext(user.ID), result.ConversationID)
  if err != nil {
    t.Fatalf("GetConversation failed: %v", err)
  }
  if len(conversation.Messages) != 2 {
    t.Fatalf("expected 2 messages, got %d", len(conversation.Messages))
  }
  if conversation.Messages[0].Role != types.MessageRoleUser || conversation.Messages[1].Role != types.MessageRoleAssistant {
    t.Errorf("unexpected turn roles: %s, %s", conversation.Messages[0].Role, conversation.Messages[1].Role)
  }
  if conversation.Language != "en" {
    t.Errorf("expected language en, got %q", conversation.Language)
  }
  if len(notifier.updates) != 1 || notifier.updates[0] != result.ConversationID {
    t.Errorf("expected one conversation-updated event, got %v", notifier.updates)
  }
}

func TestGetAdviceContinuity(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "ben@example.com")
  stub := &stubSutra{}
  as := newTestAdvisorService(t, db, stub, nil)

  first, err := as.GetAdvice(authedContext(user.ID), "What is a good savings rate?", "en", nil)
  if err != nil {
    t.Fatalf("first GetAdvice failed: %v", err)
  }
  _, err = as.GetAdvice(authedContext(user.ID), "And how do I reach it?", "en", &first.ConversationID)
  if err != nil {
    t.Fatalf("second GetAdvice failed: %v", err)
  }

  if len(stub.completeCalls) != 2 {
    t.Fatalf("expected 2 model calls, got %d", len(stub.completeCalls))
  }
  secondCall := stub.completeCalls[1]
  // system + 2 history turns + new user message
  if len(secondCall) != 4 {
    t.Fatalf("expected 4 turns on the second call, got %d", len(secondCall))
  }
  if secondCall[0].Role != ChatRoleSystem {
    t.Errorf("expected leading system turn, got %q", secondCall[0].Role)
  }
  if secondCall[1].Content != "What is a good savings rate?" {
    t.Errorf("expected first history turn to carry the earlier question, got %q", secondCall[1].Content)
  }
  if secondCall[2].Role != ChatRoleAssistant {
    t.Errorf("expected assistant history turn, got %q", secondCall[2].Role)
  }
  if secondCall[3].Content != "And how do I reach it?" {
    t.Errorf("expected trailing user turn, got %q", secondCall[3].Content)
  }
}

func TestGetAdviceUnknownConversation(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "cat@example.com")
  as := newTestAdvisorService(t, db, &stubSutra{}, nil)

  missing := uuid.New()
  _, err := as.GetAdvice(authedContext(user.ID), "hello", "en", &missing)
  if err == nil {
    t.Fatal("expected unknown conversation to fail")
  }
  if apperr.KindOf(err) != apperr.KindNotFound {
    t.Errorf("expected not-found error, got kind %v", apperr.KindOf(err))
  }
}

func TestGetAdviceForeignConversation(t *testing.T) {
  db := openTestDB(t)
  owner := seedUser(t, db, "dora@example.com")
  intruder := seedUser(t, db, "eli@example.com")
  as := newTestAdvisorService(t, db, &stubSutra{}, nil)

  result, err := as.GetAdvice(authedContext(owner.ID), "my secret plans", "en", nil)
  if err != nil {
    t.Fatalf("GetAdvice failed: %v", err)
  }

  _, err = as.GetAdvice(authedContext(intruder.ID), "what were those plans?", "en", &result.ConversationID)
  if err == nil {
    t.Fatal("expected foreign conversation access to fail")
  }
  if apperr.KindOf(err) != apperr.KindAuthorization {
    t.Errorf("expected authorization error, got kind %v", apperr.KindOf(err))
  }

  if _, gErr := as.GetConversation(authedContext(intruder.ID), result.ConversationID); gErr == nil {
    t.Error("expected foreign conversation read to fail")
  }
}

// An upstream failure must leave the database untouched: no conversation row,
// no orphaned user turn.
func TestGetAdviceUpstreamFailureLeavesNoState(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "fin@example.com")
  stub := &stubSutra{
    completeFn: func(_ context.Context, _ []ChatTurn) (string, error) {
      return "", apperr.Upstream("advice service is temporarily unavailable", nil)
    },
  }
  as := newTestAdvisorService(t, db, stub, nil)

  _, err := as.GetAdvice(authedContext(user.ID), "hello", "en", nil)
  if err == nil {
    t.Fatal("expected upstream failure to propagate")
  }
  if apperr.KindOf(err) != apperr.KindUpstream {
    t.Errorf("expected upstream error, got kind %v", apperr.KindOf(err))
  }

  var conversations, messages int64
  db.Model(&types.Conversation{}).Count(&conversations)
  db.Model(&types.ConversationMessage{}).Count(&messages)
  if conversations != 0 || messages != 0 {
    t.Errorf("expected no rows after upstream failure, got %d conversations, %d messages", conversations, messages)
  }
}

func TestUploadDocumentRejectsUnsupportedType(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "gil@example.com")
  as := newTestAdvisorService(t, db, &stubSutra{}, nil)

  _, err := as.UploadDocument(authedContext(user.ID), "setup.exe", []byte("MZ"), nil)
  if err == nil {
    t.Fatal("expected unsupported file type to be rejected")
  }
  if apperr.KindOf(err) != apperr.KindValidation {
    t.Errorf("expected validation error, got kind %v", apperr.KindOf(err))
  }

  var conversations int64
  db.Model(&types.Conversation{}).Count(&conversations)
  if conversations != 0 {
    t.Errorf("expected no conversation rows after rejected upload, got %d", conversations)
  }
}

func TestUploadDocumentCSV(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "hana@example.com")
  stub := &stubSutra{
    completeFn: func(_ context.Context, _ []ChatTurn) (string, error) {
      return "Cut the subscription spend.", nil
    },
  }
  as := newTestAdvisorService(t, db, stub, nil)

  csvData := []byte("Date,Description,Amount\n2026-01-02,Rent,1200\n2026-01-05,Groceries,240.50\n")
  result, err := as.UploadDocument(authedContext(user.ID), "spending.csv", csvData, nil)
  if err != nil {
    t.Fatalf("UploadDocument failed: %v", err)
  }
  if result.FileType != "CSV File" {
    t.Errorf("expected CSV File, got %q", result.FileType)
  }
  if result.AIAdvice != "Cut the subscription spend." {
    t.Errorf("unexpected advice: %q", result.AIAdvice)
  }
  foundFinancial := false
  for _, insight := range result.Insights {
    if strings.Contains(insight, "Amount") {
      foundFinancial = true
    }
  }
  if !foundFinancial {
    t.Errorf("expected an insight naming the Amount column, got %v", result.Insights)
  }

  conversation, err := as.GetConversation(authedContext(user.ID), result.ConversationID)
  if err != nil {
    t.Fatalf("GetConversation failed: %v", err)
  }
  if len(conversation.Documents) != 1 {
    t.Fatalf("expected 1 document, got %d", len(conversation.Documents))
  }
  if len(conversation.Messages) != 2 {
    t.Fatalf("expected 2 messages, got %d", len(conversation.Messages))
  }
  if !strings.Contains(conversation.Messages[0].Content, "spending.csv") {
    t.Errorf("expected upload marker turn to name the file, got %q", conversation.Messages[0].Content)
  }
}

// Previews of multilingual document text must never cut a character in half.
func TestDocumentPreviewsKeepRuneBoundaries(t *testing.T) {
  tamil := strings.Repeat("த", 1200) // 3 bytes per rune

  pdfPrompt := buildDocumentPrompt(&DocumentAnalysis{
    FileType:    "PDF Document",
    Summary:     "statement",
    TextContent: tamil,
  })
  if !utf8.ValidString(pdfPrompt) {
    t.Error("expected the document prompt to stay valid UTF-8")
  }
  if got := strings.Count(pdfPrompt, "த"); got != 1000 {
    t.Errorf("expected the preview cut at 1000 characters, got %d", got)
  }

  analysisJSON := `{"file_type":"PDF Document","summary":"statement","text_content":"` + tamil + `"}`
  systemPrompt := buildAdviceSystemPrompt("ta", []*types.ConversationDocument{{
    FileName:       "statement.pdf",
    FileType:       "PDF Document",
    AnalysisResult: datatypes.JSON(analysisJSON),
  }})
  if !utf8.ValidString(systemPrompt) {
    t.Error("expected the advice system prompt to stay valid UTF-8")
  }
  if got := strings.Count(systemPrompt, "த"); got != 500 {
    t.Errorf("expected the context preview cut at 500 characters, got %d", got)
  }
}

func TestTruncateRunes(t *testing.T) {
  if got := truncateRunes("short", 10); got != "short" {
    t.Errorf("expected short input untouched, got %q", got)
  }
  if got := truncateRunes("abcdef", 3); got != "abc" {
    t.Errorf("expected abc, got %q", got)
  }
  got := truncateRunes("ஆஆஆஆ", 2)
  if got != "ஆஆ" || !utf8.ValidString(got) {
    t.Errorf("expected two whole runes, got %q", got)
  }
}

func TestGetUserConversationsOrdering(t *testing.T) {
  db := openTestDB(t)
  user := seedUser(t, db, "iris@example.com")
  as := newTestAdvisorService(t, db, &stubSutra{}, nil)

  first, err := as.GetAdvice(authedContext(user.ID), "first topic", "en", nil)
  if err != nil {
    t.Fatalf("GetAdvice failed: %v", err)
  }
  second, err := as.GetAdvice(authedContext(user.ID), "second topic", "en", nil)
  if err != nil {
    t.Fatalf("GetAdvice failed: %v", err)
  }
  // Touch the first conversation again so it becomes the most recent.
  if _, err := as.GetAdvice(authedContext(user.ID), "back to the first", "en", &first.ConversationID); err != nil {
    t.Fatalf("GetAdvice failed: %v", err)
  }

  conversations, err := as.GetUserConversations(authedContext(user.ID))
  if err != nil {
    t.Fatalf("GetUserConversations failed: %v", err)
  }
  if len(conversations) != 2 {
    t.Fatalf("expected 2 conversations, got %d", len(conversations))
  }
  if conversations[0].ID != first.ConversationID {
    t.Errorf("expected most recently touched conversation first, got %s (want %s)", conversations[0].ID, first.ConversationID)
  }
  if conversations[1].ID != second.ConversationID {
    t.Errorf("expected the untouched conversation second, got %s", conversations[1].ID)
  }
}
