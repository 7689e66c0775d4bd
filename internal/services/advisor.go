package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/normalization"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/requestdata"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

// ConversationNotifier pushes a conversation-updated event to the owner's live
// socket clients. Implementations must never block the caller.
type ConversationNotifier interface {
  ConversationUpdated(userID uuid.UUID, conversationID uuid.UUID)
}

// AdviceResult is the outcome of one advice turn.
type AdviceResult struct {
  Answer         string    `json:"answer"`
  ConversationID uuid.UUID `json:"conversation_id"`
}

// DocumentUploadResult is the outcome of one document upload turn.
type DocumentUploadResult struct {
  FileName       string            `json:"file_name"`
  FileType       string            `json:"file_type"`
  FileSize       int64             `json:"file_size"`
  BucketKey      string            `json:"bucket_key,omitempty"`
  BucketURL      string            `json:"bucket_url,omitempty"`
  Analysis       *DocumentAnalysis `json:"analysis"`
  AIAdvice       string            `json:"ai_advice"`
  Insights       []string          `json:"insights"`
  ConversationID uuid.UUID         `json:"conversation_id"`
}

type AdvisorService interface {
  GetAdvice(ctx context.Context, message string, language string, conversationID *uuid.UUID) (*AdviceResult, error)
  UploadDocument(ctx context.Context, fileName string, data []byte, conversationID *uuid.UUID) (*DocumentUploadResult, error)
  GetUserConversations(ctx context.Context) ([]*types.Conversation, error)
  GetConversation(ctx context.Context, conversationID uuid.UUID) (*types.Conversation, error)
}

type advisorService struct {
  db              *gorm.DB
  log             *logger.Logger
  conversationRepo repos.ConversationRepo
  messageRepo     repos.ConversationMessageRepo
  documentRepo    repos.ConversationDocumentRepo
  sutraService    SutraService
  analyzerService AnalyzerService
  bucketService   BucketService
  convoCache      ConvoCacheService
  notifier        ConversationNotifier
}

func NewAdvisorService(
  db *gorm.DB,
  log *logger.Logger,
  conversationRepo repos.ConversationRepo,
  messageRepo repos.ConversationMessageRepo,
  documentRepo repos.ConversationDocumentRepo,
  sutraService SutraService,
  analyzerService AnalyzerService,
  bucketService BucketService,
  convoCache ConvoCacheService,
  notifier ConversationNotifier,
) AdvisorService {
  serviceLog := log.With("service", "AdvisorService")
  return &advisorService{
    db:              db,
    log:             serviceLog,
    conversationRepo: conversationRepo,
    messageRepo:     messageRepo,
    documentRepo:    documentRepo,
    sutraService:    sutraService,
    analyzerService: analyzerService,
    bucketService:   bucketService,
    convoCache:      convoCache,
    notifier:        notifier,
  }
}

//----------------------------------------------------------------------------------------------------------------------
// GetAdvice
//----------------------------------------------------------------------------------------------------------------------

func (as *advisorService) GetAdvice(ctx context.Context, message string, language string, conversationID *uuid.UUID) (*AdviceResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    as.log.Warn("No Request Data found in context, Cannot proceed.")
    return nil, apperr.Authentication("invalid or expired token")
  }

  //1) Normalize and validate input
  message = normalization.ParseInputString(message)
  if message == "" {
    as.log.Warn("Empty advice message, Cannot proceed. Returning error.")
    return nil, apperr.Validation("message must not be empty")
  }
  language = normalization.ParseLanguageCode(language)

  //2) Resolve conversation and load context
  conversation, isNew, rErr := as.resolveConversation(ctx, rd.UserID, conversationID)
  if rErr != nil {
    return nil, rErr
  }
  history, documents, cErr := as.loadConversationContext(ctx, conversation, isNew)
  if cErr != nil {
    return nil, cErr
  }

  //3) Detect language when the caller didn't name one
  if language == "" {
    detected, dErr := as.sutraService.DetectLanguage(ctx, message)
    if dErr != nil {
      return nil, dErr
    }
    language = detected
  }

  //4) Ask the model BEFORE touching the database, so an upstream failure
  //   leaves no partial conversation behind
  turns := []ChatTurn{{Role: ChatRoleSystem, Content: buildAdviceSystemPrompt(language, documents)}}
  turns = append(turns, historyTurns(history)...)
  turns = append(turns, ChatTurn{Role: ChatRoleUser, Content: message})
  answer, aErr := as.sutraService.Complete(ctx, turns)
  if aErr != nil {
    return nil, aErr
  }

  //5) Commit the full turn pair atomically
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if isNew {
      if _, cErr := as.conversationRepo.Create(ctx, tx, conversation); cErr != nil {
        as.log.Warn("Failed to create conversation, Cannot proceed. Returning error.", "error", cErr)
        return fmt.Errorf("Failed to create conversation: %w", cErr)
      }
    }
    msgs := []*types.ConversationMessage{
      {ConversationID: conversation.ID, Role: types.MessageRoleUser, Content: message},
      {ConversationID: conversation.ID, Role: types.MessageRoleAssistant, Content: answer},
    }
    if _, mErr := as.messageRepo.CreateMessages(ctx, tx, msgs); mErr != nil {
      as.log.Warn("Failed to store conversation turn, Cannot proceed. Returning error.", "error", mErr)
      return fmt.Errorf("Failed to store conversation turn: %w", mErr)
    }
    conversation.Language = language
    conversation.UpdatedAt = time.Now()
    if _, uErr := as.conversationRepo.Update(ctx, tx, conversation); uErr != nil {
      as.log.Warn("Failed to update conversation, Cannot proceed. Returning error.", "error", uErr)
      return fmt.Errorf("Failed to update conversation: %w", uErr)
    }
    return nil
  }); err != nil {
    return nil, err
  }

  //6) Post-commit bookkeeping
  as.afterConversationWrite(ctx, rd.UserID, conversation.ID)

  return &AdviceResult{
    Answer:         answer,
    ConversationID: conversation.ID,
  }, nil
}

//----------------------------------------------------------------------------------------------------------------------
// UploadDocument
//----------------------------------------------------------------------------------------------------------------------

func (as *advisorService) UploadDocument(ctx context.Context, fileName string, data []byte, conversationID *uuid.UUID) (*DocumentUploadResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    as.log.Warn("No Request Data found in context, Cannot proceed.")
    return nil, apperr.Authentication("invalid or expired token")
  }
  as.log.Info("Starting document upload", "fileName", fileName, "size", len(data))

  //1) Reject unsupported or oversized files before any other work
  if vErr := as.analyzerService.ValidateUpload(fileName, int64(len(data))); vErr != nil {
    return nil, vErr
  }
  fileType := as.analyzerService.FileTypeFor(fileName)

  //2) Resolve conversation and load its turn history
  conversation, isNew, rErr := as.resolveConversation(ctx, rd.UserID, conversationID)
  if rErr != nil {
    return nil, rErr
  }
  history, _, cErr := as.loadConversationContext(ctx, conversation, isNew)
  if cErr != nil {
    return nil, cErr
  }

  //3) Analyze the document
  analysis, aErr := as.analyzerService.Analyze(ctx, fileName, data)
  if aErr != nil {
    return nil, aErr
  }
  as.log.Info("Document analysis completed", "fileType", analysis.FileType)
  insights := as.analyzerService.GenerateInsights(analysis)

  //4) Detect the document language and generate advice, again before any
  //   database write
  language := "en"
  if analysis.TextContent != "" {
    detected, dErr := as.sutraService.DetectLanguage(ctx, analysis.TextContent)
    if dErr != nil {
      return nil, dErr
    }
    language = detected
  }
  turns := []ChatTurn{{Role: ChatRoleSystem, Content: buildDocumentSystemPrompt(language, len(history) > 0)}}
  turns = append(turns, historyTurns(history)...)
  turns = append(turns, ChatTurn{Role: ChatRoleUser, Content: buildDocumentPrompt(analysis)})
  advice, sErr := as.sutraService.Complete(ctx, turns)
  if sErr != nil {
    return nil, sErr
  }

  //5) Store the raw file in the bucket (best effort, the analysis already
  //   holds everything the advisor needs)
  bucketKey := ""
  bucketURL := ""
  if as.bucketService != nil {
    key := fmt.Sprintf("documents/%s%s", uuid.New().String(), normalization.ParseFileExtension(fileName))
    url, uErr := as.bucketService.UploadObject(ctx, key, "application/octet-stream", data)
    if uErr != nil {
      as.log.Warn("Failed to store raw document in bucket, continuing without it", "error", uErr)
    } else {
      bucketKey = key
      bucketURL = url
    }
  }

  //6) Commit conversation, document row and turn pair atomically
  analysisJSON, mErr := json.Marshal(analysis)
  if mErr != nil {
    as.log.Warn("Failed to marshal analysis result, Cannot proceed. Returning error.", "error", mErr)
    return nil, apperr.Internal(fmt.Errorf("failed to marshal analysis result: %w", mErr))
  }
  doc := &types.ConversationDocument{
    ConversationID: conversation.ID,
    FileName:       fileName,
    BucketKey:      bucketKey,
    FileType:       fileType,
    FileSize:       int64(len(data)),
    AnalysisResult: datatypes.JSON(analysisJSON),
  }
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if isNew {
      if _, cErr := as.conversationRepo.Create(ctx, tx, conversation); cErr != nil {
        as.log.Warn("Failed to create conversation, Cannot proceed. Returning error.", "error", cErr)
        return fmt.Errorf("Failed to create conversation: %w", cErr)
      }
    }
    if _, dErr := as.documentRepo.Create(ctx, tx, doc); dErr != nil {
      as.log.Warn("Failed to store conversation document, Cannot proceed. Returning error.", "error", dErr)
      return fmt.Errorf("Failed to store conversation document: %w", dErr)
    }
    userMetadata, _ := json.Marshal(map[string]interface{}{
      "file_id":   doc.ID,
      "file_type": fileType,
    })
    assistantMetadata, _ := json.Marshal(map[string]interface{}{
      "insights": insights,
    })
    msgs := []*types.ConversationMessage{
      {
        ConversationID: conversation.ID,
        Role:           types.MessageRoleUser,
        Content:        fmt.Sprintf("Uploaded document: %s", fileName),
        Metadata:       datatypes.JSON(userMetadata),
      },
      {
        ConversationID: conversation.ID,
        Role:           types.MessageRoleAssistant,
        Content:        advice,
        Metadata:       datatypes.JSON(assistantMetadata),
      },
    }
    if _, mErr := as.messageRepo.CreateMessages(ctx, tx, msgs); mErr != nil {
      as.log.Warn("Failed to store conversation turn, Cannot proceed. Returning error.", "error", mErr)
      return fmt.Errorf("Failed to store conversation turn: %w", mErr)
    }
    conversation.Language = language
    conversation.UpdatedAt = time.Now()
    if _, uErr := as.conversationRepo.Update(ctx, tx, conversation); uErr != nil {
      as.log.Warn("Failed to update conversation, Cannot proceed. Returning error.", "error", uErr)
      return fmt.Errorf("Failed to update conversation: %w", uErr)
    }
    return nil
  }); err != nil {
    // Do not leave an orphaned object behind when the commit failed.
    if as.bucketService != nil && bucketKey != "" {
      if dErr := as.bucketService.DeleteObject(ctx, bucketKey); dErr != nil {
        as.log.Warn("Failed to clean up bucket object after rollback", "key", bucketKey, "error", dErr)
      }
    }
    return nil, err
  }

  //7) Post-commit bookkeeping
  as.afterConversationWrite(ctx, rd.UserID, conversation.ID)
  as.log.Info("Document upload completed", "fileName", fileName, "conversationID", conversation.ID)

  return &DocumentUploadResult{
    FileName:       fileName,
    FileType:       fileType,
    FileSize:       int64(len(data)),
    BucketKey:      bucketKey,
    BucketURL:      bucketURL,
    Analysis:       analysis,
    AIAdvice:       advice,
    Insights:       insights,
    ConversationID: conversation.ID,
  }, nil
}

//----------------------------------------------------------------------------------------------------------------------
// Conversation reads
//----------------------------------------------------------------------------------------------------------------------

func (as *advisorService) GetUserConversations(ctx context.Context) ([]*types.Conversation, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    as.log.Warn("No Request Data found in context, Cannot proceed.")
    return nil, apperr.Authentication("invalid or expired token")
  }
  return as.conversationRepo.GetByUserID(ctx, nil, rd.UserID)
}

func (as *advisorService) GetConversation(ctx context.Context, conversationID uuid.UUID) (*types.Conversation, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    as.log.Warn("No Request Data found in context, Cannot proceed.")
    return nil, apperr.Authentication("invalid or expired token")
  }
  conversation, err := as.conversationRepo.GetByIDPreloaded(ctx, nil, conversationID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, apperr.NotFound("conversation not found")
    }
    as.log.Warn("Failed to load conversation, Cannot proceed. Returning error.", "error", err)
    return nil, fmt.Errorf("failed to load conversation: %w", err)
  }
  if conversation.UserID != rd.UserID {
    as.log.Warn("Conversation belongs to another user", "conversationID", conversationID)
    return nil, apperr.Authorization("conversation belongs to another user")
  }
  return conversation, nil
}

//----------------------------------------------------------------------------------------------------------------------
// Helpers
//----------------------------------------------------------------------------------------------------------------------

// resolveConversation returns an existing owned conversation, or an unsaved
// fresh one when no ID was given. The fresh row is only persisted together
// with its first turn.
func (as *advisorService) resolveConversation(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID) (*types.Conversation, bool, error) {
  if conversationID == nil || *conversationID == uuid.Nil {
    return &types.Conversation{
      ID:       uuid.New(),
      UserID:   userID,
      Language: "en",
    }, true, nil
  }
  conversation, err := as.conversationRepo.GetByID(ctx, nil, *conversationID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, false, apperr.NotFound("conversation not found")
    }
    as.log.Warn("Failed to load conversation, Cannot proceed. Returning error.", "error", err)
    return nil, false, fmt.Errorf("failed to load conversation: %w", err)
  }
  if conversation.UserID != userID {
    as.log.Warn("Conversation belongs to another user", "conversationID", *conversationID)
    return nil, false, apperr.Authorization("conversation belongs to another user")
  }
  return conversation, false, nil
}

func (as *advisorService) loadConversationContext(ctx context.Context, conversation *types.Conversation, isNew bool) ([]*types.ConversationMessage, []*types.ConversationDocument, error) {
  if isNew {
    return nil, nil, nil
  }
  var history []*types.ConversationMessage
  cached := false
  if as.convoCache != nil {
    history, cached = as.convoCache.GetMessages(ctx, conversation.ID)
  }
  if !cached {
    loaded, err := as.messageRepo.GetByConversationID(ctx, nil, conversation.ID)
    if err != nil {
      return nil, nil, err
    }
    history = loaded
    if as.convoCache != nil {
      as.convoCache.SetMessages(ctx, conversation.ID, history)
    }
  }
  documents, err := as.documentRepo.GetByConversationID(ctx, nil, conversation.ID)
  if err != nil {
    return nil, nil, err
  }
  return history, documents, nil
}

func (as *advisorService) afterConversationWrite(ctx context.Context, userID, conversationID uuid.UUID) {
  if as.convoCache != nil {
    as.convoCache.Invalidate(ctx, conversationID)
  }
  if as.notifier != nil {
    as.notifier.ConversationUpdated(userID, conversationID)
  }
}

// truncateRunes cuts s to at most limit runes so a multi-byte sequence is
// never split mid-character.
func truncateRunes(s string, limit int) string {
  if len(s) <= limit {
    return s
  }
  count := 0
  for i := range s {
    if count == limit {
      return s[:i]
    }
    count++
  }
  return s
}

func historyTurns(history []*types.ConversationMessage) []ChatTurn {
  turns := make([]ChatTurn, 0, len(history))
  for _, msg := range history {
    switch msg.Role {
    case types.MessageRoleUser:
      turns = append(turns, ChatTurn{Role: ChatRoleUser, Content: msg.Content})
    case types.MessageRoleAssistant:
      turns = append(turns, ChatTurn{Role: ChatRoleAssistant, Content: msg.Content})
    }
  }
  return turns
}

//----------------------------------------------------------------------------------------------------------------------
// Prompts
//----------------------------------------------------------------------------------------------------------------------

func buildAdviceSystemPrompt(language string, documents []*types.ConversationDocument) string {
  var b strings.Builder
  fmt.Fprintf(&b, "You are a helpful multilingual financial advisor. The user has asked a question in %s.\n", language)
  b.WriteString("IMPORTANT: You must respond in the exact same language as the user's question.\n\n")
  b.WriteString("Language guidelines:\n")
  b.WriteString("- If the user writes in English, respond in English\n")
  b.WriteString("- If the user writes in Tamil, respond in Tamil\n")
  b.WriteString("- If the user writes in Hindi, respond in Hindi\n")
  b.WriteString("- If the user writes in Spanish, respond in Spanish\n")
  b.WriteString("- If the user writes in French, respond in French\n")
  b.WriteString("- If the user writes in German, respond in German\n")
  b.WriteString("- If the user writes in any other language, respond in that same language\n\n")
  b.WriteString("Always match the user's language exactly and provide helpful financial advice.\n")

  if len(documents) > 0 {
    b.WriteString("\n\nIMPORTANT DOCUMENT CONTEXT:\n")
    for _, doc := range documents {
      fmt.Fprintf(&b, "\n📄 Document: %s\n", doc.FileName)
      fmt.Fprintf(&b, "Type: %s\n", doc.FileType)
      if len(doc.AnalysisResult) > 0 {
        var analysis DocumentAnalysis
        if err := json.Unmarshal(doc.AnalysisResult, &analysis); err == nil {
          summary := analysis.Summary
          if summary == "" {
            summary = "No summary available"
          }
          fmt.Fprintf(&b, "Summary: %s\n", summary)
          if analysis.TextContent != "" {
            fmt.Fprintf(&b, "Content Preview: %s...\n", truncateRunes(analysis.TextContent, 500))
          }
        }
      }
    }
    b.WriteString("\nUse this document context to provide more relevant and specific advice.\n")
  }
  return b.String()
}

func buildDocumentSystemPrompt(language string, hasHistory bool) string {
  var b strings.Builder
  b.WriteString("You are an expert financial advisor analyzing documents. Provide practical, actionable financial advice based on the document analysis.\n\n")
  fmt.Fprintf(&b, "IMPORTANT: You must respond in %s language to match the document content.\n\n", language)
  b.WriteString("Focus on:\n")
  b.WriteString("- Key financial insights from the document\n")
  b.WriteString("- Actionable recommendations\n")
  b.WriteString("- Budgeting and expense management advice\n")
  b.WriteString("- Investment or savings opportunities\n")
  b.WriteString("- Risk assessment if applicable\n\n")
  b.WriteString("Provide clear, specific, and practical advice.\n")
  if hasHistory {
    b.WriteString("\n\nCONVERSATION CONTEXT:\n")
    b.WriteString("Consider the previous conversation when providing advice.\n")
  }
  return b.String()
}

func buildDocumentPrompt(analysis *DocumentAnalysis) string {
  switch analysis.FileType {
  case "Excel Spreadsheet", "CSV File":
    rows := analysis.Rows
    columns := analysis.Columns
    if analysis.FileType == "Excel Spreadsheet" {
      rows = analysis.TotalRows
      columns = analysis.TotalColumns
    }
    return fmt.Sprintf(
      "I have analyzed a %s with the following characteristics:\n\n"+
        "File Summary: %s\n\n"+
        "Data Details:\n"+
        "- Rows: %d\n"+
        "- Columns: %d\n"+
        "- Column Names: %s\n"+
        "- Numeric Columns: %s\n"+
        "- Potential Financial Columns: %s\n\n"+
        "Based on this financial data, provide specific insights and recommendations for better financial management.\n"+
        "Focus on actionable advice related to budgeting, expense tracking, and financial planning.",
      analysis.FileType,
      analysis.Summary,
      rows,
      columns,
      strings.Join(analysis.ColumnNames, ", "),
      strings.Join(analysis.NumericColumns, ", "),
      strings.Join(analysis.PotentialFinancialColumns, ", "),
    )
  case "PDF Document", "Word Document":
    preview := truncateRunes(analysis.TextContent, 1000)
    return fmt.Sprintf(
      "I have analyzed a %s with the following content:\n\n"+
        "Document Summary: %s\n\n"+
        "Content Preview:\n%s...\n\n"+
        "Based on this financial document, provide specific insights and recommendations.\n"+
        "Focus on key financial information, potential action items, and advice for better financial management.",
      analysis.FileType,
      analysis.Summary,
      preview,
    )
  case "Image":
    return fmt.Sprintf(
      "I have analyzed an image document with OCR text extraction:\n\n"+
        "Image Summary: %s\n\n"+
        "Extracted Text:\n%s\n\n"+
        "Based on this financial document image, provide insights and recommendations.\n"+
        "Focus on any financial information that can be extracted and provide relevant advice.",
      analysis.Summary,
      analysis.TextContent,
    )
  default:
    preview := truncateRunes(analysis.TextContent, 1000)
    return fmt.Sprintf(
      "I have analyzed a financial document with the following content:\n\n"+
        "Summary: %s\n"+
        "Content: %s...\n\n"+
        "Please provide financial insights and recommendations based on this document.",
      analysis.Summary,
      preview,
    )
  }
}
