package handlers

import (
  "io"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/services"
)

type AdvisorHandler struct {
  advisorService services.AdvisorService
}

func NewAdvisorHandler(advisorService services.AdvisorService) *AdvisorHandler {
  return &AdvisorHandler{advisorService: advisorService}
}

func (ah *AdvisorHandler) GetAdvice(c *gin.Context) {
  var req struct {
    Message        string `json:"message"`
    Language       string `json:"language,omitempty"`
    ConversationID string `json:"conversation_id,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  conversationID, ok := parseOptionalUUID(req.ConversationID)
  if !ok {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation_id"})
    return
  }
  result, err := ah.advisorService.GetAdvice(c.Request.Context(), req.Message, req.Language, conversationID)
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusOK, gin.H{"answer": result.Answer, "conversation_id": result.ConversationID})
}

func (ah *AdvisorHandler) UploadDocument(c *gin.Context) {
  fileHeader, err := c.FormFile("file")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
    return
  }
  conversationID, ok := parseOptionalUUID(c.PostForm("conversation_id"))
  if !ok {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation_id"})
    return
  }
  if fileHeader.Size > services.MaxUploadBytes {
    c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file size exceeds maximum limit of 50MB"})
    return
  }
  file, err := fileHeader.Open()
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
    return
  }
  defer file.Close()
  data, err := io.ReadAll(io.LimitReader(file, services.MaxUploadBytes+1))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
    return
  }
  if int64(len(data)) > services.MaxUploadBytes {
    c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file size exceeds maximum limit of 50MB"})
    return
  }

  result, err := ah.advisorService.UploadDocument(c.Request.Context(), fileHeader.Filename, data, conversationID)
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusCreated, result)
}

func (ah *AdvisorHandler) GetConversations(c *gin.Context) {
  conversations, err := ah.advisorService.GetUserConversations(c.Request.Context())
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (ah *AdvisorHandler) GetConversation(c *gin.Context) {
  conversationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
    return
  }
  conversation, err := ah.advisorService.GetConversation(c.Request.Context(), conversationID)
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

func (ah *AdvisorHandler) GetDocumentInfo(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{
    "supported_file_types": services.SupportedFileTypeList(),
    "max_file_size":        "50MB",
    "features": []string{
      "Text extraction from PDFs and Word documents",
      "OCR text extraction from images",
      "Data analysis for Excel and CSV files",
      "Financial column detection in spreadsheets",
      "Statistical analysis of numeric data",
      "Multilingual AI analysis and advice",
      "Structured data insights",
      "Conversation context preservation",
    },
  })
}

// parseOptionalUUID returns nil for an absent id, and ok=false for a present
// but malformed one.
func parseOptionalUUID(raw string) (*uuid.UUID, bool) {
  if raw == "" {
    return nil, true
  }
  id, err := uuid.Parse(raw)
  if err != nil {
    return nil, false
  }
  return &id, true
}
