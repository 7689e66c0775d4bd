package services

import (
  "context"
  "fmt"
  "net/http"
  "os"
  "strings"
  "time"

  openai "github.com/sashabaranov/go-openai"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/utils"
)

// ChatTurn is one role-tagged message sent to the language model. Role values
// follow the OpenAI convention: "system", "user" or "assistant".
type ChatTurn struct {
  Role    string
  Content string
}

const (
  ChatRoleSystem    = "system"
  ChatRoleUser      = "user"
  ChatRoleAssistant = "assistant"
)

// SutraService talks to the Sutra LLM over its OpenAI-compatible API.
type SutraService interface {
  Complete(ctx context.Context, turns []ChatTurn) (string, error)
  DetectLanguage(ctx context.Context, text string) (string, error)
}

type sutraService struct {
  log         *logger.Logger
  client      *openai.Client
  model       string
  temperature float32
}

func NewSutraService(log *logger.Logger) (SutraService, error) {
  serviceLog := log.With("service", "SutraService")
  apiKey := os.Getenv("SUTRA_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing SUTRA_API_KEY environment variable")
  }
  baseURL := utils.GetEnv("SUTRA_API_URL", "https://api.two.ai/v2", serviceLog)
  model := utils.GetEnv("SUTRA_MODEL", "sutra-v2", serviceLog)
  timeout := utils.GetEnvAsInt("SUTRA_TIMEOUT_SECONDS", 60, serviceLog)

  cfg := openai.DefaultConfig(apiKey)
  cfg.BaseURL = baseURL
  cfg.HTTPClient = &http.Client{
    Timeout: time.Duration(timeout) * time.Second,
  }
  return &sutraService{
    log:         serviceLog,
    client:      openai.NewClientWithConfig(cfg),
    model:       model,
    temperature: 0.7,
  }, nil
}

func (ss *sutraService) Complete(ctx context.Context, turns []ChatTurn) (string, error) {
  messages := make([]openai.ChatCompletionMessage, 0, len(turns))
  for _, turn := range turns {
    messages = append(messages, openai.ChatCompletionMessage{
      Role:    turn.Role,
      Content: turn.Content,
    })
  }
  resp, err := ss.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
    Model:       ss.model,
    Temperature: ss.temperature,
    Messages:    messages,
  })
  if err != nil {
    ss.log.Warn("Sutra chat completion failed, Cannot proceed. Returning error.", "error", err)
    return "", apperr.Upstream("advice service is temporarily unavailable", err)
  }
  if len(resp.Choices) == 0 {
    ss.log.Warn("Sutra chat completion returned no choices, Cannot proceed. Returning error.")
    return "", apperr.Upstream("advice service is temporarily unavailable", fmt.Errorf("empty completion response"))
  }
  return resp.Choices[0].Message.Content, nil
}

// DetectLanguage asks the model for a bare language code like "en" or "hi".
// Falls back to "en" on an empty answer.
func (ss *sutraService) DetectLanguage(ctx context.Context, text string) (string, error) {
  prompt := fmt.Sprintf(
    "Detect the language of the following text and respond with only the language code (e.g., 'en' for English, 'es' for Spanish, 'fr' for French, 'de' for German, 'hi' for Hindi, 'ta' for Tamil, 'te' for Telugu, 'ml' for Malayalam, 'kn' for Kannada, etc.).\n\nText: %s\n\nLanguage code:",
    text,
  )
  answer, err := ss.Complete(ctx, []ChatTurn{{Role: ChatRoleUser, Content: prompt}})
  if err != nil {
    return "", err
  }
  detected := strings.ToLower(strings.TrimSpace(answer))
  if detected == "" {
    detected = "en"
  }
  return detected, nil
}
