package services

import (
  "context"
  "fmt"
  "os"

  "github.com/sendgrid/sendgrid-go"
  "github.com/sendgrid/sendgrid-go/helpers/mail"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
)

type EmailService interface {
  SendWelcomeEmail(ctx context.Context, toEmail string) error
}

type emailService struct {
  log          *logger.Logger
  client       *sendgrid.Client
  fromName     string
  fromEmail    string
}

func NewEmailService(log *logger.Logger) (EmailService, error) {
  serviceLog := log.With("service", "EmailService")
  apiKey := os.Getenv("SENDGRID_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing SENDGRID_API_KEY environment variable")
  }
  fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
  if fromEmail == "" {
    serviceLog.Warn("SENDGRID_FROM_EMAIL not set; using fallback no-reply@budgetadvisor.app")
    fromEmail = "no-reply@budgetadvisor.app"
  }
  return &emailService{
    log:       serviceLog,
    client:    sendgrid.NewSendClient(apiKey),
    fromName:  "Budget Advisor",
    fromEmail: fromEmail,
  }, nil
}

func (es *emailService) SendWelcomeEmail(ctx context.Context, toEmail string) error {
  from := mail.NewEmail(es.fromName, es.fromEmail)
  to := mail.NewEmail("", toEmail)
  subject := "Welcome to Budget Advisor"
  plainText := "Welcome! Ask the advisor anything about budgeting, in any language, or upload a financial document to get started."
  htmlContent := "<p>Welcome! Ask the advisor anything about budgeting, in any language, or upload a financial document to get started.</p>"
  message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
  response, err := es.client.SendWithContext(ctx, message)
  if err != nil {
    es.log.Warn("Sendgrid email send failed", "error", err)
    return err
  }
  es.log.Info("Welcome email sent", "to", toEmail, "statusCode", response.StatusCode)
  return nil
}
