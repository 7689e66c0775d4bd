package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  //1) Get and Set Environment Variables
  log.Info("Attempting to load environment variables for Postgres now...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "budget_advisor", log)
  log.Info("Environment variables loaded for Postgres :)")

  //2) Construct DSN From Environment Variables
  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  //3) Open Connection
  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
  if err != nil {
    serviceLog.Warn("Failed to connect to postgres", "error", err)
    return nil, fmt.Errorf("failed to connect to postgres: %w", err)
  }
  serviceLog.Info("Connected to Postgres :)")
  return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (ps *PostgresService) DB() *gorm.DB {
  return ps.db
}

func (ps *PostgresService) AutoMigrateAll() error {
  ps.log.Info("Running auto migration for all types now...")
  if err := ps.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Conversation{},
    &types.ConversationMessage{},
    &types.ConversationDocument{},
    &types.Transaction{},
  ); err != nil {
    ps.log.Warn("Auto migration failed", "error", err)
    return fmt.Errorf("auto migration failed: %w", err)
  }
  ps.log.Info("Auto migration complete :)")
  return nil
}
