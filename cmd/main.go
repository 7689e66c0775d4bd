package main

import (
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/db"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/handlers"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/middleware"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/server"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/services"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/socket"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/utils"
)

func main() {
  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "localhost:6379", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  convoCacheTTL := utils.GetEnvAsInt("CONVO_CACHE_TTL", 300, log)
  allowedOrigins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000", log)
  log.Debug("Environment variables loaded for Main :)",
    "accessTokenTTL", accessTokenTTL,
    "refreshTokenTTL", refreshTokenTTL,
    "redisAddress", redisAddress,
    "convoCacheTTL", convoCacheTTL,
  )

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Fatal error: Cannot init Postgres", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  conversationRepo := repos.NewConversationRepo(thePG, log)
  conversationMessageRepo := repos.NewConversationMessageRepo(thePG, log)
  conversationDocumentRepo := repos.NewConversationDocumentRepo(thePG, log)
  transactionRepo := repos.NewTransactionRepo(thePG, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Websocket Setup
  log.Info("Setting Up Websocket Hub From Main Now :)")
  wsHub := socket.NewHub(log)
  log.Info("Websocket Hub Set Up From Main Successful :)")

  // Redis PubSub
  log.Info("Setting Up Redis PubSub From Main Now :)")
  redisChanName := "budget_hub_broadcast"
  redisPubSub, err := socket.NewRedisPubSub(log, redisAddress, redisPassword, redisChanName)
  if err != nil {
    log.Warn("Failed to init redis pubsub", "error", err)
  } else {
    if err := redisPubSub.StartSubscriber(wsHub); err != nil {
      log.Warn("Failed to subscribe to Redis pub/sub", "error", err)
    } else {
      wsHub.SetRedisPubSub(redisPubSub)
      log.Info("Redis pubsub is active!")
    }
  }

  // Services Setup
  log.Info("Setting up Services from Main now...")
  emailService, err := services.NewEmailService(log)
  if err != nil {
    log.Warn("Could not init EmailService", "error", err)
  }
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Warn("Could not init BucketService", "error", err)
  }
  avatarService, err := services.NewAvatarService(log, bucketService)
  if err != nil {
    log.Warn("Could not init AvatarService", "error", err)
  }
  convoCache, err := services.NewConvoCacheService(log, redisAddress, redisPassword, time.Duration(convoCacheTTL)*time.Second)
  if err != nil {
    log.Warn("Could not init ConvoCacheService", "error", err)
  }
  sutraService, err := services.NewSutraService(log)
  if err != nil {
    log.Error("Fatal error: Cannot init SutraService", "error", err)
    os.Exit(1)
  }
  analyzerService := services.NewAnalyzerService(log)
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, emailService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  meService := services.NewMeService(thePG, log, userRepo)
  advisorService := services.NewAdvisorService(thePG, log, conversationRepo, conversationMessageRepo, conversationDocumentRepo, sutraService, analyzerService, bucketService, convoCache, wsHub)
  transactionService := services.NewTransactionService(thePG, log, transactionRepo)
  log.Info("Services Set Up From Main Successful :)")

  // Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  authHandler := handlers.NewAuthHandler(authService)
  meHandler := handlers.NewMeHandler(meService)
  advisorHandler := handlers.NewAdvisorHandler(advisorService)
  transactionHandler := handlers.NewTransactionHandler(transactionService)
  wsHandler := handlers.WsHandler(wsHub, log)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  log.Info("Setting Up Middleware from Main now...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)
  log.Info("Middleware Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:        authHandler,
    AuthMiddleware:     authMiddleware,
    MeHandler:          meHandler,
    AdvisorHandler:     advisorHandler,
    TransactionHandler: transactionHandler,
    WsHandler:          wsHandler,
    AllowedOrigins:     strings.Split(allowedOrigins, ","),
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }

  // On Shutdown
  if redisPubSub != nil {
    redisPubSub.Stop()
  }
}
