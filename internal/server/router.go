package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/handlers"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/middleware"
)

type RouterConfig struct {
  AuthHandler        *handlers.AuthHandler
  AuthMiddleware     *middleware.AuthMiddleware
  MeHandler          *handlers.MeHandler
  AdvisorHandler     *handlers.AdvisorHandler
  TransactionHandler *handlers.TransactionHandler
  WsHandler          gin.HandlerFunc
  AllowedOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  allowedOrigins := cfg.AllowedOrigins
  if len(allowedOrigins) == 0 {
    allowedOrigins = []string{"http://localhost:3000"}
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     allowedOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Health)

  //-----------------------------------------
  // Public Routes
  //-----------------------------------------
  api := router.Group("/api")
  {
    api.POST("/auth/register", cfg.AuthHandler.Register)
    api.POST("/auth/login", cfg.AuthHandler.Login)
    api.GET("/ai/document-info", cfg.AdvisorHandler.GetDocumentInfo)
  }

  //------------------------------------------
  // Protected Routes
  //------------------------------------------
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/auth/logout", cfg.AuthHandler.Logout)
  protected.GET("/ws", cfg.WsHandler)

  //ME
  protected.GET("/auth/me", cfg.MeHandler.GetMe)
  protected.PATCH("/auth/me", cfg.MeHandler.UpdateMe)

  //Advisor
  protected.POST("/ai/get-advice", cfg.AdvisorHandler.GetAdvice)
  protected.POST("/ai/upload-document", cfg.AdvisorHandler.UploadDocument)
  protected.GET("/ai/conversations", cfg.AdvisorHandler.GetConversations)
  protected.GET("/ai/conversations/:id", cfg.AdvisorHandler.GetConversation)

  //Transactions
  protected.GET("/transactions", cfg.TransactionHandler.GetMyTransactions)
  protected.POST("/transactions", cfg.TransactionHandler.CreateTransaction)

  return router
}
