package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/requestdata"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/services"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLogger := log.With("Middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
      return
    }
    c.Request = c.Request.WithContext(ctx)
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden - invalid user id"})
      return
    }
    c.Next()
  }
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the "token" query parameter for websocket upgrades.
func extractToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  return ""
}
