package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/services"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type AuthHandler struct {
  authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    Email             string `json:"email"`
    Password          string `json:"password"`
    PreferredLanguage string `json:"preferred_language,omitempty"`
    Currency          string `json:"currency,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user := types.User{
    Email:             req.Email,
    Password:          req.Password,
    PreferredLanguage: req.PreferredLanguage,
    Currency:          req.Currency,
  }
  if err := ah.authService.RegisterUser(c.Request.Context(), &user); err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email    string `json:"email"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  accessToken, refreshToken, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  accessTTL := ah.authService.GetAccessTTL()
  expiresIn := int(accessTTL.Seconds())

  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  accessToken, refreshToken, err := ah.authService.Refresh(c.Request.Context())
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  accessTTL := ah.authService.GetAccessTTL()
  expiresIn := int(accessTTL.Seconds())

  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.Logout(c.Request.Context()); err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}
