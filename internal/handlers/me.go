package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/services"
)

type MeHandler struct {
  meService services.MeService
}

func NewMeHandler(meService services.MeService) *MeHandler {
  return &MeHandler{meService: meService}
}

func (mh *MeHandler) GetMe(c *gin.Context) {
  user, err := mh.meService.GetMe(c.Request.Context())
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (mh *MeHandler) UpdateMe(c *gin.Context) {
  var req struct {
    PreferredLanguage string `json:"preferred_language,omitempty"`
    Currency          string `json:"currency,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, err := mh.meService.UpdateMyProfile(c.Request.Context(), req.PreferredLanguage, req.Currency)
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}
