package handlers

import (
  "net/http"
  "time"

  "github.com/gin-gonic/gin"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/services"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type TransactionHandler struct {
  transactionService services.TransactionService
}

func NewTransactionHandler(transactionService services.TransactionService) *TransactionHandler {
  return &TransactionHandler{transactionService: transactionService}
}

func (th *TransactionHandler) GetMyTransactions(c *gin.Context) {
  transactions, err := th.transactionService.GetMyTransactions(c.Request.Context())
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (th *TransactionHandler) CreateTransaction(c *gin.Context) {
  var req struct {
    Amount      float64    `json:"amount"`
    Currency    string     `json:"currency,omitempty"`
    Description *string    `json:"description,omitempty"`
    Category    *string    `json:"category,omitempty"`
    Date        *time.Time `json:"date,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  transaction := types.Transaction{
    Amount:      req.Amount,
    Currency:    req.Currency,
    Description: req.Description,
    Category:    req.Category,
  }
  if req.Date != nil {
    transaction.Date = *req.Date
  }
  created, err := th.transactionService.CreateTransaction(c.Request.Context(), &transaction)
  if err != nil {
    c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
    return
  }
  c.JSON(http.StatusCreated, gin.H{"transaction": created})
}
