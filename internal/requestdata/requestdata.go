package requestdata

import (
  "context"

  "github.com/google/uuid"
)

type key struct{}

var requestDataKey key

// RequestData carries the authenticated caller's identity through the request
// context. Populated by AuthService.SetContextFromToken, read by services.
type RequestData struct {
  TokenString       string
  RefreshToken      string
  UserID            uuid.UUID
  Email             string
  PreferredLanguage string
  Currency          string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  rd, ok := val.(*RequestData)
  if !ok {
    return nil
  }
  return rd
}
