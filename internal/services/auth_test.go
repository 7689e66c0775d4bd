package services

import (
  "context"
  "testing"
  "time"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/requestdata"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
  "gorm.io/gorm"
)

func newTestAuthService(t *testing.T, db *gorm.DB, accessTTL time.Duration) AuthService {
  t.Helper()
  log := logger.NewNop()
  userRepo := repos.NewUserRepo(db, log)
  userTokenRepo := repos.NewUserTokenRepo(db, log)
  return NewAuthService(db, log, userRepo, userTokenRepo, nil, nil, "test-secret", accessTTL, 24*time.Hour)
}

func TestRegisterUserNormalizesAndDefaults(t *testing.T) {
  db := openTestDB(t)
  as := newTestAuthService(t, db, time.Hour)

  user := &types.User{Email: "  Alice@Example.COM ", Password: "hunter22"}
  if err := as.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser failed: %v", err)
  }
  if user.Email != "alice@example.com" {
    t.Errorf("expected normalized email, got %q", user.Email)
  }
  if user.PreferredLanguage != "en" || user.Currency != "USD" {
    t.Errorf("expected defaults en/USD, got %q/%q", user.PreferredLanguage, user.Currency)
  }
  if user.Password == "hunter22" {
    t.Error("password was stored unhashed")
  }
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
  db := openTestDB(t)
  as := newTestAuthService(t, db, time.Hour)

  first := &types.User{Email: "bob@example.com", Password: "pw123456"}
  if err := as.RegisterUser(context.Background(), first); err != nil {
    t.Fatalf("first RegisterUser failed: %v", err)
  }
  second := &types.User{Email: "BOB@example.com", Password: "other-pw"}
  err := as.RegisterUser(context.Background(), second)
  if err == nil {
    t.Fatal("expected duplicate registration to fail")
  }
  if apperr.KindOf(err) != apperr.KindValidation {
    t.Errorf("expected validation error, got kind %v (%v)", apperr.KindOf(err), err)
  }

  var count int64
  db.Model(&types.User{}).Count(&count)
  if count != 1 {
    t.Errorf("expected exactly one user row, got %d", count)
  }
}

func TestLoginRoundTrip(t *testing.T) {
  db := openTestDB(t)
  as := newTestAuthService(t, db, time.Hour)

  user := &types.User{Email: "carol@example.com", Password: "pw123456"}
  if err := as.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser failed: %v", err)
  }

  accessToken, refreshToken, err := as.Login(context.Background(), "Carol@Example.com", "pw123456")
  if err != nil {
    t.Fatalf("Login failed: %v", err)
  }
  if accessToken == "" || refreshToken == "" {
    t.Fatal("expected non-empty token pair")
  }

  ctx, err := as.SetContextFromToken(context.Background(), accessToken)
  if err != nil {
    t.Fatalf("SetContextFromToken failed: %v", err)
  }
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    t.Fatal("expected request data in context")
  }
  if rd.UserID != user.ID {
    t.Errorf("expected user id %s, got %s", user.ID, rd.UserID)
  }
  if rd.RefreshToken != refreshToken {
    t.Error("expected refresh token to be resolved from the token row")
  }
}

func TestLoginWrongPassword(t *testing.T) {
  db := openTestDB(t)
  as := newTestAuthService(t, db, time.Hour)

  user := &types.User{Email: "dave@example.com", Password: "correct-pw"}
  if err := as.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser failed: %v", err)
  }
  _, _, err := as.Login(context.Background(), "dave@example.com", "wrong-pw")
  if err == nil {
    t.Fatal("expected login with wrong password to fail")
  }
  if apperr.KindOf(err) != apperr.KindAuthentication {
    t.Errorf("expected authentication error, got kind %v", apperr.KindOf(err))
  }
}

// Expired, tampered and revoked tokens must all be rejected with the exact
// same message so callers cannot probe which failure occurred.
func TestTokenRejectionIsUniform(t *testing.T) {
  db := openTestDB(t)

  user := &types.User{Email: "eve@example.com", Password: "pw123456"}
  longLived := newTestAuthService(t, db, time.Hour)
  if err := longLived.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser failed: %v", err)
  }

  expired := newTestAuthService(t, db, -time.Minute)
  expiredToken, _, err := expired.Login(context.Background(), "eve@example.com", "pw123456")
  if err != nil {
    t.Fatalf("Login failed: %v", err)
  }

  validToken, _, err := longLived.Login(context.Background(), "eve@example.com", "pw123456")
  if err != nil {
    t.Fatalf("Login failed: %v", err)
  }
  tamperedToken := validToken[:len(validToken)-2] + "xx"

  revokedToken, _, err := longLived.Login(context.Background(), "eve@example.com", "pw123456")
  if err != nil {
    t.Fatalf("Login failed: %v", err)
  }
  ctx, err := longLived.SetContextFromToken(context.Background(), revokedToken)
  if err != nil {
    t.Fatalf("SetContextFromToken failed: %v", err)
  }
  if err := longLived.Logout(ctx); err != nil {
    t.Fatalf("Logout failed: %v", err)
  }

  var messages []string
  for _, token := range []string{expiredToken, tamperedToken, revokedToken, ""} {
    _, sErr := longLived.SetContextFromToken(context.Background(), token)
    if sErr == nil {
      t.Fatalf("expected rejection for token %q", token)
    }
    if apperr.KindOf(sErr) != apperr.KindAuthentication {
      t.Errorf("expected authentication error, got kind %v", apperr.KindOf(sErr))
    }
    messages = append(messages, apperr.UserMessage(sErr))
  }
  for _, msg := range messages {
    if msg != messages[0] {
      t.Errorf("token rejection messages differ: %v", messages)
      break
    }
  }
}

func TestRefreshRotatesTokenPair(t *testing.T) {
  db := openTestDB(t)
  as := newTestAuthService(t, db, time.Hour)

  user := &types.User{Email: "frank@example.com", Password: "pw123456"}
  if err := as.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser failed: %v", err)
  }
  accessToken, refreshToken, err := as.Login(context.Background(), "frank@example.com", "pw123456")
  if err != nil {
    t.Fatalf("Login failed: %v", err)
  }

  ctx, err := as.SetContextFromToken(context.Background(), accessToken)
  if err != nil {
    t.Fatalf("SetContextFromToken failed: %v", err)
  }
  newAccess, newRefresh, err := as.Refresh(ctx)
  if err != nil {
    t.Fatalf("Refresh failed: %v", err)
  }
  if newRefresh == refreshToken {
    t.Error("expected refresh token to rotate")
  }
  if newAccess == "" {
    t.Error("expected a new access token")
  }

  // The old pair is dead after rotation.
  if _, sErr := as.SetContextFromToken(context.Background(), accessToken); sErr == nil {
    t.Error("expected old access token to be rejected after refresh")
  }
  if _, rErr := as.Refresh(ctx); rErr == nil {
    t.Error("expected old refresh token to be rejected after rotation")
  }
}

func TestMultipleSessionsCoexist(t *testing.T) {
  db := openTestDB(t)
  as := newTestAuthService(t, db, time.Hour)

  user := &types.User{Email: "grace@example.com", Password: "pw123456"}
  if err := as.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser failed: %v", err)
  }
  first, _, err := as.Login(context.Background(), "grace@example.com", "pw123456")
  if err != nil {
    t.Fatalf("first Login failed: %v", err)
  }
  second, _, err := as.Login(context.Background(), "grace@example.com", "pw123456")
  if err != nil {
    t.Fatalf("second Login failed: %v", err)
  }
  if _, sErr := as.SetContextFromToken(context.Background(), first); sErr != nil {
    t.Errorf("first session should still be valid: %v", sErr)
  }
  if _, sErr := as.SetContextFromToken(context.Background(), second); sErr != nil {
    t.Errorf("second session should be valid: %v", sErr)
  }
}
