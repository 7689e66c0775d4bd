package utils

import (
  "context"
  "fmt"
  "strings"

  "golang.org/x/crypto/bcrypt"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/normalization"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

func InputValidation(ctx context.Context, ffor string, userRepo repos.UserRepo, log *logger.Logger, user *types.User, email, password string) error {
  validatedFor := normalization.ParseInputString(ffor)
  switch validatedFor {
  case "registration":
    if err := handleRegisterInputValidation(ctx, userRepo, log, user); err != nil {
      return err
    }
  case "login":
    if err := handleLoginInputValidation(ctx, log, email, password); err != nil {
      return err
    }
  default:
    log.Warn("for string is invalid, needs to be either 'registration' or 'login'. Returning error", "for", validatedFor)
    return fmt.Errorf("for string is invalid, needs to be either 'registration' or 'login': '%s'", validatedFor)
  }
  return nil
}

func handleRegisterInputValidation(ctx context.Context, userRepo repos.UserRepo, log *logger.Logger, user *types.User) error {
  //1) Check if user is empty
  if user == nil {
    log.Warn("User is nil, cannot proceed further. Returning error", "user", user)
    return apperr.Validation("no user given")
  }

  //2) Check Email
  if user.Email == "" {
    log.Warn("Email is nil, cannot proceed further. Returning error", "email", user.Email)
    return apperr.Validation("an email is required to register")
  }
  if !strings.Contains(user.Email, "@") {
    log.Warn("Email is malformed, cannot proceed further. Returning error", "email", user.Email)
    return apperr.Validation("a valid email is required to register")
  }
  emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    log.Warn("Failed to check if user email exists, error from UserRepo. Returning an error.", "error", err)
    return fmt.Errorf("Failed checking user email '%s' existence: %w", user.Email, err)
  }
  if emailExists {
    log.Warn("Email is already in use, cannot continue. Returning an error.", "emailExists", emailExists)
    return apperr.Validation("email is already registered")
  }

  //3) Check Password
  if user.Password == "" {
    log.Warn("Password is nil, cannot proceed further. Returning error")
    return apperr.Validation("a password is required to register")
  }
  return nil
}

func handleLoginInputValidation(ctx context.Context, log *logger.Logger, email, password string) error {
  //1) Check Email
  if email == "" {
    log.Warn("Email is an empty string, Cannot proceed.", "email", email)
    return apperr.Validation("an email is required to log in")
  }

  //2) Check Password
  if password == "" {
    log.Warn("Password is an empty string, Cannot proceed.")
    return apperr.Validation("a password is required to log in")
  }
  return nil
}

func HashPassword(ctx context.Context, log *logger.Logger, user *types.User) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    log.Warn("Failure to hash password for user. Returning error", "error", err)
    return fmt.Errorf("Failed to hash password for user: %w", err)
  }
  user.Password = string(hashedPassword)
  return nil
}

func NormalizeUserFields(ctx context.Context, user *types.User) {
  user.Email = normalization.ParseEmail(user.Email)
  user.Password = normalization.ParseInputString(user.Password)
  user.PreferredLanguage = normalization.ParseLanguageCode(user.PreferredLanguage)
  if user.PreferredLanguage == "" {
    user.PreferredLanguage = "en"
  }
  user.Currency = normalization.ParseCurrencyCode(user.Currency)
  if user.Currency == "" {
    user.Currency = "USD"
  }
}
