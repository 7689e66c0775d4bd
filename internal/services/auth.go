package services

import (
  "context"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/normalization"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/requestdata"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
  PreferredLanguage string `json:"preferred_language,omitempty"`
  Currency          string `json:"currency,omitempty"`
}

// uniformTokenError is the single message returned for every token failure
// mode so callers cannot distinguish expired from tampered tokens.
const uniformTokenError = "invalid or expired token"

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) error
  Login(ctx context.Context, email, password string) (string, string, error)
  Refresh(ctx context.Context) (string, string, error)
  Logout(ctx context.Context) error

  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)

  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  avatarService AvatarService
  emailService  EmailService
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  avatarService AvatarService,
  emailService EmailService,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    avatarService: avatarService,
    emailService:  emailService,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

//----------------------------------------------------------------------------------------------------------------------
// RegisterUser
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
  as.log.Info("Starting Register User now...")

  //1) Normalize User Fields
  utils.NormalizeUserFields(ctx, user)

  //2) Checks on user fields
  if vErr := utils.InputValidation(ctx, "registration", as.userRepo, as.log, user, "", ""); vErr != nil {
    return vErr
  }

  //3) Hash Password
  if hErr := utils.HashPassword(ctx, as.log, user); hErr != nil {
    return hErr
  }

  //4) Transaction Body
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user.ID = uuid.New()
    if as.avatarService != nil {
      if aErr := as.avatarService.CreateAndUploadUserAvatar(ctx, tx, user); aErr != nil {
        // Avatar generation is best effort; a registration never fails on it.
        as.log.Warn("Failed to create and upload user avatar, continuing without one", "error", aErr)
      }
    }
    createdUsers, cErr := as.userRepo.Create(ctx, tx, []*types.User{user})
    if cErr != nil {
      as.log.Warn("Failed to create user, Cannot proceed further. Returning error.", "error", cErr)
      return fmt.Errorf("Failure to create user: %w", cErr)
    }
    if len(createdUsers) == 0 {
      as.log.Warn("No user row created, Cannot proceed further. Returning error.")
      return fmt.Errorf("Failure to create user in DB")
    }
    return nil
  }); err != nil {
    return err
  }

  //5) Welcome Email (best effort)
  if as.emailService != nil {
    if eErr := as.emailService.SendWelcomeEmail(ctx, user.Email); eErr != nil {
      as.log.Warn("Failed to send welcome email, continuing", "error", eErr)
    }
  }
  return nil
}

//----------------------------------------------------------------------------------------------------------------------
// Login
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) Login(ctx context.Context, userEmail, userPassword string) (string, string, error) {
  //1) Normalize Input
  email := normalization.ParseEmail(userEmail)
  password := normalization.ParseInputString(userPassword)

  //2) Input Validations
  if vErr := utils.InputValidation(ctx, "login", as.userRepo, as.log, &types.User{}, email, password); vErr != nil {
    return "", "", vErr
  }

  //3) Find User By Email
  users, uSErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if uSErr != nil {
    as.log.Warn("Failure to retrieve user by email, Cannot proceed. Returning error.", "error", uSErr)
    return "", "", fmt.Errorf("error retrieving user by email: %w", uSErr)
  }
  if len(users) == 0 {
    as.log.Warn("Invalid email, no users returned", "len(users)", len(users))
    return "", "", apperr.Authentication("invalid credentials")
  }
  user := users[0]
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
    as.log.Warn("Invalid password, user password and hash dont match, Cannot proceed. Returning error.", "error", hErr)
    return "", "", apperr.Authentication("invalid credentials")
  }

  //4) Issue Token Pair
  var accessToken string
  var refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, fTErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if fTErr != nil {
      as.log.Warn("Failed to check whether user already has user tokens, Cannot proceed. Returning error.", "error", fTErr)
      return fmt.Errorf("Failed to check whether user already has user tokens: %w", fTErr)
    }
    var expired []*types.UserToken
    for _, token := range foundTokens {
      if token != nil && token.ExpiresAt.Before(time.Now()) {
        expired = append(expired, token)
      }
    }
    if len(expired) > 0 {
      if dTErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, expired); dTErr != nil {
        as.log.Warn("Failed to delete expired user tokens, Cannot proceed. Returning error.", "error", dTErr)
        return fmt.Errorf("Failed to delete expired user tokens: %w", dTErr)
      }
    }
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      as.log.Warn("Generate Access Token Error, Cannot proceed. Returning error.", "error", genErr)
      return fmt.Errorf("Generate Access Token Error: %w", genErr)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, cTErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); cTErr != nil {
      as.log.Warn("Create User Token Error, Cannot proceed. Returning error.", "error", cTErr)
      return fmt.Errorf("Create User Token Error: %w", cTErr)
    }
    return nil
  }); err != nil {
    return "", "", err
  }
  return accessToken, refreshToken, nil
}

//----------------------------------------------------------------------------------------------------------------------
// Refresh, Logout
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) Refresh(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    as.log.Warn("No Request Data found in context, Cannot proceed", "requestdata", rd)
    return "", "", apperr.Authentication(uniformTokenError)
  }
  if rd.RefreshToken == "" {
    as.log.Warn("RefreshToken in Request Data in context is an empty string, Cannot proceed")
    return "", "", apperr.Authentication(uniformTokenError)
  }

  var accessToken string
  var newRefreshToken string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, fTErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if fTErr != nil {
      as.log.Warn("Error fetching refresh token, Cannot proceed. Returning error.", "error", fTErr)
      return fmt.Errorf("Error fetching refresh token: %w", fTErr)
    }
    if len(foundTokens) == 0 {
      as.log.Warn("No user token for given refresh token, Cannot proceed.")
      return apperr.Authentication(uniformTokenError)
    }
    existingToken := foundTokens[0]
    if existingToken.ExpiresAt.Before(time.Now()) {
      if dTErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dTErr != nil {
        as.log.Warn("Refresh token expired, error deleting expired refresh token, Cannot proceed. Returning error.", "error", dTErr)
        return fmt.Errorf("Refresh token expired, error deleting: %w", dTErr)
      }
      as.log.Warn("Refresh Token Expired, Cannot proceed.")
      return apperr.Authentication(uniformTokenError)
    }
    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
    if uErr != nil {
      as.log.Warn("Failed to load user for refresh, Cannot proceed. Returning error.", "error", uErr)
      return fmt.Errorf("Failed to load user for refresh: %w", uErr)
    }
    if len(users) == 0 {
      as.log.Warn("No user found for the given refresh token, Cannot proceed.", "len(users)", len(users))
      return apperr.Authentication(uniformTokenError)
    }
    user := users[0]
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      as.log.Warn("Failed to generate new access token, Cannot proceed. Returning error.", "error", genErr)
      return fmt.Errorf("Failed to generate new access token: %w", genErr)
    }
    accessToken = tok
    newRefreshToken = uuid.New().String()
    newUserToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  tok,
      RefreshToken: newRefreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); cErr != nil {
      as.log.Warn("Failed to create new user token, Cannot proceed. Returning error.", "error", cErr)
      return fmt.Errorf("Failed to create new user token: %w", cErr)
    }
    if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dErr != nil {
      as.log.Warn("Failed to remove old refresh token, Cannot proceed. Returning error.", "error", dErr)
      return fmt.Errorf("Failed to remove old refresh token: %w", dErr)
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) Logout(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    as.log.Warn("No Request Data found in context, Cannot proceed.", "requestdata", rd)
    return apperr.Authentication(uniformTokenError)
  }
  if rd.TokenString == "" {
    as.log.Warn("TokenString in Request Data is an empty string, Cannot proceed.")
    return apperr.Authentication(uniformTokenError)
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, fTErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if fTErr != nil {
      as.log.Warn("Error finding user token from token string, Cannot proceed. Returning error.", "error", fTErr)
      return fmt.Errorf("Error finding user token from token string: %w", fTErr)
    }
    if len(foundTokens) == 0 {
      return nil
    }
    if tDErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, foundTokens); tDErr != nil {
      as.log.Warn("Error deleting user token, Cannot proceed. Returning error.", "error", tDErr)
      return fmt.Errorf("Error deleting user token: %w", tDErr)
    }
    return nil
  })
}

//----------------------------------------------------------------------------------------------------------------------
// Tokens
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
    PreferredLanguage: user.PreferredLanguage,
    Currency:          user.Currency,
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates a bearer token and loads the caller identity
// into the request context. Every failure mode yields the same message.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, apperr.Authentication(uniformTokenError)
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    as.log.Debug("Failed to parse token", "error", err)
    return ctx, apperr.Authentication(uniformTokenError)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apperr.Authentication(uniformTokenError)
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    as.log.Debug("Invalid user ID in token", "error", err)
    return ctx, apperr.Authentication(uniformTokenError)
  }
  foundTokens, fTErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if fTErr != nil {
    as.log.Warn("Error fetching user token by access token, Cannot proceed. Returning error.", "error", fTErr)
    return ctx, apperr.Authentication(uniformTokenError)
  }
  if len(foundTokens) == 0 {
    // Token was revoked via logout; same uniform rejection.
    return ctx, apperr.Authentication(uniformTokenError)
  }
  rd := &requestdata.RequestData{
    TokenString:       tokenString,
    RefreshToken:      foundTokens[0].RefreshToken,
    UserID:            userID,
    PreferredLanguage: claims.PreferredLanguage,
    Currency:          claims.Currency,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
