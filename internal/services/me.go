package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/normalization"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/repos"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/requestdata"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

// MeService resolves the calling user from the request context.
type MeService interface {
  GetMe(ctx context.Context) (*types.User, error)
  UpdateMyProfile(ctx context.Context, preferredLanguage, currency string) (*types.User, error)
}

type meService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewMeService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) MeService {
  return &meService{
    db:       db,
    log:      log.With("service", "MeService"),
    userRepo: userRepo,
  }
}

func (ms *meService) GetMe(ctx context.Context) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    ms.log.Warn("No Request Data found in context, Cannot proceed.")
    return nil, apperr.Authentication("invalid or expired token")
  }
  users, err := ms.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    ms.log.Warn("Failed to load user, Cannot proceed. Returning error.", "error", err)
    return nil, fmt.Errorf("failed to load user: %w", err)
  }
  if len(users) == 0 {
    ms.log.Warn("No user found for authenticated user id", "userID", rd.UserID)
    return nil, apperr.NotFound("user not found")
  }
  return users[0], nil
}

func (ms *meService) UpdateMyProfile(ctx context.Context, preferredLanguage, currency string) (*types.User, error) {
  user, err := ms.GetMe(ctx)
  if err != nil {
    return nil, err
  }
  if lang := normalization.ParseLanguageCode(preferredLanguage); lang != "" {
    user.PreferredLanguage = lang
  }
  if cur := normalization.ParseCurrencyCode(currency); cur != "" {
    user.Currency = cur
  }
  if err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, uErr := ms.userRepo.Update(ctx, tx, []*types.User{user}); uErr != nil {
      ms.log.Warn("Failed to update user profile, Cannot proceed. Returning error.", "error", uErr)
      return fmt.Errorf("failed to update user profile: %w", uErr)
    }
    return nil
  }); err != nil {
    return nil, err
  }
  return user, nil
}
