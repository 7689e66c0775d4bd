package repos

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type UserTokenRepo interface {
  Create(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) ([]*types.UserToken, error)
  GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error)
  GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error)
  GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error)
  FullDeleteByTokens(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) error
}

type userTokenRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
  return &userTokenRepo{
    db:  db,
    log: baseLog.With("repo", "UserTokenRepo"),
  }
}

func (utr *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) ([]*types.UserToken, error) {
  if tx == nil {
    tx = utr.db
  }
  if len(tokens) == 0 {
    return tokens, nil
  }
  for _, token := range tokens {
    if token.ID == uuid.Nil {
      token.ID = uuid.New()
    }
  }
  if err := tx.WithContext(ctx).Create(&tokens).Error; err != nil {
    utr.log.Error("failed to create user tokens", "error", err)
    return nil, fmt.Errorf("failed to create user tokens: %w", err)
  }
  return tokens, nil
}

func (utr *userTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error) {
  if tx == nil {
    tx = utr.db
  }
  var tokens []*types.UserToken
  if err := tx.WithContext(ctx).
    Where("user_id IN ?", userIDs).
    Find(&tokens).Error; err != nil {
    utr.log.Error("failed to get user tokens by user ids", "error", err)
    return nil, fmt.Errorf("failed to get user tokens by user ids: %w", err)
  }
  return tokens, nil
}

func (utr *userTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error) {
  if tx == nil {
    tx = utr.db
  }
  var tokens []*types.UserToken
  if err := tx.WithContext(ctx).
    Where("access_token IN ?", accessTokens).
    Find(&tokens).Error; err != nil {
    utr.log.Error("failed to get user tokens by access tokens", "error", err)
    return nil, fmt.Errorf("failed to get user tokens by access tokens: %w", err)
  }
  return tokens, nil
}

func (utr *userTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error) {
  if tx == nil {
    tx = utr.db
  }
  var tokens []*types.UserToken
  if err := tx.WithContext(ctx).
    Where("refresh_token IN ?", refreshTokens).
    Find(&tokens).Error; err != nil {
    utr.log.Error("failed to get user tokens by refresh tokens", "error", err)
    return nil, fmt.Errorf("failed to get user tokens by refresh tokens: %w", err)
  }
  return tokens, nil
}

func (utr *userTokenRepo) FullDeleteByTokens(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) error {
  if tx == nil {
    tx = utr.db
  }
  ids := make([]uuid.UUID, 0, len(tokens))
  for _, token := range tokens {
    if token != nil {
      ids = append(ids, token.ID)
    }
  }
  if len(ids) == 0 {
    return nil
  }
  if err := tx.WithContext(ctx).
    Unscoped().
    Where("id IN ?", ids).
    Delete(&types.UserToken{}).Error; err != nil {
    utr.log.Error("failed to delete user tokens", "error", err)
    return fmt.Errorf("failed to delete user tokens: %w", err)
  }
  return nil
}
