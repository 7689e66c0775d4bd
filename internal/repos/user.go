package repos

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

type UserRepo interface {
  // CREATE
  Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)

  // READ
  GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
  GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error)
  EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error)

  // UPDATE
  Update(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
}

type userRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
  return &userRepo{
    db:  db,
    log: baseLog.With("repo", "UserRepo"),
  }
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  if tx == nil {
    tx = ur.db
  }
  if len(users) == 0 {
    return users, nil
  }
  for _, user := range users {
    if user.ID == uuid.Nil {
      user.ID = uuid.New()
    }
  }
  if err := tx.WithContext(ctx).Create(&users).Error; err != nil {
    ur.log.Error("failed to create users", "error", err)
    return nil, fmt.Errorf("failed to create users: %w", err)
  }
  return users, nil
}

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
  if tx == nil {
    tx = ur.db
  }
  var users []*types.User
  if err := tx.WithContext(ctx).
    Where("id IN ?", userIDs).
    Find(&users).Error; err != nil {
    ur.log.Error("failed to get users by ids", "error", err)
    return nil, fmt.Errorf("failed to get users by ids: %w", err)
  }
  return users, nil
}

func (ur *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
  if tx == nil {
    tx = ur.db
  }
  var users []*types.User
  if err := tx.WithContext(ctx).
    Where("email IN ?", userEmails).
    Find(&users).Error; err != nil {
    ur.log.Error("failed to get users by emails", "error", err)
    return nil, fmt.Errorf("failed to get users by emails: %w", err)
  }
  return users, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
  if tx == nil {
    tx = ur.db
  }
  var count int64
  if err := tx.WithContext(ctx).
    Model(&types.User{}).
    Where("email = ?", userEmail).
    Count(&count).Error; err != nil {
    ur.log.Error("failed to count users by email", "error", err)
    return false, fmt.Errorf("failed to count users by email: %w", err)
  }
  return count > 0, nil
}

func (ur *userRepo) Update(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  if tx == nil {
    tx = ur.db
  }
  for _, user := range users {
    if err := tx.WithContext(ctx).Save(user).Error; err != nil {
      ur.log.Error("failed to update user", "error", err, "userID", user.ID)
      return nil, fmt.Errorf("failed to update user: %w", err)
    }
  }
  return users, nil
}
