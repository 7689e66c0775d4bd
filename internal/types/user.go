package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type User struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`

  Email               string                    `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password            string                    `gorm:"not null;column:password" json:"-"`
  PreferredLanguage   string                    `gorm:"not null;default:'en';column:preferred_language" json:"preferredLanguage"`
  Currency            string                    `gorm:"not null;default:'USD';column:currency" json:"currency"`
  AvatarBucketKey     string                    `gorm:"column:avatar_bucket_key" json:"avatarBucketKey"`
  AvatarURL           string                    `gorm:"column:avatar_url" json:"avatarURL"`

  CreatedAt           time.Time                 `gorm:"not null" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string {
  return "user"
}
