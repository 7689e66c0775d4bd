package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

// Conversation is an owner-scoped, append-only log of user/assistant turns.
// Its ID is the opaque token the advice endpoints hand back to clients.
type Conversation struct {
  gorm.Model
  ID          uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
  UserID      uuid.UUID                 `gorm:"index;not null" json:"userID"`
  User        *User                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

  Title       *string                   `gorm:"column:title" json:"title,omitempty"`
  Language    string                    `gorm:"not null;default:'en';column:language" json:"language"`

  Messages    []*ConversationMessage    `gorm:"foreignKey:ConversationID;references:ID" json:"messages,omitempty"`
  Documents   []*ConversationDocument   `gorm:"foreignKey:ConversationID;references:ID" json:"documents,omitempty"`

  CreatedAt   time.Time                 `gorm:"not null" json:"createdAt"`
  UpdatedAt   time.Time                 `gorm:"not null" json:"updatedAt"`
}

func (Conversation) TableName() string {
  return "conversation"
}
