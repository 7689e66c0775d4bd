package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

const (
  MessageRoleUser      = "user"
  MessageRoleAssistant = "assistant"
)

type ConversationMessage struct {
  gorm.Model
  ID               uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
  ConversationID   uuid.UUID          `gorm:"index;not null" json:"conversationID"`
  Conversation     *Conversation      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID;references:ID" json:"-"`

  Role             string             `gorm:"not null;column:role" json:"role"`
  Content          string             `gorm:"type:text;not null;column:content" json:"content"`
  Metadata         datatypes.JSON     `gorm:"column:metadata" json:"metadata,omitempty"`

  CreatedAt        time.Time          `gorm:"not null;index" json:"createdAt"`
  UpdatedAt        time.Time          `gorm:"not null" json:"updatedAt"`
}

func (ConversationMessage) TableName() string {
  return "conversation_message"
}
