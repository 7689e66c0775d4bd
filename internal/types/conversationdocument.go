package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

type ConversationDocument struct {
  gorm.Model
  ID               uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
  ConversationID   uuid.UUID          `gorm:"index;not null" json:"conversationID"`
  Conversation     *Conversation      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID;references:ID" json:"-"`

  FileName         string             `gorm:"not null;column:file_name" json:"fileName"`
  BucketKey        string             `gorm:"column:bucket_key" json:"bucketKey"`
  FileType         string             `gorm:"column:file_type" json:"fileType"`
  FileSize         int64              `gorm:"column:file_size" json:"fileSize"`
  AnalysisResult   datatypes.JSON     `gorm:"column:analysis_result" json:"analysisResult,omitempty"`

  CreatedAt        time.Time          `gorm:"not null;index" json:"createdAt"`
  UpdatedAt        time.Time          `gorm:"not null" json:"updatedAt"`
}

func (ConversationDocument) TableName() string {
  return "conversation_document"
}
