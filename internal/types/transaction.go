package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type Transaction struct {
  gorm.Model
  ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
  UserID      uuid.UUID       `gorm:"index;not null" json:"userID"`
  User        *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

  Amount      float64         `gorm:"not null;column:amount" json:"amount"`
  Currency    string          `gorm:"not null;default:'USD';column:currency" json:"currency"`
  Description *string         `gorm:"column:description" json:"description,omitempty"`
  Category    *string         `gorm:"column:category" json:"category,omitempty"`
  Date        time.Time       `gorm:"not null;column:date" json:"date"`

  CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
  UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Transaction) TableName() string {
  return "transaction"
}
