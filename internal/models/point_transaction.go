package models

import (
	"time"

	"gorm.io/gorm"
)

// PointTransaction records every adjustment to a client's points balance.
type PointTransaction struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Amount   int    `gorm:"not null" json:"amount"` // positive = credit, negative = debit
	Reason   string `gorm:"size:128" json:"reason"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Client Client `gorm:"foreignKey:ClientID" json:"-"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}
