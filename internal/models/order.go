package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order is one purchased work unit. Quota is debited when the row is
// created, not when the work completes.
type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClientID uint   `gorm:"not null;index" json:"client_id"`
	TaskType string `gorm:"size:30;not null;index" json:"task_type"`
	Status   string `gorm:"size:30;not null;index;default:'pending'" json:"status"`

	// Caption keeps the client-facing "key: value" lines; RequestCount is
	// the authoritative unit count (legacy rows may carry it only inside
	// the caption).
	Caption      string         `gorm:"type:text" json:"caption"`
	RequestCount int            `gorm:"not null;default:1" json:"request_count"`
	ImageURLs    datatypes.JSON `gorm:"type:json" json:"image_urls"`

	// Work evidence. Each link string belongs to at most one order at a
	// time; CompletedLink2 is the secondary slot used by myexpense.
	CompletedLink  *string `gorm:"size:512;index" json:"completed_link"`
	CompletedLink2 *string `gorm:"size:512;index" json:"completed_link2"`

	// Review workflow fields (blog_review / receipt_review only).
	ReviewerName    string `gorm:"size:64" json:"reviewer_name"`
	DraftText       string `gorm:"type:text" json:"draft_text"`
	RevisionRequest string `gorm:"type:text" json:"revision_request"`
	RevisionText    string `gorm:"type:text" json:"revision_text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Client Client `gorm:"foreignKey:ClientID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
