package models

import "time"

// AuditLog records admin and client mutations for the back office.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClientID   *uint     `gorm:"index" json:"client_id"`
	Action     string    `gorm:"size:100;not null;index" json:"action"`
	Resource   string    `gorm:"size:100;index" json:"resource"`
	ResourceID string    `gorm:"size:100;index" json:"resource_id"`
	IP         string    `gorm:"size:45" json:"ip"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
