package models

import (
	"time"

	"admoa/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Client is an account row. Admin accounts live in the same table with
// Role=ADMIN and empty contract fields.
type Client struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         string `gorm:"size:20;not null;index" json:"role"` // ADMIN | CLIENT
	CompanyName  string `gorm:"size:128" json:"company_name"`

	ContractStartDate *time.Time `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	IsActive          bool       `gorm:"default:true;index" json:"is_active"`

	Quota          datatypes.JSON `gorm:"type:json" json:"quota"` // task type -> {total, remaining}
	RemainingQuota int            `gorm:"not null;default:0" json:"remaining_quota"`
	Points         int            `gorm:"not null;default:0" json:"points"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) IsAdmin() bool { return c.Role == domain.RoleAdmin }

// ContractActive reports whether the contract window covers now.
func (c *Client) ContractActive(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ContractStartDate != nil && now.Before(*c.ContractStartDate) {
		return false
	}
	if c.ContractEndDate != nil && now.After(*c.ContractEndDate) {
		return false
	}
	return true
}
