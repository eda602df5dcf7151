package repository

import (
	"admoa/internal/domain"
	"admoa/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalClients     int64 `json:"total_clients"`
	ActiveClients    int64 `json:"active_clients"`
	TotalOrders      int64 `json:"total_orders"`
	PendingOrders    int64 `json:"pending_orders"`
	WorkingOrders    int64 `json:"working_orders"`
	PublishedReviews int64 `json:"published_reviews"`
	RemainingQuota   int64 `json:"remaining_quota"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.Client{}).Where("role = ?", domain.RoleClient).Count(&s.TotalClients)
	r.db.Model(&models.Client{}).Where("role = ? AND is_active = ?", domain.RoleClient, true).Count(&s.ActiveClients)
	r.db.Model(&models.Order{}).Count(&s.TotalOrders)
	r.db.Model(&models.Order{}).Where("status = ?", domain.StatusPending).Count(&s.PendingOrders)
	r.db.Model(&models.Order{}).Where("status = ?", domain.StatusWorking).Count(&s.WorkingOrders)
	r.db.Model(&models.Order{}).
		Where("status = ? AND task_type IN ?", domain.StatusPublished,
			[]string{domain.TaskBlogReview, domain.TaskReceiptReview}).
		Count(&s.PublishedReviews)

	var rem struct{ Total int64 }
	r.db.Model(&models.Client{}).Select("COALESCE(SUM(remaining_quota), 0) as total").
		Where("role = ?", domain.RoleClient).Scan(&rem)
	s.RemainingQuota = rem.Total
	return &s, nil
}
