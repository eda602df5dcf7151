package repository

import (
	"admoa/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) GetByID(id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) Save(o *models.Order) error {
	return r.db.Save(o).Error
}

func (r *OrderRepository) Delete(id uint) error {
	return r.db.Delete(&models.Order{}, id).Error
}

func (r *OrderRepository) ListByClient(clientID uint, limit, offset int) ([]models.Order, error) {
	var list []models.Order
	err := r.db.Where("client_id = ?", clientID).
		Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// OrderFilter narrows admin listings.
type OrderFilter struct {
	ClientID uint
	TaskType string
	Status   string
}

func (r *OrderRepository) List(f OrderFilter, limit, offset int) ([]models.Order, error) {
	q := r.db.Model(&models.Order{})
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.TaskType != "" {
		q = q.Where("task_type = ?", f.TaskType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var list []models.Order
	err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ClearMatchingLinks nulls the link field on every other order holding the
// exact trimmed string, in either link slot. Each link string belongs to at
// most one order; last writer wins.
func (r *OrderRepository) ClearMatchingLinks(excludeID uint, link string) error {
	if err := r.db.Model(&models.Order{}).
		Where("completed_link = ? AND id <> ?", link, excludeID).
		Update("completed_link", nil).Error; err != nil {
		return err
	}
	return r.db.Model(&models.Order{}).
		Where("completed_link2 = ? AND id <> ?", link, excludeID).
		Update("completed_link2", nil).Error
}

func (r *OrderRepository) CountByLink(link string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Order{}).
		Where("completed_link = ? OR completed_link2 = ?", link, link).
		Count(&n).Error
	return n, err
}

func (r *OrderRepository) CountByStatus(status string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Order{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
