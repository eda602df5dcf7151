package repository

import (
	"admoa/internal/domain"
	"admoa/internal/models"
	"admoa/internal/quota"

	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ClientRepository) WithTx(tx *gorm.DB) *ClientRepository {
	return &ClientRepository{db: tx}
}

func (r *ClientRepository) GetByID(id uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) GetByUsername(username string) (*models.Client, error) {
	var c models.Client
	if err := r.db.Where("username = ?", username).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(c *models.Client) error {
	return r.db.Create(c).Error
}

func (r *ClientRepository) Save(c *models.Client) error {
	return r.db.Save(c).Error
}

func (r *ClientRepository) ListClients(limit, offset int) ([]models.Client, error) {
	var list []models.Client
	err := r.db.Where("role = ?", domain.RoleClient).
		Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// Delete removes the client and all of its orders.
func (r *ClientRepository) Delete(id uint) error {
	if err := r.db.Where("client_id = ?", id).Delete(&models.Order{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Client{}, id).Error
}

// SaveQuota writes the ledger and its aggregate remaining count onto the row.
func (r *ClientRepository) SaveQuota(c *models.Client, m quota.Map) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	c.Quota = data
	c.RemainingQuota = m.SumRemaining()
	return r.db.Model(c).Updates(map[string]interface{}{
		"quota":           c.Quota,
		"remaining_quota": c.RemainingQuota,
	}).Error
}

func (r *ClientRepository) UpdatePassword(id uint, hash string) error {
	return r.db.Model(&models.Client{}).Where("id = ?", id).Update("password_hash", hash).Error
}
