package repository

import (
	"errors"

	"admoa/internal/models"

	"gorm.io/gorm"
)

var ErrInsufficientPoints = errors.New("insufficient points balance")

type PointRepository struct {
	db *gorm.DB
}

func NewPointRepository(db *gorm.DB) *PointRepository {
	return &PointRepository{db: db}
}

// Adjust moves the client's points balance by amount (negative = debit) and
// records a transaction row, atomically.
func (r *PointRepository) Adjust(clientID uint, amount int, reason string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.First(&c, clientID).Error; err != nil {
			return err
		}
		if c.Points+amount < 0 {
			return ErrInsufficientPoints
		}
		if err := tx.Model(&c).Update("points", c.Points+amount).Error; err != nil {
			return err
		}
		return tx.Create(&models.PointTransaction{
			ClientID: clientID,
			Amount:   amount,
			Reason:   reason,
		}).Error
	})
}

func (r *PointRepository) ListByClient(clientID uint, limit, offset int) ([]models.PointTransaction, error) {
	var list []models.PointTransaction
	err := r.db.Where("client_id = ?", clientID).
		Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
