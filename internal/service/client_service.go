package service

import (
	"errors"
	"time"

	"admoa/internal/domain"
	"admoa/internal/models"
	"admoa/internal/quota"
	"admoa/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameExists = errors.New("username already taken")
	ErrUnknownPlan    = errors.New("unknown contract plan")
)

type ClientService struct {
	db         *gorm.DB
	clientRepo *repository.ClientRepository
}

func NewClientService(db *gorm.DB, clientRepo *repository.ClientRepository) *ClientService {
	return &ClientService{db: db, clientRepo: clientRepo}
}

type CreateClientInput struct {
	Username    string
	Password    string
	CompanyName string
	Plan        string
	StartDate   time.Time
	// Quota overrides the plan grant; meant for the manual plan (1) where
	// the admin fills in every value by hand before commit.
	Quota quota.Map
}

// CreateClient provisions a client account with its plan grant and contract
// window.
func (s *ClientService) CreateClient(in CreateClientInput) (*models.Client, error) {
	if !domain.IsPlan(in.Plan) {
		return nil, ErrUnknownPlan
	}
	if _, err := s.clientRepo.GetByUsername(in.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	grant := quota.ForPlan(in.Plan)
	if in.Quota != nil {
		grant = in.Quota
	}
	data, err := grant.ToJSON()
	if err != nil {
		return nil, err
	}
	start := in.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	end := quota.EndDate(start, in.Plan)

	client := &models.Client{
		Username:          in.Username,
		PasswordHash:      string(hash),
		Role:              domain.RoleClient,
		CompanyName:       in.CompanyName,
		ContractStartDate: &start,
		ContractEndDate:   &end,
		IsActive:          true,
		Quota:             data,
		RemainingQuota:    grant.SumRemaining(),
	}
	if err := s.clientRepo.Create(client); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"client_id": client.ID, "username": client.Username, "plan": in.Plan,
	}).Info("client created")
	return client, nil
}

// RenewPlan merges a fresh plan grant into the client's ledger and extends
// the contract from the later of now and the current end date.
func (s *ClientService) RenewPlan(clientID uint, plan string) (*models.Client, error) {
	if !domain.IsPlan(plan) {
		return nil, ErrUnknownPlan
	}
	var client *models.Client
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		client, err = s.clientRepo.WithTx(tx).GetByID(clientID)
		if err != nil {
			return err
		}
		ledger, err := quota.FromJSON(client.Quota)
		if err != nil {
			return err
		}
		now := time.Now()
		currentEnd := now
		if client.ContractEndDate != nil {
			currentEnd = *client.ContractEndDate
		}
		merged, newEnd := quota.Renew(ledger, currentEnd, plan, now)
		client.ContractEndDate = &newEnd
		if err := tx.Model(client).Update("contract_end_date", newEnd).Error; err != nil {
			return err
		}
		return s.clientRepo.WithTx(tx).SaveQuota(client, merged)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"client_id": clientID, "plan": plan, "contract_end": client.ContractEndDate,
	}).Info("contract renewed")
	return client, nil
}

type UpdateClientInput struct {
	CompanyName       *string
	IsActive          *bool
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	// Quota replaces the stored ledger verbatim. Values are taken as given:
	// manual edits may put remaining out of sync with total, and debit and
	// credit are the only operations that police the range.
	Quota    quota.Map
	Password *string
}

// UpdateClient applies an admin edit to the account row.
func (s *ClientService) UpdateClient(clientID uint, in UpdateClientInput) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if in.CompanyName != nil {
		client.CompanyName = *in.CompanyName
	}
	if in.IsActive != nil {
		client.IsActive = *in.IsActive
	}
	if in.ContractStartDate != nil {
		client.ContractStartDate = in.ContractStartDate
	}
	if in.ContractEndDate != nil {
		client.ContractEndDate = in.ContractEndDate
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		client.PasswordHash = string(hash)
	}
	if in.Quota != nil {
		data, err := in.Quota.ToJSON()
		if err != nil {
			return nil, err
		}
		client.Quota = data
		client.RemainingQuota = in.Quota.SumRemaining()
	}
	if err := s.clientRepo.Save(client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient removes the account and all of its orders.
func (s *ClientService) DeleteClient(clientID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.clientRepo.WithTx(tx).GetByID(clientID); err != nil {
			return err
		}
		return s.clientRepo.WithTx(tx).Delete(clientID)
	})
}
