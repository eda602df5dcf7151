package service

import (
	"errors"

	"admoa/config"
	"admoa/internal/auth"
	"admoa/internal/models"
	"admoa/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCreds = errors.New("invalid username or password")

type AuthService struct {
	cfg        *config.Config
	clientRepo *repository.ClientRepository
}

func NewAuthService(cfg *config.Config, clientRepo *repository.ClientRepository) *AuthService {
	return &AuthService{cfg: cfg, clientRepo: clientRepo}
}

func (s *AuthService) Login(username, password string) (*models.Client, string, string, error) {
	c, err := s.clientRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, c.ID, c.Username, c.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, c.ID)
	if err != nil {
		return nil, "", "", err
	}
	return c, access, refresh, nil
}

func (s *AuthService) Refresh(refreshToken string) (string, error) {
	id, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	c, err := s.clientRepo.GetByID(id)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, c.ID, c.Username, c.Role)
}

func (s *AuthService) ChangePassword(clientID uint, oldPassword, newPassword string) error {
	c, err := s.clientRepo.GetByID(clientID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.clientRepo.UpdatePassword(clientID, string(hash))
}
