package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"foliotrack/apperr"
	"foliotrack/models"
)

// Store is the gorm-backed implementation of all store interfaces.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the schema for all entities.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Platform{},
		&models.Investment{},
		&models.Transaction{},
	)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) SetRefreshToken(ctx context.Context, userID uint, token *string) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

func (s *Store) CreatePlatform(ctx context.Context, platform *models.Platform) error {
	return s.db.WithContext(ctx).Create(platform).Error
}

func (s *Store) ListPlatforms(ctx context.Context, userID uint) ([]models.Platform, error) {
	var platforms []models.Platform
	err := s.db.WithContext(ctx).
		Preload("Investments").
		Where("user_id = ?", userID).
		Order("id").
		Find(&platforms).Error
	if err != nil {
		return nil, err
	}
	return platforms, nil
}

func (s *Store) PlatformExists(ctx context.Context, userID uint, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Platform{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) UpdateValuation(ctx context.Context, investmentID uint, price, value, returns, returnsPercent float64) error {
	return s.db.WithContext(ctx).
		Model(&models.Investment{}).
		Where("id = ?", investmentID).
		Updates(map[string]interface{}{
			"current_price":   price,
			"current_value":   value,
			"returns":         returns,
			"returns_percent": returnsPercent,
		}).Error
}

func (s *Store) ListRecentTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}
