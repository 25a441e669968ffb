// Package storage defines the persistence contracts and their gorm
// implementation. Services depend on the narrow interfaces so tests can
// substitute in-memory fakes.
package storage

import (
	"context"

	"foliotrack/models"
)

// UserStore manages user accounts and the single-slot refresh token.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// SetRefreshToken overwrites the stored refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, userID uint, token *string) error
}

// PlatformStore manages platform connections and their holdings.
type PlatformStore interface {
	CreatePlatform(ctx context.Context, platform *models.Platform) error
	// ListPlatforms returns a user's platforms with investments preloaded.
	ListPlatforms(ctx context.Context, userID uint) ([]models.Platform, error)
	PlatformExists(ctx context.Context, userID uint, name string) (bool, error)
}

// InvestmentStore persists refreshed valuations.
type InvestmentStore interface {
	UpdateValuation(ctx context.Context, investmentID uint, price, value, returns, returnsPercent float64) error
}

// TransactionStore reads the append-only activity log.
type TransactionStore interface {
	ListRecentTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
}
