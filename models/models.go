package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account holder. Password holds the bcrypt hash and is never
// serialized. RefreshToken is the single currently-valid refresh token;
// nil means no active session.
type User struct {
	gorm.Model
	Email        string  `gorm:"uniqueIndex" json:"email"`
	Password     string  `json:"-"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone,omitempty"`
	RefreshToken *string `json:"-"`
}

// Platform is a connected external account (broker, exchange, or manual
// ledger) owned by exactly one user. At most one platform per (user, name).
type Platform struct {
	gorm.Model
	UserID      uint   `gorm:"index:idx_user_platform,unique" json:"userId"`
	Name        string `gorm:"index:idx_user_platform,unique" json:"name"`
	Type        string `json:"type"` // broker | exchange | manual
	Status      string `json:"status"`
	Balance     float64 `json:"balance"`
	LastSync    time.Time `json:"lastSync"`
	APIKey      string `json:"-"`
	APISecret   string `json:"-"`
	AccessToken string `json:"-"`

	Investments []Investment `json:"investments,omitempty"`
}

// Investment is a single holding within a platform. CurrentPrice/CurrentValue/
// Returns/ReturnsPercent are refreshed on every summary computation.
type Investment struct {
	gorm.Model
	PlatformID     uint    `gorm:"index" json:"platformId"`
	Symbol         string  `gorm:"index" json:"symbol"`
	Name           string  `json:"name"`
	Type           string  `json:"type"` // equity/stock, debt/bond/mutual_fund, gold, crypto
	Status         string  `json:"status"`
	Quantity       float64 `json:"quantity"`
	AvgPrice       float64 `json:"avgPrice"`
	InvestedValue  float64 `json:"investedValue"`
	CurrentPrice   float64 `json:"currentPrice"`
	CurrentValue   float64 `json:"currentValue"`
	Returns        float64 `json:"returns"`
	ReturnsPercent float64 `json:"returnsPercent"`
}

// Transaction is an append-only record of a buy/sell/other action.
type Transaction struct {
	gorm.Model
	UserID   uint      `gorm:"index" json:"userId"`
	Type     string    `json:"type"` // buy/sell
	Symbol   string    `json:"symbol"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Amount   float64   `json:"amount"`
	Platform string    `json:"platform"`
	Date     time.Time `gorm:"index" json:"date"`
}
