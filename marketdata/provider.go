// Package marketdata provides current and historical market prices through a
// pluggable provider interface. The synthetic provider serves generated data
// for development and tests; the Alpha Vantage provider serves live quotes.
package marketdata

import (
	"context"
	"time"

	"foliotrack/apperr"
)

// Period is a historical look-back window.
type Period string

const (
	Period1D  Period = "1D"
	Period1W  Period = "1W"
	Period1M  Period = "1M"
	Period3M  Period = "3M"
	Period6M  Period = "6M"
	Period1Y  Period = "1Y"
	PeriodAll Period = "ALL"
)

var periodPoints = map[Period]int{
	Period1D:  24,
	Period1W:  7,
	Period1M:  30,
	Period3M:  90,
	Period6M:  180,
	Period1Y:  365,
	PeriodAll: 730,
}

// Periods lists all valid periods in canonical order.
func Periods() []Period {
	return []Period{Period1D, Period1W, Period1M, Period3M, Period6M, Period1Y, PeriodAll}
}

// ParsePeriod validates a period string from a query parameter.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := periodPoints[p]; !ok {
		return "", apperr.Validation("Invalid period. Must be one of: 1D, 1W, 1M, 3M, 6M, 1Y, ALL")
	}
	return p, nil
}

// Points returns the number of data points generated for the period.
func (p Period) Points() int {
	if n, ok := periodPoints[p]; ok {
		return n
	}
	return periodPoints[Period1M]
}

// Start returns the look-back start date for the period relative to now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period1D:
		return now.AddDate(0, 0, -1)
	case Period1W:
		return now.AddDate(0, 0, -7)
	case Period1M:
		return now.AddDate(0, -1, 0)
	case Period3M:
		return now.AddDate(0, -3, 0)
	case Period6M:
		return now.AddDate(0, -6, 0)
	case Period1Y:
		return now.AddDate(-1, 0, 0)
	case PeriodAll:
		return now.AddDate(-2, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// Quote is a point-in-time market quote for a single symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	Close         float64 `json:"close"`
	Timestamp     string  `json:"timestamp"`
}

// HistoricalPoint is one observation in a historical price series.
type HistoricalPoint struct {
	Date    string  `json:"date"`
	Value   float64 `json:"value"`
	Returns float64 `json:"returns"`
}

// IndexValue is a named market index with its current level.
type IndexValue struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Provider is the market-data capability contract.
type Provider interface {
	// GetPrice returns the current price; apperr.NotFound for unknown symbols.
	GetPrice(ctx context.Context, symbol string) (float64, error)
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetHistoricalData(ctx context.Context, symbol string, period Period) ([]HistoricalPoint, error)
	// GetBulkQuotes degrades per-symbol failures to nil entries.
	GetBulkQuotes(ctx context.Context, symbols []string) (map[string]*Quote, error)
	GetIndices(ctx context.Context) ([]IndexValue, error)
	// IsConfigured must hold before the provider serves traffic.
	IsConfigured() bool
}
