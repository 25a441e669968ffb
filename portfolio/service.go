// Package portfolio computes aggregated portfolio metrics: summary,
// allocation, performance, top performers, and activity, and records new
// platform connections.
package portfolio

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"foliotrack/apperr"
	"foliotrack/marketdata"
	"foliotrack/models"
	"foliotrack/storage"
)

// MarketData is the slice of the market-data service the engine needs.
type MarketData interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
	GetHistoricalData(ctx context.Context, symbol string, period marketdata.Period) ([]marketdata.HistoricalPoint, error)
}

type Service struct {
	platforms    storage.PlatformStore
	investments  storage.InvestmentStore
	transactions storage.TransactionStore
	market       MarketData
	log          zerolog.Logger
}

func NewService(
	platforms storage.PlatformStore,
	investments storage.InvestmentStore,
	transactions storage.TransactionStore,
	market MarketData,
	log zerolog.Logger,
) *Service {
	return &Service{
		platforms:    platforms,
		investments:  investments,
		transactions: transactions,
		market:       market,
		log:          log.With().Str("component", "portfolio").Logger(),
	}
}

// Summary aggregates the user's holdings at current prices. FailedSymbols
// lists symbols whose price fetch failed; their last persisted value was used
// instead.
type Summary struct {
	TotalValue          float64  `json:"totalValue"`
	TotalInvested       float64  `json:"totalInvested"`
	TotalReturns        float64  `json:"totalReturns"`
	ReturnsPercentage   float64  `json:"returnsPercentage"`
	DayChange           float64  `json:"dayChange"`
	DayChangePercentage float64  `json:"dayChangePercentage"`
	FailedSymbols       []string `json:"failedSymbols"`
	LastUpdated         string   `json:"lastUpdated"`
}

// GetSummary refreshes each investment's valuation from current prices and
// returns the aggregated totals. A failed price fetch falls back to the
// investment's last persisted value; a single bad symbol never fails the call.
func (s *Service) GetSummary(ctx context.Context, userID uint) (*Summary, error) {
	platforms, err := s.platforms.ListPlatforms(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		FailedSymbols: []string{},
		LastUpdated:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(platforms) == 0 {
		return summary, nil
	}

	var totalInvested, totalValue float64
	for _, platform := range platforms {
		for _, inv := range platform.Investments {
			totalInvested += inv.InvestedValue

			price, err := s.market.GetPrice(ctx, inv.Symbol)
			if err != nil {
				s.log.Error().Err(err).Str("symbol", inv.Symbol).Uint("investmentId", inv.ID).
					Msg("price refresh failed, using last known value")
				summary.FailedSymbols = append(summary.FailedSymbols, inv.Symbol)
				totalValue += inv.CurrentValue
				continue
			}

			currentValue := price * inv.Quantity
			returns := currentValue - inv.InvestedValue
			var returnsPercent float64
			if inv.InvestedValue > 0 {
				returnsPercent = returns / inv.InvestedValue * 100
			}

			if err := s.investments.UpdateValuation(ctx, inv.ID, price, currentValue, returns, returnsPercent); err != nil {
				s.log.Error().Err(err).Uint("investmentId", inv.ID).Msg("persisting valuation failed")
			}
			totalValue += currentValue
		}
	}

	totalReturns := totalValue - totalInvested
	var returnsPercentage float64
	if totalInvested > 0 {
		returnsPercentage = totalReturns / totalInvested * 100
	}

	summary.TotalValue = round2(totalValue)
	summary.TotalInvested = round2(totalInvested)
	summary.TotalReturns = round2(totalReturns)
	summary.ReturnsPercentage = round2(returnsPercentage)
	// Placeholder until a daily-comparison feed exists.
	summary.DayChange = round2(totalValue * 0.0096)
	summary.DayChangePercentage = 0.96
	return summary, nil
}

// PlatformInfo is one connected platform row.
type PlatformInfo struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Status   string    `json:"status"`
	Balance  float64   `json:"balance"`
	Holdings int       `json:"holdings"`
	LastSync time.Time `json:"lastSync"`
}

func (s *Service) GetPlatforms(ctx context.Context, userID uint) ([]PlatformInfo, error) {
	platforms, err := s.platforms.ListPlatforms(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]PlatformInfo, 0, len(platforms))
	for _, p := range platforms {
		infos = append(infos, PlatformInfo{
			ID:       p.ID,
			Name:     p.Name,
			Type:     p.Type,
			Status:   p.Status,
			Balance:  p.Balance,
			Holdings: len(p.Investments),
			LastSync: p.LastSync,
		})
	}
	return infos, nil
}

// Performance is a scaled historical value series for the portfolio.
type Performance struct {
	Period     string             `json:"period"`
	DataPoints []PerformancePoint `json:"dataPoints"`
}

type PerformancePoint struct {
	Date    string  `json:"date"`
	Value   float64 `json:"value"`
	Returns float64 `json:"returns"`
}

// GetPerformance builds the series from the first platform's first investment
// scaled by its quantity. This is a deliberate simplification kept behind the
// service boundary; a portfolio-weighted series can replace it without
// changing the response shape. Provider failures yield an empty series.
func (s *Service) GetPerformance(ctx context.Context, userID uint, period marketdata.Period) (*Performance, error) {
	result := &Performance{Period: string(period), DataPoints: []PerformancePoint{}}

	platforms, err := s.platforms.ListPlatforms(ctx, userID)
	if err != nil {
		return nil, err
	}

	representative := firstInvestment(platforms)
	if representative == nil {
		return result, nil
	}

	series, err := s.market.GetHistoricalData(ctx, representative.Symbol, period)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", representative.Symbol).Msg("performance series fetch failed")
		return result, nil
	}

	for _, point := range series {
		result.DataPoints = append(result.DataPoints, PerformancePoint{
			Date:    point.Date,
			Value:   point.Value * representative.Quantity,
			Returns: point.Returns,
		})
	}
	return result, nil
}

// Allocation is the portfolio split across asset classes, in percent.
type Allocation struct {
	Equity float64 `json:"equity"`
	Debt   float64 `json:"debt"`
	Gold   float64 `json:"gold"`
	Crypto float64 `json:"crypto"`
}

// GetAllocation buckets persisted current values by investment type.
// Unrecognized types are dropped from the total.
func (s *Service) GetAllocation(ctx context.Context, userID uint) (*Allocation, error) {
	platforms, err := s.platforms.ListPlatforms(ctx, userID)
	if err != nil {
		return nil, err
	}

	var total, equity, debt, gold, crypto float64
	for _, platform := range platforms {
		for _, inv := range platform.Investments {
			switch strings.ToLower(inv.Type) {
			case "equity", "stock":
				equity += inv.CurrentValue
			case "debt", "bond", "mutual_fund":
				debt += inv.CurrentValue
			case "gold":
				gold += inv.CurrentValue
			case "crypto":
				crypto += inv.CurrentValue
			default:
				continue
			}
			total += inv.CurrentValue
		}
	}

	if total <= 0 {
		return &Allocation{}, nil
	}
	return &Allocation{
		Equity: round1(equity / total * 100),
		Debt:   round1(debt / total * 100),
		Gold:   round1(gold / total * 100),
		Crypto: round1(crypto / total * 100),
	}, nil
}

// TopPerformer is one ranked holding.
type TopPerformer struct {
	ID           uint    `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Returns      float64 `json:"returns"`
	CurrentValue float64 `json:"currentValue"`
}

// GetTopPerformers ranks active investments by returns percent descending,
// breaking ties by symbol for a stable order.
func (s *Service) GetTopPerformers(ctx context.Context, userID uint, limit int) ([]TopPerformer, error) {
	if limit <= 0 {
		limit = 5
	}

	platforms, err := s.platforms.ListPlatforms(ctx, userID)
	if err != nil {
		return nil, err
	}

	performers := []TopPerformer{}
	for _, platform := range platforms {
		for _, inv := range platform.Investments {
			if inv.Status != "active" {
				continue
			}
			performers = append(performers, TopPerformer{
				ID:           inv.ID,
				Symbol:       inv.Symbol,
				Name:         inv.Name,
				Returns:      inv.ReturnsPercent,
				CurrentValue: inv.CurrentValue,
			})
		}
	}

	sort.Slice(performers, func(i, j int) bool {
		if performers[i].Returns != performers[j].Returns {
			return performers[i].Returns > performers[j].Returns
		}
		return performers[i].Symbol < performers[j].Symbol
	})

	if len(performers) > limit {
		performers = performers[:limit]
	}
	return performers, nil
}

// Activity is one recent transaction projection.
type Activity struct {
	ID        uint    `json:"id"`
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Amount    float64 `json:"amount"`
	Timestamp string  `json:"timestamp"`
}

func (s *Service) GetActivity(ctx context.Context, userID uint, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	txs, err := s.transactions.ListRecentTransactions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	activity := make([]Activity, 0, len(txs))
	for _, tx := range txs {
		activity = append(activity, Activity{
			ID:        tx.ID,
			Type:      tx.Type,
			Symbol:    tx.Symbol,
			Amount:    tx.Amount,
			Timestamp: tx.Date.UTC().Format(time.RFC3339),
		})
	}
	return activity, nil
}

// Credentials are opaque, provider-specific API credentials.
type Credentials struct {
	APIKey      string `json:"apiKey"`
	APISecret   string `json:"apiSecret"`
	AccessToken string `json:"accessToken"`
}

type ConnectInput struct {
	Platform    string       `json:"platform"`
	Credentials *Credentials `json:"credentials"`
}

type ConnectResult struct {
	PlatformID uint   `json:"platformId"`
	Name       string `json:"name"`
	Status     string `json:"status"`
}

var platformTypes = map[string]string{
	"zerodha": "broker",
	"groww":   "broker",
	"upstox":  "broker",
	"wazirx":  "exchange",
	"binance": "exchange",
	"manual":  "manual",
}

// ConnectPlatform validates and records a new platform linkage. At most one
// connection per (user, platform); all platforms except manual require
// credentials.
func (s *Service) ConnectPlatform(ctx context.Context, userID uint, input ConnectInput) (*ConnectResult, error) {
	name := strings.ToLower(input.Platform)
	platformType, ok := platformTypes[name]
	if !ok {
		return nil, apperr.Validation("Invalid platform: %s", input.Platform)
	}

	exists, err := s.platforms.PlatformExists(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation("Platform %s is already connected", input.Platform)
	}

	if name != "manual" && input.Credentials == nil {
		return nil, apperr.Validation("Platform %s requires API credentials", input.Platform)
	}

	platform := &models.Platform{
		UserID:   userID,
		Name:     name,
		Type:     platformType,
		Status:   "connected",
		Balance:  0,
		LastSync: time.Now().UTC(),
	}
	if input.Credentials != nil {
		platform.APIKey = input.Credentials.APIKey
		platform.APISecret = input.Credentials.APISecret
		platform.AccessToken = input.Credentials.AccessToken
	}

	if err := s.platforms.CreatePlatform(ctx, platform); err != nil {
		return nil, err
	}

	s.log.Info().Str("platform", name).Uint("userId", userID).Msg("platform connected")
	return &ConnectResult{PlatformID: platform.ID, Name: platform.Name, Status: platform.Status}, nil
}

func firstInvestment(platforms []models.Platform) *models.Investment {
	for _, platform := range platforms {
		// Only the first platform is consulted.
		if len(platform.Investments) > 0 {
			return &platform.Investments[0]
		}
		break
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
