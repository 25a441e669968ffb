package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	priceCacheTTL      = 5 * time.Minute
	historicalCacheTTL = 24 * time.Hour
)

// Options configures provider selection.
type Options struct {
	// Provider selects the backend: synthetic, alphavantage, or a recognized
	// but unimplemented name (zerodha, groww, binance). Anything else falls
	// back to synthetic with a warning.
	Provider string
	// AlphaVantageAPIKey is required when Provider is alphavantage.
	AlphaVantageAPIKey string
}

// Service selects a market-data provider at construction and delegates all
// calls to it. Prices are cached in Redis when a client is supplied;
// historical series are cached in process.
type Service struct {
	provider     Provider
	providerType string
	opts         Options
	rdb          *redis.Client
	hist         *gocache.Cache
	log          zerolog.Logger
}

// NewService selects the provider from opts. Misconfigured or unimplemented
// providers fall back to synthetic with a warning; a provider that reports
// itself unconfigured after selection is a fatal configuration error.
func NewService(opts Options, rdb *redis.Client, log zerolog.Logger) (*Service, error) {
	s := &Service{
		opts: opts,
		rdb:  rdb,
		hist: gocache.New(historicalCacheTTL, historicalCacheTTL),
		log:  log.With().Str("component", "marketdata").Logger(),
	}
	if err := s.selectProvider(opts.Provider); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) selectProvider(providerType string) error {
	name := strings.ToLower(providerType)
	if name == "" {
		name = "synthetic"
	}
	s.log.Info().Str("provider", name).Msg("initializing market data provider")

	switch name {
	case "synthetic", "mock":
		s.provider = NewSynthetic()
		s.providerType = "synthetic"

	case "alphavantage":
		provider, err := NewAlphaVantage(s.opts.AlphaVantageAPIKey, s.log)
		if err != nil {
			s.log.Warn().Err(err).Msg("alpha vantage unavailable, falling back to synthetic")
			s.provider = NewSynthetic()
			s.providerType = "synthetic"
			break
		}
		s.provider = provider
		s.providerType = "alphavantage"

	case "zerodha", "groww", "binance":
		s.log.Warn().Str("provider", name).Msg("provider not yet implemented, using synthetic")
		s.provider = NewSynthetic()
		s.providerType = "synthetic"

	default:
		s.log.Warn().Str("provider", name).Msg("unknown provider, using synthetic")
		s.provider = NewSynthetic()
		s.providerType = "synthetic"
	}

	if !s.provider.IsConfigured() {
		return errors.New("market data provider configuration failed")
	}
	return nil
}

// ProviderType returns the active provider's declared type.
func (s *Service) ProviderType() string { return s.providerType }

// SwitchProvider re-runs provider selection. It mutates shared state without
// synchronization and exists for tests; production selects once at startup.
func (s *Service) SwitchProvider(providerType string) error {
	s.log.Info().
		Str("from", s.providerType).
		Str("to", providerType).
		Msg("switching market data provider")
	return s.selectProvider(providerType)
}

func (s *Service) GetPrice(ctx context.Context, symbol string) (float64, error) {
	cacheKey := fmt.Sprintf("stock:%s:price", strings.ToUpper(symbol))
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if price, err := strconv.ParseFloat(cached, 64); err == nil {
				return price, nil
			}
		}
	}

	price, err := s.provider.GetPrice(ctx, symbol)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("price fetch failed")
		return 0, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, cacheKey, strconv.FormatFloat(price, 'f', -1, 64), priceCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("price cache write failed")
		}
	}
	return price, nil
}

func (s *Service) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	quote, err := s.provider.GetQuote(ctx, symbol)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("quote fetch failed")
		return nil, err
	}
	return quote, nil
}

func (s *Service) GetHistoricalData(ctx context.Context, symbol string, period Period) ([]HistoricalPoint, error) {
	cacheKey := fmt.Sprintf("hist:%s:%s", strings.ToUpper(symbol), period)
	if cached, ok := s.hist.Get(cacheKey); ok {
		return cached.([]HistoricalPoint), nil
	}

	series, err := s.provider.GetHistoricalData(ctx, symbol, period)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Str("period", string(period)).Msg("historical fetch failed")
		return nil, err
	}

	s.hist.Set(cacheKey, series, historicalCacheTTL)
	return series, nil
}

func (s *Service) GetBulkQuotes(ctx context.Context, symbols []string) (map[string]*Quote, error) {
	quotes, err := s.provider.GetBulkQuotes(ctx, symbols)
	if err != nil {
		s.log.Error().Err(err).Msg("bulk quote fetch failed")
		return nil, err
	}
	return quotes, nil
}

func (s *Service) GetIndices(ctx context.Context) ([]IndexValue, error) {
	indices, err := s.provider.GetIndices(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("index fetch failed")
		return nil, err
	}
	return indices, nil
}
