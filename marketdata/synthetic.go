package marketdata

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"foliotrack/apperr"
)

// syntheticPrices is the fixed price table served by the synthetic provider.
var syntheticPrices = map[string]float64{
	// Indian equities
	"RELIANCE":   2850.75,
	"INFY":       1450.50,
	"TCS":        3520.30,
	"HDFC":       1680.25,
	"ICICIBANK":  945.80,
	"SBIN":       598.45,
	"BHARTIARTL": 875.20,
	"ITC":        425.60,
	"KOTAKBANK":  1785.90,
	"LT":         3245.75,
	"HDFCBANK":   1625.40,
	"WIPRO":      425.80,
	"TATAMOTORS": 625.90,
	"TATASTEEL":  135.50,
	"AXISBANK":   1085.65,
	"MARUTI":     10250.30,
	"SUNPHARMA":  1545.20,
	"ADANIPORTS": 785.40,
	"ONGC":       185.75,
	"POWERGRID":  245.90,

	// Mutual fund NAVs
	"HDFC_EQUITY_FUND":    850.50,
	"ICICI_BLUECHIP_FUND": 95.30,
	"SBI_SMALL_CAP_FUND":  125.75,
	"AXIS_MIDCAP_FUND":    78.90,

	// Crypto (INR)
	"BTC":  3500000,
	"ETH":  180000,
	"BNB":  25000,
	"USDT": 83.50,
}

// Synthetic serves generated market data with no external calls. Prices come
// from a fixed table; quotes and history get bounded randomness around them.
type Synthetic struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay bool
}

func NewSynthetic() *Synthetic {
	return &Synthetic{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: true,
	}
}

// NewSyntheticSeeded returns a provider with a fixed seed and no simulated
// latency, for tests.
func NewSyntheticSeeded(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

func (p *Synthetic) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if err := p.simulateLatency(ctx); err != nil {
		return 0, err
	}

	price, ok := syntheticPrices[strings.ToUpper(symbol)]
	if !ok {
		return 0, apperr.NotFound("Symbol %s not found", symbol)
	}
	return price, nil
}

func (p *Synthetic) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	price, err := p.GetPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	change := p.randFloat(-50, 50)
	return &Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         price,
		Change:        round2(change),
		ChangePercent: round2(change / price * 100),
		Volume:        p.randVolume(),
		High:          round2(price + math.Abs(change)),
		Low:           round2(price - math.Abs(change)),
		Open:          round2(price - change),
		Close:         price,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (p *Synthetic) GetHistoricalData(ctx context.Context, symbol string, period Period) ([]HistoricalPoint, error) {
	price, err := p.GetPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	points := period.Points()
	start := period.Start(time.Now())
	base := price * 0.85
	series := make([]HistoricalPoint, 0, points)

	// Linear trend from ~85% to ~100% of the current price with ±5% noise.
	for i := 0; i < points; i++ {
		trend := float64(i) / float64(points)
		noise := p.randFloat(-0.05, 0.05)
		value := price * (0.85 + trend*0.15 + noise)

		series = append(series, HistoricalPoint{
			Date:    start.AddDate(0, 0, i).Format("2006-01-02"),
			Value:   round2(value),
			Returns: round2((value - base) / base * 100),
		})
	}
	return series, nil
}

func (p *Synthetic) GetBulkQuotes(ctx context.Context, symbols []string) (map[string]*Quote, error) {
	quotes := make(map[string]*Quote, len(symbols))
	for _, symbol := range symbols {
		quote, err := p.GetQuote(ctx, symbol)
		if err != nil {
			quotes[symbol] = nil
			continue
		}
		quotes[symbol] = quote
	}
	return quotes, nil
}

func (p *Synthetic) GetIndices(ctx context.Context) ([]IndexValue, error) {
	if err := p.simulateLatency(ctx); err != nil {
		return nil, err
	}

	return []IndexValue{
		{Symbol: "NIFTY50", Name: "NIFTY 50", Value: 19485.50, Change: 125.30, ChangePercent: 0.65},
		{Symbol: "SENSEX", Name: "BSE SENSEX", Value: 65450.75, Change: 285.60, ChangePercent: 0.44},
		{Symbol: "BANKNIFTY", Name: "BANK NIFTY", Value: 45320.80, Change: -150.25, ChangePercent: -0.33},
		{Symbol: "NIFTYIT", Name: "NIFTY IT", Value: 31245.90, Change: 420.50, ChangePercent: 1.36},
	}, nil
}

func (p *Synthetic) IsConfigured() bool { return true }

func (p *Synthetic) simulateLatency(ctx context.Context) error {
	if !p.delay {
		return ctx.Err()
	}
	select {
	case <-time.After(time.Duration(p.randFloat(10, 50)) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Synthetic) randFloat(min, max float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return min + p.rng.Float64()*(max-min)
}

func (p *Synthetic) randVolume() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(p.rng.Intn(5000000)) + 500000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
