package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"foliotrack/apperr"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// alphaVantageResponse covers both GLOBAL_QUOTE and TIME_SERIES_DAILY payloads.
type alphaVantageResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	TimeSeriesDaily map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
	Note string `json:"Note"`
}

// AlphaVantage fetches live market data from alphavantage.co. The free tier
// allows 5 requests per minute, so all calls go through a rate limiter.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// indexSymbols are the index proxies quoted by GetIndices.
var indexSymbols = []struct{ symbol, name string }{
	{"NSEI", "NIFTY 50"},
	{"BSESN", "BSE SENSEX"},
	{"NSEBANK", "BANK NIFTY"},
}

func NewAlphaVantage(apiKey string, log zerolog.Logger) (*AlphaVantage, error) {
	if apiKey == "" {
		return nil, errors.New("alpha vantage: API key not configured")
	}
	return &AlphaVantage{
		apiKey:  apiKey,
		baseURL: alphaVantageBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
		log:     log,
	}, nil
}

func (p *AlphaVantage) GetPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := p.GetQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return quote.Price, nil
}

func (p *AlphaVantage) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	result, err := p.fetch(ctx, "GLOBAL_QUOTE", symbol)
	if err != nil {
		return nil, err
	}

	gq := result.GlobalQuote
	if gq.Price == "" {
		return nil, apperr.NotFound("Symbol %s not found", symbol)
	}

	price, err := strconv.ParseFloat(gq.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage: parsing price for %s: %w", symbol, err)
	}

	quote := &Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         price,
		Change:        parseFloatOrZero(gq.Change),
		ChangePercent: parseFloatOrZero(strings.TrimSuffix(gq.ChangePercent, "%")),
		Volume:        parseIntOrZero(gq.Volume),
		High:          parseFloatOrZero(gq.High),
		Low:           parseFloatOrZero(gq.Low),
		Open:          parseFloatOrZero(gq.Open),
		Close:         parseFloatOrZero(gq.PreviousClose),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	return quote, nil
}

func (p *AlphaVantage) GetHistoricalData(ctx context.Context, symbol string, period Period) ([]HistoricalPoint, error) {
	result, err := p.fetch(ctx, "TIME_SERIES_DAILY", symbol)
	if err != nil {
		return nil, err
	}
	if len(result.TimeSeriesDaily) == 0 {
		return nil, apperr.NotFound("Historical data for %s not found", symbol)
	}

	start := period.Start(time.Now()).Format("2006-01-02")
	dates := make([]string, 0, len(result.TimeSeriesDaily))
	for date := range result.TimeSeriesDaily {
		if date >= start {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	series := make([]HistoricalPoint, 0, len(dates))
	var base float64
	for i, date := range dates {
		value := parseFloatOrZero(result.TimeSeriesDaily[date].Close)
		if i == 0 {
			base = value
		}
		var returns float64
		if base > 0 {
			returns = round2((value - base) / base * 100)
		}
		series = append(series, HistoricalPoint{Date: date, Value: value, Returns: returns})
	}
	return series, nil
}

func (p *AlphaVantage) GetBulkQuotes(ctx context.Context, symbols []string) (map[string]*Quote, error) {
	quotes := make(map[string]*Quote, len(symbols))
	for _, symbol := range symbols {
		quote, err := p.GetQuote(ctx, symbol)
		if err != nil {
			p.log.Warn().Err(err).Str("symbol", symbol).Msg("bulk quote failed")
			quotes[symbol] = nil
			continue
		}
		quotes[symbol] = quote
	}
	return quotes, nil
}

func (p *AlphaVantage) GetIndices(ctx context.Context) ([]IndexValue, error) {
	indices := make([]IndexValue, 0, len(indexSymbols))
	for _, idx := range indexSymbols {
		quote, err := p.GetQuote(ctx, idx.symbol)
		if err != nil {
			p.log.Warn().Err(err).Str("symbol", idx.symbol).Msg("index quote failed")
			continue
		}
		indices = append(indices, IndexValue{
			Symbol:        idx.symbol,
			Name:          idx.name,
			Value:         quote.Price,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
		})
	}
	return indices, nil
}

func (p *AlphaVantage) IsConfigured() bool { return p.apiKey != "" }

func (p *AlphaVantage) fetch(ctx context.Context, function, symbol string) (*alphaVantageResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/query?function=%s&symbol=%s&apikey=%s", p.baseURL, function, symbol, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage: unexpected status %d", resp.StatusCode)
	}

	var result alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("alpha vantage: decoding response: %w", err)
	}
	if result.Note != "" {
		// The free tier reports rate limiting through a Note field with a 200.
		return nil, fmt.Errorf("alpha vantage: rate limited: %s", result.Note)
	}
	return &result, nil
}

func parseFloatOrZero(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseIntOrZero(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
