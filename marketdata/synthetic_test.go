package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foliotrack/apperr"
)

func TestSyntheticGetPrice(t *testing.T) {
	p := NewSyntheticSeeded(1)
	ctx := context.Background()

	price, err := p.GetPrice(ctx, "RELIANCE")
	require.NoError(t, err)
	assert.Equal(t, 2850.75, price)

	// Symbol lookup is case-insensitive.
	price, err = p.GetPrice(ctx, "reliance")
	require.NoError(t, err)
	assert.Equal(t, 2850.75, price)
}

func TestSyntheticGetPriceUnknownSymbol(t *testing.T) {
	p := NewSyntheticSeeded(1)

	_, err := p.GetPrice(context.Background(), "NOPE")
	require.Error(t, err)
	ae, ok := apperr.Operational(err)
	require.True(t, ok)
	assert.Equal(t, 404, ae.Status)
}

func TestSyntheticGetQuote(t *testing.T) {
	p := NewSyntheticSeeded(42)

	quote, err := p.GetQuote(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Equal(t, "INFY", quote.Symbol)
	assert.Equal(t, 1450.50, quote.Price)
	assert.Equal(t, quote.Price, quote.Close)
	assert.GreaterOrEqual(t, quote.High, quote.Price)
	assert.LessOrEqual(t, quote.Low, quote.Price)
	assert.GreaterOrEqual(t, quote.Volume, int64(500000))
	assert.NotEmpty(t, quote.Timestamp)
}

func TestSyntheticHistoricalPointCounts(t *testing.T) {
	p := NewSyntheticSeeded(7)
	ctx := context.Background()

	expected := map[Period]int{
		Period1D:  24,
		Period1W:  7,
		Period1M:  30,
		Period3M:  90,
		Period6M:  180,
		Period1Y:  365,
		PeriodAll: 730,
	}

	for period, points := range expected {
		series, err := p.GetHistoricalData(ctx, "TCS", period)
		require.NoError(t, err, "period %s", period)
		assert.Len(t, series, points, "period %s", period)
	}
}

func TestSyntheticHistoricalValueBounds(t *testing.T) {
	p := NewSyntheticSeeded(99)

	series, err := p.GetHistoricalData(context.Background(), "TCS", Period1M)
	require.NoError(t, err)

	price := syntheticPrices["TCS"]
	for _, point := range series {
		// Trend spans 85%..100% of the current price with ±5% noise.
		assert.GreaterOrEqual(t, point.Value, price*0.79)
		assert.LessOrEqual(t, point.Value, price*1.06)
		assert.NotEmpty(t, point.Date)
	}
}

func TestSyntheticBulkQuotesDegradesPerSymbol(t *testing.T) {
	p := NewSyntheticSeeded(3)

	quotes, err := p.GetBulkQuotes(context.Background(), []string{"RELIANCE", "BOGUS", "BTC"})
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.NotNil(t, quotes["RELIANCE"])
	assert.Nil(t, quotes["BOGUS"])
	assert.NotNil(t, quotes["BTC"])
}

func TestSyntheticIndices(t *testing.T) {
	p := NewSyntheticSeeded(1)

	indices, err := p.GetIndices(context.Background())
	require.NoError(t, err)
	require.Len(t, indices, 4)
	assert.Equal(t, "NIFTY50", indices[0].Symbol)
}

func TestSyntheticIsConfigured(t *testing.T) {
	assert.True(t, NewSynthetic().IsConfigured())
}

func TestParsePeriod(t *testing.T) {
	for _, p := range Periods() {
		parsed, err := ParsePeriod(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParsePeriod("2W")
	require.Error(t, err)
	ae, ok := apperr.Operational(err)
	require.True(t, ok)
	assert.Equal(t, 400, ae.Status)
}
