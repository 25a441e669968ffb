package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foliotrack/apperr"
	"foliotrack/auth"
	"foliotrack/marketdata"
	"foliotrack/models"
	"foliotrack/portfolio"
	"foliotrack/server"
	"foliotrack/token"
)

// memStore implements every storage interface in memory.
type memStore struct {
	nextID       uint
	users        map[uint]*models.User
	platforms    []*models.Platform
	transactions []models.Transaction
}

func newMemStore() *memStore {
	return &memStore{users: map[uint]*models.User{}}
}

func (m *memStore) CreateUser(ctx context.Context, user *models.User) error {
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memStore) SetRefreshToken(ctx context.Context, userID uint, tok *string) error {
	user, ok := m.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.RefreshToken = tok
	return nil
}

func (m *memStore) CreatePlatform(ctx context.Context, platform *models.Platform) error {
	m.nextID++
	platform.ID = m.nextID
	m.platforms = append(m.platforms, platform)
	return nil
}

func (m *memStore) ListPlatforms(ctx context.Context, userID uint) ([]models.Platform, error) {
	var out []models.Platform
	for _, p := range m.platforms {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) PlatformExists(ctx context.Context, userID uint, name string) (bool, error) {
	for _, p := range m.platforms {
		if p.UserID == userID && p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdateValuation(ctx context.Context, investmentID uint, price, value, returns, returnsPercent float64) error {
	for _, p := range m.platforms {
		for i := range p.Investments {
			if p.Investments[i].ID == investmentID {
				p.Investments[i].CurrentPrice = price
				p.Investments[i].CurrentValue = value
				p.Investments[i].Returns = returns
				p.Investments[i].ReturnsPercent = returnsPercent
				return nil
			}
		}
	}
	return apperr.NotFound("Investment not found")
}

func (m *memStore) ListRecentTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error) {
	var out []models.Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].UserID == userID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}

func (m *memStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	m.transactions = append(m.transactions, *tx)
	return nil
}

type testAPI struct {
	router *gin.Engine
	store  *memStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	tokens := token.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	market, err := marketdata.NewService(marketdata.Options{Provider: "synthetic"}, nil, zerolog.Nop())
	require.NoError(t, err)

	router := server.NewRouter(server.Deps{
		Env:       "test",
		Log:       zerolog.Nop(),
		Tokens:    tokens,
		Auth:      auth.NewService(store, tokens, zerolog.Nop()),
		Portfolio: portfolio.NewService(store, store, store, market, zerolog.Nop()),
		Market:    market,
		Started:   time.Now(),
	})
	return &testAPI{router: router, store: store}
}

func (a *testAPI) request(t *testing.T, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func (a *testAPI) signup(t *testing.T, email string) (accessToken, refreshToken string) {
	t.Helper()
	w, body := a.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"password": "Secure1!",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := body["data"].(map[string]interface{})
	return data["accessToken"].(string), data["refreshToken"].(string)
}

func errorMessage(body map[string]interface{}) string {
	errObj, _ := body["error"].(map[string]interface{})
	msg, _ := errObj["message"].(string)
	return msg
}

func TestSignupScenario(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "a@b.com",
		"password": "Secure1!",
		"name":     "A",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])

	user := data["user"].(map[string]interface{})
	assert.Equal(t, "a@b.com", user["email"])
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
}

func TestSignupMissingFields(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"password": "Secure1!",
		"name":     "A",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, errorMessage(body), "required")
}

func TestLoginWrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@b.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, errorMessage(body), "Invalid credentials")
}

func TestLoginSucceeds(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@b.com",
		"password": "Secure1!",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["accessToken"])
	user := data["user"].(map[string]interface{})
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
}

func TestRefreshRotation(t *testing.T) {
	api := newTestAPI(t)
	_, refresh1 := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refresh1})
	require.Equal(t, http.StatusOK, w.Code)
	refresh2 := body["data"].(map[string]interface{})["refreshToken"].(string)
	require.NotEqual(t, refresh1, refresh2)

	// The rotated-out token still verifies cryptographically but is rejected.
	w, _ = api.request(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refresh1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.request(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refresh2})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	api := newTestAPI(t)
	access, refresh := api.signup(t, "a@b.com")

	w, _ := api.request(t, http.MethodPost, "/api/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.request(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodGet, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["data"].(map[string]interface{})
	assert.Equal(t, "a@b.com", user["email"])
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.request(t, http.MethodGet, "/api/portfolio/summary", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", errorMessage(body))
}

func TestProtectedRouteWithInvalidToken(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.request(t, http.MethodGet, "/api/portfolio/summary", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", errorMessage(body))
}

func TestSummaryEmptyPortfolio(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodGet, "/api/portfolio/summary", access, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Zero(t, data["totalValue"])
	assert.Zero(t, data["totalInvested"])
	assert.Zero(t, data["totalReturns"])
	assert.Zero(t, data["returnsPercentage"])
	assert.NotEmpty(t, data["lastUpdated"])
}

func TestSummaryWithHoldings(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	api.store.platforms = append(api.store.platforms, &models.Platform{
		UserID: 1,
		Name:   "zerodha",
		Type:   "broker",
		Status: "connected",
		Investments: []models.Investment{
			// RELIANCE is priced at 2850.75 by the synthetic provider.
			{Symbol: "RELIANCE", Type: "equity", Status: "active", Quantity: 2, InvestedValue: 5000},
		},
	})
	api.store.platforms[0].ID = 100
	api.store.platforms[0].Investments[0].ID = 101

	w, body := api.request(t, http.MethodGet, "/api/portfolio/summary", access, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, 5701.5, data["totalValue"])
	assert.Equal(t, 5000.0, data["totalInvested"])
	assert.Equal(t, 701.5, data["totalReturns"])
	assert.Empty(t, data["failedSymbols"])

	// The persisted valuation was refreshed.
	inv := api.store.platforms[0].Investments[0]
	assert.Equal(t, 2850.75, inv.CurrentPrice)
	assert.Equal(t, 5701.5, inv.CurrentValue)
}

func TestPerformanceInvalidPeriod(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodGet, "/api/portfolio/performance?period=INVALID", access, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(body), "Invalid period")
}

func TestPerformanceDefaultsPeriod(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodGet, "/api/portfolio/performance", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "1M", data["period"])
}

func TestConnectPlatformFlow(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodPost, "/api/portfolio/connect", access, gin.H{
		"platform":    "zerodha",
		"credentials": gin.H{"apiKey": "k", "apiSecret": "s"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "zerodha", data["name"])
	assert.Equal(t, "connected", data["status"])
	assert.NotZero(t, data["platformId"])

	// A second connect for the same platform is rejected without creating
	// a duplicate record.
	w, body = api.request(t, http.MethodPost, "/api/portfolio/connect", access, gin.H{
		"platform":    "zerodha",
		"credentials": gin.H{"apiKey": "k"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(body), "already connected")
	assert.Len(t, api.store.platforms, 1)
}

func TestAllocationEndpoint(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodGet, "/api/portfolio/allocation", access, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	for _, key := range []string{"equity", "debt", "gold", "crypto"} {
		assert.Contains(t, data, key)
		assert.Zero(t, data[key])
	}
}

func TestMarketQuoteEndpoint(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.signup(t, "a@b.com")

	w, body := api.request(t, http.MethodGet, "/api/market/quote/RELIANCE", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "RELIANCE", data["symbol"])
	assert.Equal(t, 2850.75, data["price"])

	w, _ = api.request(t, http.MethodGet, "/api/market/quote/BOGUS", access, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.request(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "test", data["environment"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.request(t, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", errorMessage(body))
}
