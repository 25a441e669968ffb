package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"foliotrack/marketdata"
	"foliotrack/middleware"
	"foliotrack/portfolio"
)

type PortfolioHandler struct {
	svc *portfolio.Service
}

func NewPortfolioHandler(svc *portfolio.Service) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

// Summary handles GET /api/portfolio/summary.
func (h *PortfolioHandler) Summary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

// Platforms handles GET /api/portfolio/platforms.
func (h *PortfolioHandler) Platforms(c *gin.Context) {
	platforms, err := h.svc.GetPlatforms(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, platforms)
}

// Performance handles GET /api/portfolio/performance?period=.
func (h *PortfolioHandler) Performance(c *gin.Context) {
	period, err := marketdata.ParsePeriod(c.DefaultQuery("period", "1M"))
	if err != nil {
		fail(c, err)
		return
	}

	performance, err := h.svc.GetPerformance(c.Request.Context(), middleware.UserID(c), period)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, performance)
}

// Allocation handles GET /api/portfolio/allocation.
func (h *PortfolioHandler) Allocation(c *gin.Context) {
	allocation, err := h.svc.GetAllocation(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, allocation)
}

// TopPerformers handles GET /api/portfolio/top-performers?limit=.
func (h *PortfolioHandler) TopPerformers(c *gin.Context) {
	performers, err := h.svc.GetTopPerformers(c.Request.Context(), middleware.UserID(c), queryInt(c, "limit", 5))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, performers)
}

// Activity handles GET /api/portfolio/activity?limit=.
func (h *PortfolioHandler) Activity(c *gin.Context) {
	activity, err := h.svc.GetActivity(c.Request.Context(), middleware.UserID(c), queryInt(c, "limit", 10))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, activity)
}

// Connect handles POST /api/portfolio/connect.
func (h *PortfolioHandler) Connect(c *gin.Context) {
	var input portfolio.ConnectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, bindError(err))
		return
	}

	result, err := h.svc.ConnectPlatform(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, result)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
