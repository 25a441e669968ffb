// Package server assembles the gin router from explicitly constructed
// services.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"foliotrack/auth"
	"foliotrack/handlers"
	"foliotrack/marketdata"
	"foliotrack/middleware"
	"foliotrack/portfolio"
	"foliotrack/token"
)

// Deps carries everything the router needs.
type Deps struct {
	Env       string
	Log       zerolog.Logger
	Tokens    *token.Service
	Auth      *auth.Service
	Portfolio *portfolio.Service
	Market    *marketdata.Service
	Started   time.Time
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Recovery(deps.Log),
		middleware.Errors(deps.Env == "development", deps.Log),
	)

	authHandler := handlers.NewAuthHandler(deps.Auth)
	portfolioHandler := handlers.NewPortfolioHandler(deps.Portfolio)
	marketHandler := handlers.NewMarketHandler(deps.Market)
	healthHandler := handlers.NewHealthHandler(deps.Env, deps.Started)

	api := r.Group("/api")
	api.GET("/health", healthHandler.Health)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.Auth(deps.Tokens))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/portfolio/summary", portfolioHandler.Summary)
		protected.GET("/portfolio/platforms", portfolioHandler.Platforms)
		protected.GET("/portfolio/performance", portfolioHandler.Performance)
		protected.GET("/portfolio/allocation", portfolioHandler.Allocation)
		protected.GET("/portfolio/top-performers", portfolioHandler.TopPerformers)
		protected.GET("/portfolio/activity", portfolioHandler.Activity)
		protected.POST("/portfolio/connect", portfolioHandler.Connect)

		protected.GET("/market/quote/:symbol", marketHandler.Quote)
		protected.GET("/market/indices", marketHandler.Indices)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"message": "Route not found", "code": http.StatusNotFound},
		})
	})

	return r
}
