package handlers

import (
	"github.com/gin-gonic/gin"

	"foliotrack/marketdata"
)

type MarketHandler struct {
	market *marketdata.Service
}

func NewMarketHandler(market *marketdata.Service) *MarketHandler {
	return &MarketHandler{market: market}
}

// Quote handles GET /api/market/quote/:symbol.
func (h *MarketHandler) Quote(c *gin.Context) {
	quote, err := h.market.GetQuote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, quote)
}

// Indices handles GET /api/market/indices.
func (h *MarketHandler) Indices(c *gin.Context) {
	indices, err := h.market.GetIndices(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, indices)
}
