package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"foliotrack/apperr"
)

// Errors is the single boundary translator from service errors to the JSON
// envelope. Handlers record failures with c.Error; operational errors report
// their message and status, anything else becomes a generic 500 with the
// detail logged server-side (and included in the body only in development).
func Errors(development bool, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if ae, ok := apperr.Operational(err); ok {
			c.JSON(ae.Status, gin.H{
				"success": false,
				"error":   gin.H{"message": ae.Message, "code": ae.Status},
			})
			return
		}

		log.Error().Err(err).
			Str("requestId", c.GetString(requestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("unexpected error")

		message := "Internal Server Error"
		if development {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"message": message, "code": http.StatusInternalServerError},
		})
	}
}

// Recovery converts panics into the generic 500 envelope.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"message": "Internal Server Error", "code": http.StatusInternalServerError},
				})
			}
		}()
		c.Next()
	}
}
