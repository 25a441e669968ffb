// Package handlers contains the gin HTTP handlers. Handlers bind and
// validate input, call into services, and shape the response envelope;
// failures are recorded on the context for the boundary error translator.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foliotrack/apperr"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// fail records an error for the boundary translator.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// bindError converts a gin binding failure into a validation error carrying
// the binding message.
func bindError(err error) error {
	return apperr.Validation("%s", err.Error())
}
