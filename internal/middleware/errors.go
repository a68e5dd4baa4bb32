package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lromerof/comite-agua/internal/apperr"
)

// AbortWithError maps the error taxonomy to an HTTP status. Handlers funnel
// every service error through here so the mapping lives in one place.
func AbortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindDuplicate:
		status = http.StatusConflict
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
