package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/sstube-go/internal/domain"
)

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, domain.ErrTaskNotFound) {
		return http.StatusNotFound
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindExtraction:
		return http.StatusBadGateway
	case domain.KindProcessLaunch:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	if status != http.StatusNotFound {
		body["kind"] = domain.KindOf(err)
	}
	c.JSON(status, body)
}
