package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/service/auth"
	"github.com/mdkarim/traveldesk/internal/service/booking"
	"github.com/mdkarim/traveldesk/internal/service/inventory"
	"github.com/mdkarim/traveldesk/internal/service/reports"
	"github.com/mdkarim/traveldesk/internal/service/settings"
)

const (
	identityKey = "identity"
	tokenKey    = "session_token"
)

// RequireAuth resolves the bearer token into an identity and aborts with
// 401 when the session is missing or expired.
func RequireAuth(authService auth.AuthUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		ident, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(identityKey, ident)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(domain.Identity); ok {
			return ident
		}
	}
	return domain.Identity{}
}

func sessionTokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// statusFor maps service errors onto HTTP status codes. Anything not
// recognized is a plain bad request; storage failures are 500s at the
// call sites that can tell them apart.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrPermissionDenied),
		errors.Is(err, inventory.ErrPermissionDenied),
		errors.Is(err, booking.ErrPermissionDenied),
		errors.Is(err, reports.ErrPermissionDenied),
		errors.Is(err, settings.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, inventory.ErrTicketNotFound),
		errors.Is(err, booking.ErrTicketNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUserExists),
		errors.Is(err, inventory.ErrTicketSold),
		errors.Is(err, booking.ErrTicketNotAvailable),
		errors.Is(err, booking.ErrLossNotConfirmed):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
