package processing

import (
	"errors"
	"net/http"

	"github.com/ocrdesk/ocrdesk/internal/gateway"
	"github.com/ocrdesk/ocrdesk/internal/history"
)

// Domain errors for processing operations.
var (
	// ErrFileMissing indicates the record exists but its backing blob
	// does not, distinct from the record itself being absent.
	ErrFileMissing = errors.New("file not found on server")

	// ErrMissingInput indicates the request lacked an id or API key.
	ErrMissingInput = errors.New("missing id or API key")
)

// MapHTTPStatus converts processing errors to appropriate HTTP status
// codes. Gateway status errors propagate the provider's own status.
func MapHTTPStatus(err error) int {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	if errors.Is(err, history.ErrNotFound) || errors.Is(err, ErrFileMissing) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrMissingInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
