package gateway

import (
	"errors"
	"fmt"
)

// ErrUnexpectedFormat indicates the provider returned a 2xx response whose
// body carried neither recognized content nor a success indicator. The
// wrapped message includes the raw body for diagnosis.
var ErrUnexpectedFormat = errors.New("unexpected response format")

// StatusError reports a non-2xx response from the OCR provider, carrying
// the provider's HTTP status and its error message when one was supplied.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API request failed with status %d", e.Status)
}
