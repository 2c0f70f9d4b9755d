package processing

import (
	"context"

	"github.com/ocrdesk/ocrdesk/internal/gateway"
)

// Options carries the per-request processing settings. Mode and Format are
// accepted from clients and logged but not consumed by the gateway call.
type Options struct {
	APIKey   string
	Endpoint string
	Mode     string
	Format   string
}

// Recognizer is the gateway dependency of the orchestrator.
type Recognizer interface {
	Recognize(ctx context.Context, req gateway.Request) (string, error)
}

// System drives a record through its processing lifecycle.
type System interface {
	// Process transitions the record to processing, invokes the OCR
	// gateway with its stored file, and persists the terminal outcome.
	// It may be re-invoked on a terminal record to restart the cycle.
	Process(ctx context.Context, id int64, opts Options) (string, error)
}
