// Package processing orchestrates the record status machine around the
// remote OCR call: pending or terminal, through processing, to success or
// failed.
package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ocrdesk/ocrdesk/internal/gateway"
	"github.com/ocrdesk/ocrdesk/internal/history"
	"github.com/ocrdesk/ocrdesk/internal/storage"
)

type orchestrator struct {
	records history.System
	storage storage.System
	gateway Recognizer
	logger  *slog.Logger
}

// New creates a processing orchestrator.
func New(records history.System, store storage.System, gw Recognizer, logger *slog.Logger) System {
	return &orchestrator{
		records: records,
		storage: store,
		gateway: gw,
		logger:  logger.With("system", "processing"),
	}
}

// Process runs one recognition cycle for the record. The processing status
// is persisted before the remote call so concurrent readers observe the
// transition; any previous result is cleared at the same time so a failed
// re-run never displays stale content. Concurrent calls for the same id
// race last-writer-wins; per-id serialization is deliberately not provided.
func (o *orchestrator) Process(ctx context.Context, id int64, opts Options) (string, error) {
	rec, err := o.records.Find(ctx, id)
	if err != nil {
		return "", err
	}

	key := rec.StorageKey()
	exists, err := o.storage.Validate(ctx, key)
	if err != nil {
		return "", fmt.Errorf("validate file: %w", err)
	}
	if !exists {
		o.logger.Error("blob missing for record", "id", id, "storage_key", key)
		o.markFailed(ctx, id)
		return "", fmt.Errorf("%w: %s", ErrFileMissing, key)
	}

	processing := history.StatusProcessing
	if _, err := o.records.Update(ctx, id, history.UpdateCommand{
		Status:      &processing,
		ClearResult: true,
	}); err != nil {
		return "", fmt.Errorf("mark processing: %w", err)
	}

	data, err := o.storage.Retrieve(ctx, key)
	if err != nil {
		o.markFailed(ctx, id)
		return "", fmt.Errorf("read file: %w", err)
	}

	o.logger.Info("processing record",
		"id", id, "file_name", rec.FileName, "mime_type", rec.FileType,
		"mode", opts.Mode, "format", opts.Format)

	text, err := o.gateway.Recognize(ctx, gateway.Request{
		Data:     data,
		MimeType: rec.FileType,
		APIKey:   opts.APIKey,
		Endpoint: opts.Endpoint,
	})
	if err != nil {
		o.markFailed(ctx, id)
		return "", err
	}

	success := history.StatusSuccess
	if _, err := o.records.Update(ctx, id, history.UpdateCommand{
		Status: &success,
		Result: &text,
	}); err != nil {
		return "", fmt.Errorf("persist result: %w", err)
	}

	o.logger.Info("processing succeeded", "id", id, "result_length", len(text))
	return text, nil
}

// markFailed is best-effort: a failure to persist the failed status is
// logged, and the caller's original error is surfaced instead.
func (o *orchestrator) markFailed(ctx context.Context, id int64) {
	failed := history.StatusFailed
	if _, err := o.records.Update(ctx, id, history.UpdateCommand{Status: &failed}); err != nil {
		o.logger.Error("failed to persist failed status", "id", id, "error", err)
	}
}
