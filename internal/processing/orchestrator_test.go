package processing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ocrdesk/ocrdesk/internal/gateway"
	"github.com/ocrdesk/ocrdesk/internal/history"
	"github.com/ocrdesk/ocrdesk/internal/processing"
	"github.com/ocrdesk/ocrdesk/internal/storage"
	"github.com/ocrdesk/ocrdesk/pkg/pagination"
)

type recordUpdate struct {
	id  int64
	cmd history.UpdateCommand
}

type fakeRecords struct {
	records map[int64]*history.Record
	updates []recordUpdate
	nextID  int64
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: make(map[int64]*history.Record), nextID: 1}
}

func (f *fakeRecords) List(ctx context.Context, page pagination.PageRequest, filters history.Filters) (*pagination.PageResult[history.Record], error) {
	result := pagination.NewPageResult[history.Record](nil, 0, page.Page, page.Limit)
	return &result, nil
}

func (f *fakeRecords) Find(ctx context.Context, id int64) (*history.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, history.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeRecords) Create(ctx context.Context, cmd history.CreateCommand) (*history.Record, error) {
	rec := &history.Record{
		ID:       f.nextID,
		FileName: cmd.FileName,
		FileSize: cmd.FileSize,
		FileType: cmd.FileType,
		Status:   cmd.Status,
	}
	f.records[f.nextID] = rec
	f.nextID++
	return rec, nil
}

func (f *fakeRecords) Update(ctx context.Context, id int64, cmd history.UpdateCommand) (*history.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, history.ErrNotFound
	}

	f.updates = append(f.updates, recordUpdate{id: id, cmd: cmd})

	if cmd.Status != nil {
		rec.Status = *cmd.Status
	}
	if cmd.ClearResult {
		rec.Result = nil
	} else if cmd.Result != nil {
		rec.Result = cmd.Result
	}
	return rec, nil
}

func (f *fakeRecords) Delete(ctx context.Context, id int64) error {
	delete(f.records, id)
	return nil
}

func (f *fakeRecords) FindLatestByFileName(ctx context.Context, fileName string) (*history.Record, error) {
	return nil, nil
}

type fakeStorage struct {
	blobs map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (f *fakeStorage) Init() error { return nil }

func (f *fakeStorage) Store(ctx context.Context, key string, data []byte) error {
	f.blobs[key] = data
	return nil
}

func (f *fakeStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

func (f *fakeStorage) Validate(ctx context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

type fakeRecognizer struct {
	result   string
	err      error
	requests []gateway.Request
}

func (f *fakeRecognizer) Recognize(ctx context.Context, req gateway.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedRecord(t *testing.T, records *fakeRecords, store *fakeStorage, status history.Status) *history.Record {
	t.Helper()

	rec, err := records.Create(context.Background(), history.CreateCommand{
		FileName: "scan.pdf",
		FileSize: 8,
		FileType: "application/pdf",
		Status:   status,
	})
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
	store.blobs[rec.StorageKey()] = []byte("%PDF-1.4")
	return rec
}

func TestProcessSuccess(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStorage()
	recognizer := &fakeRecognizer{result: "# Extracted"}

	rec := seedRecord(t, records, store, history.StatusPending)

	sys := processing.New(records, store, recognizer, testLogger())

	result, err := sys.Process(context.Background(), rec.ID, processing.Options{APIKey: "key"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result != "# Extracted" {
		t.Errorf("result = %q", result)
	}

	if len(records.updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(records.updates))
	}

	first := records.updates[0]
	if first.cmd.Status == nil || *first.cmd.Status != history.StatusProcessing {
		t.Errorf("first update status = %v, want processing", first.cmd.Status)
	}
	if !first.cmd.ClearResult {
		t.Error("first update should clear the previous result")
	}

	second := records.updates[1]
	if second.cmd.Status == nil || *second.cmd.Status != history.StatusSuccess {
		t.Errorf("second update status = %v, want success", second.cmd.Status)
	}
	if second.cmd.Result == nil || *second.cmd.Result != "# Extracted" {
		t.Errorf("second update result = %v", second.cmd.Result)
	}

	stored := records.records[rec.ID]
	if stored.Status != history.StatusSuccess {
		t.Errorf("final status = %q, want success", stored.Status)
	}
}

func TestProcessPassesStoredFile(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStorage()
	recognizer := &fakeRecognizer{result: "text"}

	rec := seedRecord(t, records, store, history.StatusPending)

	sys := processing.New(records, store, recognizer, testLogger())

	if _, err := sys.Process(context.Background(), rec.ID, processing.Options{
		APIKey:   "key",
		Endpoint: "https://example.test/parse",
	}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(recognizer.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(recognizer.requests))
	}
	req := recognizer.requests[0]
	if string(req.Data) != "%PDF-1.4" {
		t.Errorf("data = %q", req.Data)
	}
	if req.MimeType != "application/pdf" {
		t.Errorf("mime type = %q", req.MimeType)
	}
	if req.APIKey != "key" {
		t.Errorf("api key = %q", req.APIKey)
	}
	if req.Endpoint != "https://example.test/parse" {
		t.Errorf("endpoint = %q", req.Endpoint)
	}
}

func TestProcessGatewayFailure(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStorage()
	recognizer := &fakeRecognizer{err: &gateway.StatusError{Status: 401, Message: "bad key"}}

	rec := seedRecord(t, records, store, history.StatusPending)

	sys := processing.New(records, store, recognizer, testLogger())

	_, err := sys.Process(context.Background(), rec.ID, processing.Options{APIKey: "key"})

	var statusErr *gateway.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}

	if got := records.records[rec.ID].Status; got != history.StatusFailed {
		t.Errorf("final status = %q, want failed", got)
	}
}

func TestProcessMissingRecord(t *testing.T) {
	sys := processing.New(newFakeRecords(), newFakeStorage(), &fakeRecognizer{}, testLogger())

	_, err := sys.Process(context.Background(), 99, processing.Options{APIKey: "key"})
	if !errors.Is(err, history.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestProcessMissingBlob(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStorage()

	rec, _ := records.Create(context.Background(), history.CreateCommand{
		FileName: "gone.pdf",
		FileType: "application/pdf",
		Status:   history.StatusPending,
	})

	recognizer := &fakeRecognizer{}
	sys := processing.New(records, store, recognizer, testLogger())

	_, err := sys.Process(context.Background(), rec.ID, processing.Options{APIKey: "key"})
	if !errors.Is(err, processing.ErrFileMissing) {
		t.Fatalf("error = %v, want ErrFileMissing", err)
	}

	if got := records.records[rec.ID].Status; got != history.StatusFailed {
		t.Errorf("final status = %q, want failed", got)
	}
	if len(recognizer.requests) != 0 {
		t.Error("gateway should not be called when the blob is missing")
	}
}

func TestProcessRerunClearsStaleResult(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStorage()
	recognizer := &fakeRecognizer{err: errors.New("provider down")}

	rec := seedRecord(t, records, store, history.StatusSuccess)
	stale := "previous result"
	records.records[rec.ID].Result = &stale

	sys := processing.New(records, store, recognizer, testLogger())

	if _, err := sys.Process(context.Background(), rec.ID, processing.Options{APIKey: "key"}); err == nil {
		t.Fatal("expected gateway error")
	}

	stored := records.records[rec.ID]
	if stored.Status != history.StatusFailed {
		t.Errorf("final status = %q, want failed", stored.Status)
	}
	if stored.Result != nil {
		t.Errorf("result = %q, want cleared", *stored.Result)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"gateway status", &gateway.StatusError{Status: 429}, 429},
		{"record not found", history.ErrNotFound, 404},
		{"file missing", processing.ErrFileMissing, 404},
		{"missing input", processing.ErrMissingInput, 400},
		{"other", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processing.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
