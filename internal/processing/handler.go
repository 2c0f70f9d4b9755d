package processing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ocrdesk/ocrdesk/internal/gateway"
	"github.com/ocrdesk/ocrdesk/internal/history"
	"github.com/ocrdesk/ocrdesk/internal/routes"
	"github.com/ocrdesk/ocrdesk/internal/storage"
	"github.com/ocrdesk/ocrdesk/pkg/handlers"
)

// Handler provides the processing endpoints: id-based reprocessing and the
// legacy immediate-OCR path.
type Handler struct {
	sys           System
	records       history.System
	gateway       Recognizer
	defaultAPIKey string
	maxUploadSize int64
	logger        *slog.Logger
}

// NewHandler creates a processing handler. defaultAPIKey is the configured
// fallback used when a request omits its own key.
func NewHandler(sys System, records history.System, gw Recognizer, defaultAPIKey string, maxUploadSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		sys:           sys,
		records:       records,
		gateway:       gw,
		defaultAPIKey: defaultAPIKey,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("handler", "processing"),
	}
}

// multipartOverhead covers boundary and header framing so a file right at
// the size limit still fits in the request body.
const multipartOverhead = 10 << 10

// Routes returns the processing routes.
func (h *Handler) Routes() []routes.Route {
	return []routes.Route{
		{Method: "POST", Pattern: "/process", Handler: h.Process},
		{Method: "POST", Pattern: "/ocr", Handler: h.Immediate},
	}
}

type processRequest struct {
	ID     int64  `json:"id"`
	APIKey string `json:"apiKey"`
	APIURL string `json:"apiUrl"`
	Mode   string `json:"mode"`
	Format string `json:"format"`
}

// Process drives the orchestrator for an existing record.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = h.defaultAPIKey
	}

	if req.ID == 0 || apiKey == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingInput)
		return
	}

	result, err := h.sys.Process(r.Context(), req.ID, Options{
		APIKey:   apiKey,
		Endpoint: req.APIURL,
		Mode:     req.Mode,
		Format:   req.Format,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}

// Immediate accepts a file and recognizes it in one request. A record is
// created up front in the processing state and its id is threaded through
// to the final status update. Unlike id-based reprocessing, the returned
// markdown carries paragraph separator markers.
func (h *Handler) Immediate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, history.ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, history.ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingInput)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, history.ErrFileTooLarge)
		return
	}

	apiKey := r.FormValue("apiKey")
	if apiKey == "" {
		apiKey = h.defaultAPIKey
	}
	if apiKey == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingInput)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, history.ErrInvalidFile)
		return
	}

	fileType := storage.ContentTypeForUpload(header.Header.Get("Content-Type"), header.Filename)

	rec, err := h.records.Create(r.Context(), history.CreateCommand{
		FileName: header.Filename,
		FileSize: header.Size,
		FileType: fileType,
		Status:   history.StatusProcessing,
		Data:     data,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, history.MapHTTPStatus(err), err)
		return
	}

	text, err := h.gateway.Recognize(r.Context(), gateway.Request{
		Data:     data,
		MimeType: fileType,
		APIKey:   apiKey,
		Endpoint: r.FormValue("apiUrl"),
	})
	if err != nil {
		h.markFailed(r, rec.ID)
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result := gateway.MarkParagraphs(text)

	success := history.StatusSuccess
	if _, err := h.records.Update(r.Context(), rec.ID, history.UpdateCommand{
		Status: &success,
		Result: &result,
	}); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (h *Handler) markFailed(r *http.Request, id int64) {
	failed := history.StatusFailed
	if _, err := h.records.Update(r.Context(), id, history.UpdateCommand{Status: &failed}); err != nil {
		h.logger.Error("failed to persist failed status", "id", id, "error", err)
	}
}
