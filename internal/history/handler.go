package history

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ocrdesk/ocrdesk/internal/routes"
	"github.com/ocrdesk/ocrdesk/internal/storage"
	"github.com/ocrdesk/ocrdesk/pkg/handlers"
	"github.com/ocrdesk/ocrdesk/pkg/pagination"
)

// Handler provides HTTP endpoints for upload, history, and raw file access.
type Handler struct {
	sys           System
	storage       storage.System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a history handler with the specified configuration.
func NewHandler(sys System, store storage.System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		storage:       store,
		logger:        logger.With("handler", "history"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the history endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/history",
		Description: "Upload history and records",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// UploadRoute returns the file upload route.
func (h *Handler) UploadRoute() routes.Route {
	return routes.Route{Method: "POST", Pattern: "/upload", Handler: h.Upload}
}

// DownloadRoute returns the raw stored file route.
func (h *Handler) DownloadRoute() routes.Route {
	return routes.Route{Method: "GET", Pattern: "/uploads/{filename}", Handler: h.Download}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// multipartOverhead covers boundary and header framing so a file right at
// the size limit still fits in the request body.
const multipartOverhead = 10 << 10

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	fileType := storage.ContentTypeForUpload(header.Header.Get("Content-Type"), header.Filename)

	var pageCount *int
	if fileType == "application/pdf" {
		pc, err := extractPDFPageCount(data)
		if err != nil {
			h.logger.Warn("failed to extract pdf page count", "file_name", header.Filename, "error", err)
		} else {
			pageCount = pc
		}
	}

	rec, err := h.sys.Create(r.Context(), CreateCommand{
		FileName:  header.Filename,
		FileSize:  header.Size,
		FileType:  fileType,
		Status:    StatusPending,
		PageCount: pageCount,
		Data:      data,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"id":       rec.ID,
		"fileName": rec.FileName,
		"status":   rec.Status,
		"message":  "Upload successful",
	})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	data, err := h.storage.Retrieve(r.Context(), filename)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, storage.ErrInvalidKey) {
			status = http.StatusBadRequest
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondBytes(w, storage.ContentType(filename), data, true)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func extractPDFPageCount(data []byte) (*int, error) {
	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}
	return &count, nil
}
