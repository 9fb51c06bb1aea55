package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/routes"
)

var (
	errFileTooLarge = errors.New("file exceeds maximum upload size")
	errMissingFile  = errors.New("multipart field \"file\" is required")
)

// Handler exposes the pipeline over HTTP.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "uploads"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for upload endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/uploads",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/{sha256}/reprocess", Handler: h.Reprocess},
		},
	}
}

// Upload processes a multipart form with a file and optional source and
// hint fields. New documents return 201; previously processed content
// returns the stored result with 200.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, errFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errMissingFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.ProcessUpload(r.Context(), Upload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Source:      r.FormValue("source"),
		Hint:        r.FormValue("hint"),
	})
	h.respond(w, result, err)
}

// Reprocess reruns the pipeline over stored content identified by digest.
func (h *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Reprocess(
		r.Context(),
		r.PathValue("sha256"),
		r.URL.Query().Get("source"),
		r.URL.Query().Get("hint"),
	)
	h.respond(w, result, err)
}

func (h *Handler) respond(w http.ResponseWriter, result *Result, err error) {
	if err != nil {
		status := MapHTTPStatus(err)
		var pe *Error
		if errors.As(err, &pe) {
			if status >= http.StatusInternalServerError {
				h.logger.Error("pipeline error", "kind", pe.Kind, "error", pe.Err)
			}
			if pe.Retryable {
				w.Header().Set("Retry-After", "5")
			}
			handlers.RespondJSON(w, status, pe)
			return
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	status := http.StatusCreated
	if result.Cached {
		status = http.StatusOK
	}
	handlers.RespondJSON(w, status, result)
}
