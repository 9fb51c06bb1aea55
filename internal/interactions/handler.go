package interactions

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/routes"
)

// Handler serves entity timelines.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "interactions"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for interaction endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/interactions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Timeline},
		},
	}
}

// Timeline lists interactions for ?entity_type=&entity_id=, newest first.
// Optional filters: repeated action, since and until as RFC 3339 timestamps.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page := pagination.PageRequestFromQuery(values, h.pagination)

	tq := TimelineQuery{
		EntityType: values.Get("entity_type"),
		EntityID:   values.Get("entity_id"),
		Actions:    values["action"],
	}

	var err error
	if tq.Since, err = parseTime(values.Get("since")); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: since: %w", ErrInvalidRange, err))
		return
	}
	if tq.Until, err = parseTime(values.Get("until")); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: until: %w", ErrInvalidRange, err))
		return
	}

	result, err := h.sys.Timeline(r.Context(), tq, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
