package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KGODTAO/bookshop-api/pkg/httputil"

	"github.com/KGODTAO/bookshop-api/internal/service"
)

// EngagementHandler handles HTTP requests for like and favourite endpoints.
type EngagementHandler struct {
	service *service.EngagementService
	logger  *slog.Logger
}

// NewEngagementHandler creates a new engagement HTTP handler.
func NewEngagementHandler(svc *service.EngagementService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{
		service: svc,
		logger:  logger,
	}
}

// ToggleLike handles POST /api/v1/books/{bookId}/like
func (h *EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	bookID, ok := httputil.ParseUUID(w, chi.URLParam(r, "bookId"))
	if !ok {
		return
	}

	liked, err := h.service.ToggleLike(r.Context(), actorFromRequest(r), bookID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"book_id":  bookID.String(),
		"is_liked": liked,
	}})
}

// ToggleFavourite handles POST /api/v1/books/{bookId}/favourite
func (h *EngagementHandler) ToggleFavourite(w http.ResponseWriter, r *http.Request) {
	bookID, ok := httputil.ParseUUID(w, chi.URLParam(r, "bookId"))
	if !ok {
		return
	}

	favourited, err := h.service.ToggleFavourite(r.Context(), actorFromRequest(r), bookID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"book_id":       bookID.String(),
		"is_favourited": favourited,
	}})
}

// ListFavourites handles GET /api/v1/users/me/favourites
func (h *EngagementHandler) ListFavourites(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListFavourites(r.Context(), actorFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: books})
}
