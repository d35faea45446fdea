package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/KGODTAO/bookshop-api/pkg/httputil"
	"github.com/KGODTAO/bookshop-api/pkg/pagination"
	"github.com/KGODTAO/bookshop-api/pkg/validator"

	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/repository"
	"github.com/KGODTAO/bookshop-api/internal/service"
)

// BookHandler handles HTTP requests for book endpoints.
type BookHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(svc *service.CatalogService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateBookRequest is the JSON request body for creating a book.
type CreateBookRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=500"`
	Description string  `json:"description"`
	Price       int64   `json:"price" validate:"required,gte=0"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// UpdateBookRequest is the JSON request body for updating a book.
type UpdateBookRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// --- Handlers ---

// ListBooks handles GET /api/v1/books
// @Summary List books
// @Description Returns a paginated list of books with optional filtering and ordering
// @Tags books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(20)
// @Param category_id query string false "Filter by category UUID"
// @Param category query string false "Filter by category UUID or slug"
// @Param title query string false "Case-insensitive substring match on title"
// @Param description query string false "Case-insensitive substring match on description"
// @Param search query string false "Match either title or description"
// @Param price_from query int false "Minimum price in minor units"
// @Param price_to query int false "Maximum price in minor units"
// @Param ordering query string false "Ordering" Enums(title,-title,price,-price)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/books [get]
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter, ok := bookFilterFromQuery(w, r)
	if !ok {
		return
	}

	books, total, err := h.service.ListBooks(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(books, total, filter.Page, filter.PerPage))
}

// SearchBooks handles GET /api/v1/books/search
// @Summary Search books
// @Description Returns books whose title or description contains the query
// @Tags books
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/books/search [get]
func (h *BookHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page, perPage, ok := paginationFromQuery(w, r)
	if !ok {
		return
	}

	books, total, err := h.service.SearchBooks(r.Context(), query, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(books, total, page, perPage))
}

// GetBook handles GET /api/v1/books/{idOrSlug}
// It accepts both a UUID (book ID) and a slug for lookup and returns the
// book detail enriched with reviews, the average rating, and the like count.
// @Summary Get book by ID or slug
// @Tags books
// @Produce json
// @Param idOrSlug path string true "Book UUID or URL slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/books/{idOrSlug} [get]
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if idOrSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "book id or slug is required"},
		})
		return
	}

	detail, err := h.service.GetBookDetail(r.Context(), idOrSlug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// CreateBook handles POST /api/v1/books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param request body CreateBookRequest true "Book to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/books [post]
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.service.CreateBook(r.Context(), actorFromRequest(r), service.CreateBookInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// UpdateBook handles PUT /api/v1/books/{id}
// @Summary Update a book
// @Description Partially updates a book; all fields are optional
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book UUID"
// @Param request body UpdateBookRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), actorFromRequest(r), id.String(), service.UpdateBookInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// DeleteBook handles DELETE /api/v1/books/{id}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param id path string true "Book UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), actorFromRequest(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// --- Query helpers ---

func paginationFromQuery(w http.ResponseWriter, r *http.Request) (page, perPage int, ok bool) {
	params, err := pagination.ParseRequest(r)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: err.Error()},
		})
		return 0, 0, false
	}
	return params.Page, params.PerPage, true
}

func bookFilterFromQuery(w http.ResponseWriter, r *http.Request) (repository.BookFilter, bool) {
	page, perPage, ok := paginationFromQuery(w, r)
	if !ok {
		return repository.BookFilter{}, false
	}
	filter := repository.BookFilter{Page: page, PerPage: perPage}

	q := r.URL.Query()
	if v := q.Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	// "category" accepts either a category ID or its slug.
	if v := q.Get("category"); v != "" {
		filter.Category = &v
	}
	if v := q.Get("title"); v != "" {
		filter.Title = &v
	}
	if v := q.Get("description"); v != "" {
		filter.Description = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	if v := q.Get("price_from"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "price_from must be a valid number"},
			})
			return repository.BookFilter{}, false
		}
		filter.PriceFrom = &price
	}
	if v := q.Get("price_to"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "price_to must be a valid number"},
			})
			return repository.BookFilter{}, false
		}
		filter.PriceTo = &price
	}

	// A contradictory range (price_from > price_to) is not an error; the
	// bounds apply independently and the result is simply empty.

	// A leading minus flips the sort direction, e.g. "-price".
	if v := q.Get("ordering"); v != "" {
		field := strings.TrimPrefix(v, "-")
		if !domain.IsValidBookOrdering(field) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "ordering must be one of: title, -title, price, -price"},
			})
			return repository.BookFilter{}, false
		}
		filter.OrderBy = field
		filter.Descending = strings.HasPrefix(v, "-")
	}

	return filter, true
}
