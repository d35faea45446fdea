package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KGODTAO/bookshop-api/pkg/health"
	"github.com/KGODTAO/bookshop-api/pkg/middleware"

	"github.com/KGODTAO/bookshop-api/internal/auth"
	"github.com/KGODTAO/bookshop-api/internal/service"
)

// Services bundles the application services the router depends on.
type Services struct {
	Catalog    *service.CatalogService
	Reviews    *service.ReviewService
	Engagement *service.EngagementService
	Orders     *service.OrderService
	Users      *service.UserService
}

// NewRouter creates a chi router with all bookshop API routes registered.
func NewRouter(
	services Services,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	pprofAllowedCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("bookshop"))
	r.Use(middleware.Tracing("bookshop"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Debug pprof endpoints, restricted by source CIDR.
	middleware.RegisterPprof(r, pprofAllowedCIDRs, logger)

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	bookHandler := NewBookHandler(services.Catalog, logger)
	categoryHandler := NewCategoryHandler(services.Catalog, logger)
	reviewHandler := NewReviewHandler(services.Reviews, logger)
	engagementHandler := NewEngagementHandler(services.Engagement, logger)
	orderHandler := NewOrderHandler(services.Orders, logger)
	authHandler := NewAuthHandler(services.Users, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog reads, cacheable by intermediaries for a short window.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/books", bookHandler.ListBooks)
			r.Get("/books/search", bookHandler.SearchBooks)
			r.Get("/books/{idOrSlug}", bookHandler.GetBook)
			r.Get("/books/{bookId}/reviews", reviewHandler.ListReviews)
			r.Get("/books/{bookId}/reviews/summary", reviewHandler.GetSummary)
			r.Get("/categories", categoryHandler.ListCategories)
			r.Get("/categories/{slug}", categoryHandler.GetCategory)
		})

		// Auth endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Everything below requires a valid access token. Fine-grained
		// permissions (admin-only writes, owner-or-admin reads) are
		// enforced by the policy layer inside the services.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			// Catalog writes (admin only)
			r.Post("/books", bookHandler.CreateBook)
			r.Put("/books/{id}", bookHandler.UpdateBook)
			r.Delete("/books/{id}", bookHandler.DeleteBook)
			r.Post("/categories", categoryHandler.CreateCategory)
			r.Put("/categories/{id}", categoryHandler.UpdateCategory)
			r.Delete("/categories/{id}", categoryHandler.DeleteCategory)

			// Reviews
			r.Post("/books/{bookId}/reviews", reviewHandler.CreateReview)
			r.Patch("/reviews/{id}", reviewHandler.UpdateReview)
			r.Delete("/reviews/{id}", reviewHandler.DeleteReview)

			// Likes and favourites
			r.Post("/books/{bookId}/like", engagementHandler.ToggleLike)
			r.Post("/books/{bookId}/favourite", engagementHandler.ToggleFavourite)
			r.Get("/users/me/favourites", engagementHandler.ListFavourites)

			// Profile
			r.Get("/users/me", authHandler.GetProfile)

			// Orders
			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Patch("/orders/{id}", orderHandler.UpdateOrder)
			r.Delete("/orders/{id}", orderHandler.DeleteOrder)
		})
	})

	return r
}
