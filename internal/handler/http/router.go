package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskvault/taskvault/pkg/health"
	"github.com/taskvault/taskvault/pkg/middleware"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/domain"
	"github.com/taskvault/taskvault/internal/service"
)

// serviceName labels metrics and traces emitted by the router.
const serviceName = "taskvault"

// RouterConfig carries the route-level settings the router needs beyond its
// service dependencies.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	ImportAPIKey   string
	LoginRateRPS   int
	LoginRateBurst int
	TracingEnabled bool
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	authService *service.AuthService,
	taskService *service.TaskService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing(serviceName))
	}

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Username: claims.Username,
			Roles:    claims.Roles,
		}, nil
	}

	authHandler := NewAuthHandler(authService, logger)
	taskHandler := NewTaskHandler(taskService, logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.With(middleware.RateLimit(cfg.LoginRateRPS, cfg.LoginRateBurst, logger)).
			Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})
	})

	r.Route("/api/v1/tasks", func(r chi.Router) {
		// The import route is guarded by the capability key alone, not
		// bearer auth.
		r.With(middleware.APIKey(cfg.ImportAPIKey)).Get("/populate", taskHandler.Import)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))

			r.With(middleware.RequireRole(domain.RoleUser)).Get("/", taskHandler.List)
			r.With(middleware.RequireRole(domain.RoleUser)).Post("/", taskHandler.Create)
			r.Get("/{id}", taskHandler.Get)
			r.With(middleware.RequireRole(domain.RoleUser)).Patch("/{id}", taskHandler.Update)
			r.With(middleware.RequireRole(domain.RoleUser, domain.RoleAdmin)).Delete("/{id}", taskHandler.Delete)
		})
	})

	return r
}
