package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/infra/observability"
	"github.com/portaldomei/mei-portal-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Services groups everything the router dispatches to.
type Services struct {
	Calculators *service.CalculatorService
	Content     *service.ContentService
	Advisor     *service.AdvisorService
	Auth        *service.AdminAuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the portal frontend.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Content, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Simuladores financeiros
		r.Get("/calculators", listCalculatorsHandler(svcs.Calculators, logger))
		r.Get("/calculators/policy", policyHandler(svcs.Calculators, logger))
		r.Post("/calculators/{kind}", computeHandler(svcs.Calculators, logger))

		// Conteúdo do site
		if svcs.Content == nil {
			r.Handle("/content/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "content unavailable: Supabase not configured")
			}))
		} else {
			r.Get("/content/home", homeContentHandler(svcs.Content, logger))
			r.Get("/content/banners", listBannersHandler(svcs.Content, logger))
			r.Get("/content/partners", listPartnersHandler(svcs.Content, logger))
			r.Get("/content/posts", listPostsHandler(svcs.Content, logger))
			r.Get("/content/posts/{postId}", getPostHandler(svcs.Content, logger))
			r.Get("/content/loan-products", listLoanProductsHandler(svcs.Content, logger))
		}

		// Consultor IA
		r.Post("/advisor", advisorAskHandler(svcs.Advisor, logger))
		r.Get("/metrics/advisor", advisorMetricsHandler(svcs.Advisor, logger))

		// Painel administrativo
		r.Route("/admin", func(r chi.Router) {
			if svcs.Auth == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "admin unavailable: Supabase not configured")
				}))
				return
			}
			r.Post("/login", adminLoginHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(AdminAuthMiddleware(svcs.Auth, logger))

				r.Put("/password", adminChangePasswordHandler(svcs.Auth, logger))

				r.Get("/banners", adminListBannersHandler(svcs.Content, logger))
				r.Post("/banners", saveBannerHandler(svcs.Content, logger))
				r.Delete("/banners/{bannerId}", deleteBannerHandler(svcs.Content, logger))

				r.Get("/partners", listPartnersHandler(svcs.Content, logger))
				r.Post("/partners", savePartnerHandler(svcs.Content, logger))
				r.Delete("/partners/{partnerId}", deletePartnerHandler(svcs.Content, logger))

				r.Get("/posts", adminListPostsHandler(svcs.Content, logger))
				r.Get("/posts/{postId}", getPostHandler(svcs.Content, logger))
				r.Post("/posts", savePostHandler(svcs.Content, logger))
				r.Delete("/posts/{postId}", deletePostHandler(svcs.Content, logger))

				r.Get("/loan-products", listLoanProductsHandler(svcs.Content, logger))
				r.Post("/loan-products", saveLoanProductHandler(svcs.Content, logger))
				r.Delete("/loan-products/{productId}", deleteLoanProductHandler(svcs.Content, logger))

				r.Post("/uploads", uploadHandler(svcs.Content, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(contentSvc *service.ContentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "mei-portal-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if contentSvc != nil {
			start := time.Now()
			_, err := contentSvc.ListPartners(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
