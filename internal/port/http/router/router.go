package router

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Seller     *handler.SellerHandler
	Product    *handler.ProductHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	Payment    *handler.PaymentHandler
	Bargain    *handler.BargainHandler
	Challenge  *handler.ChallengeHandler
	OrdersLive http.HandlerFunc
}

type Options struct {
	RequestTimeout   time.Duration
	AllowedOrigins   []string
	UploadsDir       string
	UploadsURLPrefix string
}

// New assembles the HTTP surface. The websocket route sits outside the
// request timeout.
func New(h Handlers, tokens *auth.TokenManager, out *response.Writer, m *metrics.MetricsManager, log logger.Logger, opts Options) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Logger(log))
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if m != nil {
		mux.Use(middleware.Metrics(m))
	}
	mux.Use(middleware.Tracing())

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		out.Error(w, r, apperror.NotFound("route not found"))
	})

	if h.OrdersLive != nil {
		mux.Get("/ws/orders", h.OrdersLive)
	}

	mux.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimw.Timeout(opts.RequestTimeout))
		}
		r.Get("/health", h.Health.Health)
		if opts.UploadsDir != "" {
			SetupUploadRoutes(r, opts.UploadsURLPrefix, opts.UploadsDir)
		}

		jwt := middleware.JWTAuth(tokens, out)
		admin := middleware.RequireAdmin(out)

		SetupAuthRoutes(r, h.Auth, jwt)
		SetupSellerRoutes(r, h.Seller, jwt, admin)
		SetupProductRoutes(r, h.Product, jwt)
		SetupCartRoutes(r, h.Cart, jwt)
		SetupOrderRoutes(r, h.Order, jwt, admin)
		SetupPaymentRoutes(r, h.Payment, jwt)
		SetupBargainRoutes(r, h.Bargain, jwt)
		SetupChallengeRoutes(r, h.Challenge, jwt)
	})

	return mux
}
