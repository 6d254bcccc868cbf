package router

import (
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/handler"
	"github.com/go-chi/chi/v5"
)

type middlewareFunc = func(http.Handler) http.Handler

// SetupUploadRoutes serves stored images from dir under prefix.
func SetupUploadRoutes(r chi.Router, prefix, dir string) {
	prefix = "/" + strings.Trim(prefix, "/")
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		fs.ServeHTTP(w, req)
	})
}

func SetupAuthRoutes(r chi.Router, h *handler.AuthHandler, jwt middlewareFunc) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/google", h.GoogleLogin)
	r.Get("/auth/google/callback", h.GoogleCallback)
	r.With(jwt).Get("/auth/me", h.Me)
}

func SetupSellerRoutes(r chi.Router, h *handler.SellerHandler, jwt, admin middlewareFunc) {
	r.Group(func(r chi.Router) {
		r.Use(jwt)
		r.Post("/sellers/register", h.Register)
		r.Get("/sellers/me", h.Me)
		r.Put("/sellers/me", h.UpdateMe)
	})
	r.Group(func(r chi.Router) {
		r.Use(jwt, admin)
		r.Get("/admin/sellers", h.List)
		r.Put("/admin/sellers/{id}/verify", h.Verify)
	})
	r.Get("/sellers/{id}", h.Get)
}

func SetupProductRoutes(r chi.Router, h *handler.ProductHandler, jwt middlewareFunc) {
	r.Get("/products", h.List)
	r.Get("/products/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(jwt)
		r.Post("/products/create", h.Create)
		r.Put("/products/{id}", h.Update)
		r.Delete("/products/{id}", h.Delete)
		r.Get("/sellers/me/products", h.ListMine)
	})
}

func SetupCartRoutes(r chi.Router, h *handler.CartHandler, jwt middlewareFunc) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(jwt)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.UpdateItem)
		r.Delete("/items/{productId}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})
}

func SetupOrderRoutes(r chi.Router, h *handler.OrderHandler, jwt, admin middlewareFunc) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(jwt)
		r.Post("/", h.Create)
		r.Get("/my", h.ListMine)
		r.Get("/seller", h.ListSeller)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/receipt", h.Receipt)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/cancel", h.Cancel)
	})
	r.With(jwt, admin).Get("/admin/orders", h.ListAll)
}

func SetupPaymentRoutes(r chi.Router, h *handler.PaymentHandler, jwt middlewareFunc) {
	r.Group(func(r chi.Router) {
		r.Use(jwt)
		r.Post("/payments/create-order", h.CreateOrder)
		r.Post("/payments/verify", h.Verify)
	})
}

func SetupBargainRoutes(r chi.Router, h *handler.BargainHandler, jwt middlewareFunc) {
	r.Route("/bargains", func(r chi.Router) {
		r.Use(jwt)
		r.Post("/", h.Create)
		r.Get("/my", h.ListMine)
		r.Get("/seller", h.ListSeller)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/respond", h.SellerRespond)
		r.Post("/{id}/counter-response", h.BuyerRespond)
	})
}

func SetupChallengeRoutes(r chi.Router, h *handler.ChallengeHandler, jwt middlewareFunc) {
	r.Get("/challenges", h.ListActive)
	r.Group(func(r chi.Router) {
		r.Use(jwt)
		r.Post("/challenges", h.Create)
		r.Get("/challenges/my", h.ListMine)
		r.Post("/challenges/{id}/respond", h.Respond)
		r.Post("/challenges/{id}/accept/{responseId}", h.Accept)
		r.Post("/challenges/{id}/cancel", h.Cancel)
	})
	r.Get("/challenges/{id}", h.Get)
}
