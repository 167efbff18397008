package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"catalogo/internal/http/handlers"
	"catalogo/internal/infra"
	"catalogo/internal/middleware"
)

// NewRouter wires the admin API and the static serving of stored images.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Locale(cfg.DefaultLocale),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/admin/products", func(r chi.Router) {
		// Transform requests each cost a model invocation.
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).
			Post("/transform-image", app.TransformImage)
		r.Post("/upload-image", app.UploadImage)
		r.Post("/", app.ProductsCreate)
		r.Get("/", app.ProductsList)
	})

	// Generated and uploaded images are served straight from the public dir.
	fileServer := http.FileServer(http.Dir(cfg.PublicDir))
	r.Handle("/products/*", fileServer)

	return r
}
