package bootstrap

import (
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/auth"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/config"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/handlers"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/ratelimit"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/prom"
)

type APIDeps struct {
	Contacts handlers.ContactService
	Health   handlers.HealthService
	Limiter  *ratelimit.Limiter
	Auth     *auth.Authenticator
}

// NewAPIServer assembles the fasthttp engine with its middleware chain and
// every route. The first Use is the outermost middleware.
func NewAPIServer(c *config.Config, d APIDeps) *xhttp.Engine {
	s := xhttp.CreateServer()
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	if prom.MetricSystemEnabled {
		s.Use(xhttp.MetricsMiddleware(prom.ObserveHTTPRequest))
	}
	s.Use(xhttp.SecurityHeadersMiddleware)
	s.Use(xhttp.CORSMiddleware(xhttp.CORSOptions{AllowOrigin: c.CorsAllowOrigin, MaxAge: 10 * time.Minute}))
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(xhttp.DefaultServerOption.RequestTimeout))
	// innermost: the timeout handler runs requests on its own goroutine
	s.Use(xhttp.RecoverMiddleware)

	g := s.Router.Group("/api")
	handlers.RegisterContactRoutes(g, handlers.NewContactHandler(d.Contacts, c.TrustedProxyCount), handlers.ContactRoutes{
		SubmitLimit: handlers.RateLimitMiddleware(d.Limiter, c.TrustedProxyCount),
		Admin:       handlers.AdminMiddleware(d.Auth),
	})
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(d.Health))
	if c.DocsExposed() {
		handlers.RegisterDocsRoutes(s.Router)
	}
	if c.StaticDir != "" {
		s.Router.NotFound = xhttp.StaticFallback(c.StaticDir)
	}
	return s
}
