package handlers

import (
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/auth"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/ratelimit"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/prom"
)

// RateLimitMiddleware counts requests per client IP and answers 429 once the
// window budget is spent. Counter failures let the request through.
func RateLimitMiddleware(l *ratelimit.Limiter, trustedProxies int) xhttp.MiddlewareFunc {
	return func(next xhttp.RequestHandler) xhttp.RequestHandler {
		return func(ctx *xhttp.RequestCtx) {
			ip := xhttp.ClientIP(ctx, trustedProxies)
			d, err := l.Allow(ctx, ip)
			if err != nil {
				logger.Warn("rate limit counter unavailable, allowing request", "ip", ip, "error", err)
			}

			for k, v := range d.Headers(time.Now()) {
				ctx.Response.Header.Set(k, v)
			}
			if !d.Allowed {
				prom.IncContactRateLimited()
				xhttp.WriteError(ctx, xhttp.StatusTooManyRequests, ratelimit.Message)
				return
			}
			next(ctx)
		}
	}
}

// AdminMiddleware requires a valid admin bearer token. It is a pass-through
// when the authenticator is disabled.
func AdminMiddleware(a *auth.Authenticator) xhttp.MiddlewareFunc {
	return func(next xhttp.RequestHandler) xhttp.RequestHandler {
		if !a.Enabled() {
			return next
		}
		return func(ctx *xhttp.RequestCtx) {
			if _, err := a.Verify(string(ctx.Request.Header.Peek("Authorization"))); err != nil {
				ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="contacts"`)
				xhttp.WriteError(ctx, xhttp.StatusUnauthorized, MsgUnauthorized)
				return
			}
			next(ctx)
		}
	}
}
