package xhttp

import (
	"strconv"
	"strings"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const slowThreshold = 500 * time.Millisecond

const HeaderRequestID = "X-Request-Id"

var skipPaths = []string{"/api/health", "/metrics"}

type MiddlewareFunc func(next RequestHandler) RequestHandler
type RequestCtx = fasthttp.RequestCtx
type RequestHandler = fasthttp.RequestHandler
type FS = fasthttp.FS

func TimeoutMiddleware(timeout time.Duration) MiddlewareFunc {
	return func(next RequestHandler) RequestHandler {
		return fasthttp.TimeoutWithCodeHandler(next, timeout, StatusText(StatusRequestTimeout), StatusRequestTimeout)
	}
}

func CompressMiddleware(level int) MiddlewareFunc {
	return func(next RequestHandler) RequestHandler {
		return fasthttp.CompressHandlerBrotliLevel(next, level, level)
	}
}

func RecoverMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		defer func() {
			if err := recover(); err != nil {
				WriteError(ctx, StatusInternalServerError, "Internal server error.")
				logger.Error("[xhttp] panic recovered", "error", err, "request_id", requestID(ctx))
			}
		}()
		next(ctx)
	}
}

// RequestIDMiddleware keeps an incoming X-Request-Id or mints a new one, and
// echoes it on the response.
func RequestIDMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		rid := requestID(ctx)
		if rid == "" {
			rid = uuid.NewString()
			ctx.Request.Header.Set(HeaderRequestID, rid)
		}
		ctx.SetUserValue(HeaderRequestID, rid)
		ctx.Response.Header.Set(HeaderRequestID, rid)
		next(ctx)
	}
}

// SecurityHeadersMiddleware sets the hardening headers on every response.
func SecurityHeadersMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		h := &ctx.Response.Header
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-XSS-Protection", "0")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'self'")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		next(ctx)
	}
}

type CORSOptions struct {
	AllowOrigin  string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// CORSMiddleware answers preflight requests itself and decorates the rest.
func CORSMiddleware(opt CORSOptions) MiddlewareFunc {
	if opt.AllowOrigin == "" {
		opt.AllowOrigin = "*"
	}
	if len(opt.AllowMethods) == 0 {
		opt.AllowMethods = []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"}
	}
	if len(opt.AllowHeaders) == 0 {
		opt.AllowHeaders = []string{"Content-Type", "Authorization", HeaderRequestID}
	}
	methods := strings.Join(opt.AllowMethods, ",")
	headers := strings.Join(opt.AllowHeaders, ",")
	maxAge := strconv.Itoa(int(opt.MaxAge.Seconds()))

	return func(next RequestHandler) RequestHandler {
		return func(ctx *RequestCtx) {
			ctx.Response.Header.Set("Access-Control-Allow-Origin", opt.AllowOrigin)
			if opt.AllowOrigin != "*" {
				ctx.Response.Header.Add("Vary", "Origin")
			}
			if ctx.IsOptions() && len(ctx.Request.Header.Peek("Access-Control-Request-Method")) > 0 {
				ctx.Response.Header.Set("Access-Control-Allow-Methods", methods)
				ctx.Response.Header.Set("Access-Control-Allow-Headers", headers)
				if opt.MaxAge > 0 {
					ctx.Response.Header.Set("Access-Control-Max-Age", maxAge)
				}
				ctx.SetStatusCode(StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}

// MetricsMiddleware reports every request's latency to observe.
func MetricsMiddleware(observe func(method, code string, seconds float64)) MiddlewareFunc {
	return func(next RequestHandler) RequestHandler {
		return func(ctx *RequestCtx) {
			start := time.Now()
			next(ctx)
			observe(string(ctx.Method()), strconv.Itoa(ctx.Response.StatusCode()), time.Since(start).Seconds())
		}
	}
}

func RequestLoggerMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		if shouldSkip(path) {
			next(ctx)
			return
		}

		start := time.Now()
		next(ctx)

		latency := time.Since(start)
		status := ctx.Response.StatusCode()
		fields := []any{
			"status", status,
			"method", string(ctx.Method()),
			"path", path,
			"latency", latency.String(),
			"bytes_in", len(ctx.PostBody()),
			"bytes_out", len(ctx.Response.Body()),
			"ip", ctx.RemoteIP().String(),
			"ua", string(ctx.Request.Header.UserAgent()),
			"request_id", requestID(ctx),
		}

		lg := logger.GetLogger()
		switch {
		case status >= 500:
			lg.Error("http_request", fields...)
		case status >= 400 || latency > slowThreshold:
			lg.Warn("http_request", fields...)
		default:
			lg.Info("http_request", fields...)
		}
	}
}

func shouldSkip(p string) bool {
	for _, sp := range skipPaths {
		if strings.HasPrefix(p, sp) {
			return true
		}
	}
	return false
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if v := ctx.Request.Header.Peek(HeaderRequestID); len(v) > 0 {
		return string(v)
	}
	return ""
}
