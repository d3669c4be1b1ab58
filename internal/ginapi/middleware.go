package ginapi

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/auth"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/handlers"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/ratelimit"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	headerRequestID = "X-Request-Id"
	ctxClientIP     = "client_ip"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(headerRequestID, rid)
		c.Next()
	}
}

// clientIP resolves the caller once per request with the same
// X-Forwarded-For rules as the fasthttp server.
func clientIP(trustedProxies int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, ok := xhttp.ForwardedIP(c.GetHeader("X-Forwarded-For"), trustedProxies)
		if !ok {
			ip, _, _ = net.SplitHostPort(c.Request.RemoteAddr)
			if ip == "" {
				ip = c.Request.RemoteAddr
			}
		}
		c.Set(ctxClientIP, ip)
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'self'")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		c.Next()
	}
}

func cors(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Header("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization,"+headerRequestID)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// recovery turns a panic into the generic 500 body.
func recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		log.Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, xhttp.ErrorBody{Error: handlers.MsgInternal})
	})
}

func rateLimit(l *ratelimit.Limiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.GetString(ctxClientIP)
		d, err := l.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn().Err(err).Str("ip", ip).Msg("rate limit counter unavailable, allowing request")
		}
		for k, v := range d.Headers(time.Now()) {
			c.Header(k, v)
		}
		if !d.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, xhttp.ErrorBody{Error: ratelimit.Message})
			return
		}
		c.Next()
	}
}

func admin(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}
		if _, err := a.Verify(c.GetHeader("Authorization")); err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="contacts"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, xhttp.ErrorBody{Error: handlers.MsgUnauthorized})
			return
		}
		c.Next()
	}
}

// pathID mirrors the fasthttp handler: only positive integers can match.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
