package ginapi

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger in production and a console logger
// otherwise. An unknown level keeps info.
func NewLogger(production bool, level string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if !production {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// RequestLogger logs one line per request, skipping the health endpoint.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400 || latency > 500*time.Millisecond:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Int("bytes_out", c.Writer.Size()).
			Str("ip", c.GetString(ctxClientIP)).
			Str("ua", c.Request.UserAgent()).
			Str("request_id", c.Writer.Header().Get(headerRequestID)).
			Msg("http_request")
	}
}
