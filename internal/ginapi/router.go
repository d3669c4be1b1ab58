// Package ginapi serves the contact API on gin. It is the single-binary
// SQLite flavour; the JSON contract matches the fasthttp server.
package ginapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/auth"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/handlers"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/ratelimit"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Options struct {
	Contacts       handlers.ContactService
	Health         handlers.HealthService
	Limiter        *ratelimit.Limiter
	Auth           *auth.Authenticator
	Log            zerolog.Logger
	TrustedProxies int
	CORSOrigin     string
	StaticDir      string
	DocsExposed    bool
}

type api struct {
	contacts handlers.ContactService
	health   handlers.HealthService
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(opt Options) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = false
	r.RedirectTrailingSlash = false

	r.Use(recovery(opt.Log), requestID(), clientIP(opt.TrustedProxies), RequestLogger(opt.Log),
		securityHeaders(), cors(opt.CORSOrigin))

	a := &api{contacts: opt.Contacts, health: opt.Health}
	g := r.Group("/api")
	if opt.Limiter != nil {
		g.POST("/contact", rateLimit(opt.Limiter, opt.Log), a.submit)
	} else {
		g.POST("/contact", a.submit)
	}
	guarded := g.Group("", admin(opt.Auth))
	guarded.GET("/contacts", a.list)
	guarded.GET("/contacts/:id", a.get)
	guarded.PATCH("/contacts/:id/status", a.updateStatus)
	g.GET("/health", a.getHealth)

	if opt.DocsExposed {
		r.GET("/api-docs", func(c *gin.Context) {
			c.Header("Content-Security-Policy", handlers.DocsCSP)
			c.Data(http.StatusOK, "text/html; charset=utf-8", handlers.DocsPageHTML())
		})
		r.GET("/api-docs/openapi.yaml", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/yaml", handlers.OpenAPIDocument())
		})
	}

	r.NoRoute(staticFallback(opt.StaticDir))
	return r
}

func writeError(c *gin.Context, err error) {
	status, body := handlers.ErrorResponse(err)
	c.JSON(status, body)
}

func (a *api) submit(c *gin.Context) {
	var req model.ContactSubmission
	if !bindJSON(c, &req) {
		return
	}

	meta := model.RequestMeta{
		IPAddress: c.GetString(ctxClientIP),
		UserAgent: c.Request.UserAgent(),
	}
	created, err := a.contacts.Submit(c.Request.Context(), req, meta)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": handlers.MsgSubmitted, "id": created.ID})
}

func (a *api) list(c *gin.Context) {
	contacts, err := a.contacts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "total": len(contacts)})
}

func (a *api) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, xhttp.ErrorBody{Error: handlers.MsgNotFound})
		return
	}
	contact, err := a.contacts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (a *api) updateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	id, _ := pathID(c)
	if _, err := a.contacts.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": handlers.MsgStatusUpdated})
}

func (a *api) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, a.health.Get())
}

// staticFallback serves files below dir and a JSON 404 for everything else.
func staticFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			rel := path.Clean("/" + c.Request.URL.Path)
			if rel == "/" {
				rel = "/index.html"
			}
			file := filepath.Join(dir, filepath.FromSlash(rel))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				c.JSON(http.StatusInternalServerError, xhttp.ErrorBody{Error: handlers.MsgInternal})
				return
			}
		}
		c.JSON(http.StatusNotFound, xhttp.ErrorBody{Error: "Not found."})
	}
}

// bindJSON decodes the body into v. An empty body, chunked or not, leaves v
// zero so validation reports the missing fields. It writes the 400 itself and
// reports false on malformed JSON.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, xhttp.ErrorBody{Error: handlers.MsgInvalidBody})
		return false
	}
	return true
}
