package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router with JSON 404/405 handlers and
// matched-path recording turned on. Static fallbacks replace NotFound.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = false
	r.RedirectTrailingSlash = false
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = NotFoundHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	return r
}

// NotFoundHandler is the default 404 handler
func NotFoundHandler(ctx *RequestCtx) {
	WriteError(ctx, StatusNotFound, "Not found.")
}

// StaticFallback serves files under root and answers 404 for anything the
// filesystem does not have. It is meant for Router.NotFound.
func StaticFallback(root string) RequestHandler {
	fs := &FS{
		Root:               root,
		IndexNames:         []string{"index.html"},
		GenerateIndexPages: false,
		Compress:           true,
		PathNotFound:       NotFoundHandler,
	}
	return fs.NewRequestHandler()
}
