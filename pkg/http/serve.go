package xhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/valyala/fasthttp"
)

// env list:
// XHTTP_SERVER_READ_TIMEOUT (ms)
// XHTTP_SERVER_WRITE_TIMEOUT (ms)
// XHTTP_SERVER_REQUEST_TIMEOUT (ms)
// XHTTP_SERVER_READ_BUFFER_BYTE
// XHTTP_SERVER_WRITE_BUFFER_BYTE

var (
	defaultReadBufferSize  = 1024 * 4
	defaultWriteBufferSize = 1024 * 4
	defaultReadTimeout     = time.Millisecond * 2500
	defaultWriteTimeout    = time.Millisecond * 2500
	defaultRequestTimeout  = time.Millisecond * 5000
)

func init() {
	if v, ok := envInt("XHTTP_SERVER_READ_TIMEOUT", 0); ok {
		defaultReadTimeout = time.Millisecond * time.Duration(v)
	}
	if v, ok := envInt("XHTTP_SERVER_WRITE_TIMEOUT", 0); ok {
		defaultWriteTimeout = time.Millisecond * time.Duration(v)
	}
	if v, ok := envInt("XHTTP_SERVER_REQUEST_TIMEOUT", 0); ok {
		defaultRequestTimeout = time.Millisecond * time.Duration(v)
	}
	if v, ok := envInt("XHTTP_SERVER_READ_BUFFER_BYTE", 1024); ok {
		defaultReadBufferSize = v
	}
	if v, ok := envInt("XHTTP_SERVER_WRITE_BUFFER_BYTE", 1024); ok {
		defaultWriteBufferSize = v
	}
}

// envInt reads a positive integer above min from the environment.
func envInt(key string, min int) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= min {
		return 0, false
	}
	fmt.Println("xhttp pkg: setting value from env: " + key)
	return v, true
}

// DefaultServerOption is tuned for a small public API behind a reverse proxy.
var DefaultServerOption = ServerOption{
	Handler:               NotFoundHandler,
	Name:                  "",
	IdleTimeout:           time.Second * 10,
	MaxIdleWorkerDuration: time.Minute,
	TCPKeepalivePeriod:    time.Minute * 120,
	MaxRequestBodySize:    1024 * 1024,
	ReadBufferSize:        defaultReadBufferSize, // also the max header size
	WriteBufferSize:       defaultWriteBufferSize,
	ReadTimeout:           defaultReadTimeout,
	WriteTimeout:          defaultWriteTimeout,
	RequestTimeout:        defaultRequestTimeout,
	Concurrency:           10_000,
	MaxConnsPerIP:         1_000,
	ErrorHandler: func(ctx *RequestCtx, err error) {
		logger.Warn("[xhttp] request error", "error", err, "ip", ctx.RemoteIP().String())
		WriteError(ctx, StatusBadRequest, StatusText(StatusBadRequest))
	},
	TCPKeepalive:                 true,
	DisablePreParseMultipartForm: true,
	NoDefaultServerHeader:        true,
	NoDefaultContentType:         true,
	CloseOnShutdown:              true,
	Logger:                       logger.GetLogger(),
}

type RequestHeader = fasthttp.RequestHeader
type ResponseHeader = fasthttp.ResponseHeader
type Server = fasthttp.Server

type ServerOption struct {
	Handler RequestHandler
	Name    string

	// Idle keep-alive connections are closed after this long so the process
	// does not run out of file descriptors.
	IdleTimeout           time.Duration
	MaxIdleWorkerDuration time.Duration
	TCPKeepalivePeriod    time.Duration

	// Larger bodies are rejected before they reach a handler.
	MaxRequestBodySize int

	ReadBufferSize  int
	WriteBufferSize int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	// RequestTimeout bounds handler execution; see TimeoutMiddleware.
	RequestTimeout time.Duration

	Concurrency   int
	MaxConnsPerIP int

	ErrorHandler                 func(ctx *RequestCtx, err error)
	TCPKeepalive                 bool
	DisablePreParseMultipartForm bool
	NoDefaultServerHeader        bool
	NoDefaultContentType         bool
	CloseOnShutdown              bool
	Logger                       logger.Logger
	TLSConfig                    *tls.Config
}

type Engine struct {
	*Router
	*Server
	middle []MiddlewareFunc
}

func newServer(options ServerOption) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:                      options.Handler,
		ErrorHandler:                 options.ErrorHandler,
		Name:                         options.Name,
		Concurrency:                  options.Concurrency,
		ReadBufferSize:               options.ReadBufferSize,
		WriteBufferSize:              options.WriteBufferSize,
		ReadTimeout:                  options.ReadTimeout,
		WriteTimeout:                 options.WriteTimeout,
		IdleTimeout:                  options.IdleTimeout,
		MaxConnsPerIP:                options.MaxConnsPerIP,
		MaxIdleWorkerDuration:        options.MaxIdleWorkerDuration,
		TCPKeepalivePeriod:           options.TCPKeepalivePeriod,
		MaxRequestBodySize:           options.MaxRequestBodySize,
		TCPKeepalive:                 options.TCPKeepalive,
		DisablePreParseMultipartForm: options.DisablePreParseMultipartForm,
		NoDefaultServerHeader:        options.NoDefaultServerHeader,
		NoDefaultContentType:         options.NoDefaultContentType,
		CloseOnShutdown:              options.CloseOnShutdown,
		Logger:                       options.Logger,
		TLSConfig:                    options.TLSConfig,
	}
}

func NewServer(options ServerOption) *Engine {
	return &Engine{
		Server: newServer(options),
		Router: NewRouter(),
	}
}

func CreateServer() *Engine {
	s := NewServer(DefaultServerOption)
	s.Router = CreateDefaultRouter()
	s.Server.Logger = logger.GetLogger()
	return s
}

func (e *Engine) ListenAndServe(addr string) error {
	err := e.DoRouting()
	if err != nil {
		return err
	}
	e.Server.Logger.Printf("[xhttp] server is listening on %s", addr)
	if err := e.Server.ListenAndServe(addr); err != nil {
		return err
	}
	return nil
}

// Handler composes the router with the registered middleware. The first
// middleware passed to Use is the outermost.
func (e *Engine) Handler() RequestHandler {
	h := e.Router.Handler
	for i := len(e.middle) - 1; i >= 0; i-- {
		h = e.middle[i](h)
	}
	return h
}

func (e *Engine) DoRouting() error {
	for method, route := range e.Router.List() {
		for _, r := range route {
			e.Server.Logger.Printf("[xhttp] method: %s, path: %s", method, r)
		}
	}
	for i, m := range e.middle {
		e.Server.Logger.Printf("[xhttp] middleware %d registered - %s", i+1, runtime.FuncForPC(reflect.ValueOf(m).Pointer()).Name())
	}
	e.Server.Handler = e.Handler()
	return nil
}

// Use appends middleware to the chain run for every request, including
// requests that fall through to the router's NotFound handler.
func (e *Engine) Use(middleware MiddlewareFunc) {
	e.middle = append(e.middle, middleware)
}

// ShutdownWithContext is Shutdown bounded by ctx.
func (e *Engine) ShutdownWithContext(ctx context.Context) error {
	e.Server.Logger.Printf("[xhttp] server is shutting down, process id: %d", os.Getpid())
	return e.Server.ShutdownWithContext(ctx)
}
