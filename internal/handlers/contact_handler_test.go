package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/auth"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/ratelimit"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/services"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/validation"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func init() {
	logger.NewNop()
}

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, in model.ContactSubmission, meta model.RequestMeta) (*model.Contact, error) {
	args := m.Called(ctx, in, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactService) List(ctx context.Context) ([]*model.Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Contact), args.Error(1)
}

func (m *MockContactService) Get(ctx context.Context, id int64) (*model.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactService) UpdateStatus(ctx context.Context, id int64, raw string) (model.ContactStatus, error) {
	args := m.Called(ctx, id, raw)
	return args.Get(0).(model.ContactStatus), args.Error(1)
}

type testRouter struct {
	svc     *MockContactService
	handler xhttp.RequestHandler
}

func newTestRouter(mw ContactRoutes) *testRouter {
	svc := new(MockContactService)
	r := xhttp.CreateDefaultRouter()
	RegisterContactRoutes(r.Group("/api"), NewContactHandler(svc, 0), mw)
	return &testRouter{svc: svc, handler: r.Handler}
}

func (tr *testRouter) do(method, uri string, body []byte, headers ...string) *xhttp.RequestCtx {
	return serve(tr.handler, method, uri, body, headers...)
}

func serve(h xhttp.RequestHandler, method, uri string, body []byte, headers ...string) *xhttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.Header.SetUserAgent("handler-test/1.0")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, &net.TCPAddr{IP: net.ParseIP("198.51.100.7"), Port: 4000}, nil)
	h(ctx)
	return ctx
}

func decode[T any](t *testing.T, ctx *xhttp.RequestCtx) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &v), string(ctx.Response.Body()))
	return v
}

func sampleContact(id int64) *model.Contact {
	ip := "198.51.100.7"
	return &model.Contact{
		ID:        id,
		Name:      "Ada",
		Email:     "ada@example.com",
		Message:   "Hello",
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		IPAddress: &ip,
		Status:    model.ContactStatusNew,
	}
}

func TestContactHandler_Submit(t *testing.T) {
	body := []byte(`{"name":"Ada","email":"ada@example.com","message":"Hello"}`)

	t.Run("created", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("Submit", mock.Anything,
			model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"},
			model.RequestMeta{IPAddress: "198.51.100.7", UserAgent: "handler-test/1.0"},
		).Return(sampleContact(12), nil)

		ctx := tr.do("POST", "/api/contact", body)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		resp := decode[submitResponse](t, ctx)
		assert.Equal(t, MsgSubmitted, resp.Message)
		assert.Equal(t, int64(12), resp.ID)
		tr.svc.AssertExpectations(t)
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		verrs := validation.Errors{
			{Field: "name", Code: validation.CodeMissingField, Message: "Name is required"},
			{Field: "email", Code: validation.CodeInvalidEmail, Message: "Invalid email"},
		}
		tr.svc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil, verrs)

		ctx := tr.do("POST", "/api/contact", []byte(`{"email":"nope","message":"x"}`))

		assert.Equal(t, 400, ctx.Response.StatusCode())
		resp := decode[struct {
			Error   string                 `json:"error"`
			Details []validation.Violation `json:"details"`
		}](t, ctx)
		assert.Equal(t, MsgValidationFailed, resp.Error)
		require.Len(t, resp.Details, 2)
		assert.Equal(t, "name", resp.Details[0].Field)
		assert.Equal(t, validation.CodeInvalidEmail, resp.Details[1].Code)
	})

	t.Run("empty body reaches validation", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("Submit", mock.Anything, model.ContactSubmission{}, mock.Anything).
			Return(nil, validation.Errors{{Field: "name", Code: validation.CodeMissingField}})

		ctx := tr.do("POST", "/api/contact", nil)
		assert.Equal(t, 400, ctx.Response.StatusCode())
		tr.svc.AssertExpectations(t)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		ctx := tr.do("POST", "/api/contact", []byte("{not json"))

		assert.Equal(t, 400, ctx.Response.StatusCode())
		assert.Equal(t, MsgInvalidBody, decode[xhttp.ErrorBody](t, ctx).Error)
		tr.svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is not leaked", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("Submit", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: create: %w", services.ErrPersistence, fmt.Errorf("dial tcp 10.0.0.5:5432: refused")))

		ctx := tr.do("POST", "/api/contact", body)

		assert.Equal(t, 500, ctx.Response.StatusCode())
		assert.Equal(t, `{"error":"Internal server error."}`, string(ctx.Response.Body()))
	})
}

func TestContactHandler_RateLimit(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewMemoryCounter(), 5, time.Minute)
	tr := newTestRouter(ContactRoutes{SubmitLimit: RateLimitMiddleware(limiter, 0)})
	tr.svc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(sampleContact(1), nil)

	body := []byte(`{"name":"Ada","email":"ada@example.com","message":"Hello"}`)
	for i := 0; i < 5; i++ {
		ctx := tr.do("POST", "/api/contact", body)
		require.Equal(t, 201, ctx.Response.StatusCode(), "request %d", i+1)
		assert.Equal(t, fmt.Sprint(4-i), string(ctx.Response.Header.Peek("RateLimit-Remaining")))
	}

	ctx := tr.do("POST", "/api/contact", body)
	assert.Equal(t, 429, ctx.Response.StatusCode())
	assert.Equal(t, ratelimit.Message, decode[xhttp.ErrorBody](t, ctx).Error)
	assert.NotEmpty(t, ctx.Response.Header.Peek("Retry-After"))
	assert.Equal(t, "0", string(ctx.Response.Header.Peek("RateLimit-Remaining")))
	tr.svc.AssertNumberOfCalls(t, "Submit", 5)

	// the query endpoints are not limited
	tr.svc.On("List", mock.Anything).Return([]*model.Contact{}, nil)
	assert.Equal(t, 200, tr.do("GET", "/api/contacts", nil).Response.StatusCode())
}

func TestContactHandler_List(t *testing.T) {
	t.Run("contacts and total", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("List", mock.Anything).Return([]*model.Contact{sampleContact(2), sampleContact(1)}, nil)

		ctx := tr.do("GET", "/api/contacts", nil)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		resp := decode[listResponse](t, ctx)
		assert.Equal(t, 2, resp.Total)
		require.Len(t, resp.Contacts, 2)
		assert.Equal(t, int64(2), resp.Contacts[0].ID)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("List", mock.Anything).Return([]*model.Contact{}, nil)

		ctx := tr.do("GET", "/api/contacts", nil)
		assert.JSONEq(t, `{"contacts":[],"total":0}`, string(ctx.Response.Body()))
	})

	t.Run("store failure", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("List", mock.Anything).Return(nil, services.ErrPersistence)

		ctx := tr.do("GET", "/api/contacts", nil)
		assert.Equal(t, 500, ctx.Response.StatusCode())
	})
}

func TestContactHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("Get", mock.Anything, int64(7)).Return(sampleContact(7), nil)

		ctx := tr.do("GET", "/api/contacts/7", nil)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		c := decode[model.Contact](t, ctx)
		assert.Equal(t, int64(7), c.ID)
		assert.Equal(t, model.ContactStatusNew, c.Status)
		require.NotNil(t, c.IPAddress)
		assert.Nil(t, c.UserAgent)
	})

	t.Run("unknown id", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("Get", mock.Anything, int64(99)).Return(nil, services.ErrNotFound)

		ctx := tr.do("GET", "/api/contacts/99", nil)
		assert.Equal(t, 404, ctx.Response.StatusCode())
		assert.Equal(t, MsgNotFound, decode[xhttp.ErrorBody](t, ctx).Error)
	})

	for _, id := range []string{"abc", "0", "-3", "99999999999999999999"} {
		t.Run("non-numeric id "+id, func(t *testing.T) {
			tr := newTestRouter(ContactRoutes{})
			ctx := tr.do("GET", "/api/contacts/"+id, nil)
			assert.Equal(t, 404, ctx.Response.StatusCode())
			tr.svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		})
	}
}

func TestContactHandler_UpdateStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("UpdateStatus", mock.Anything, int64(3), "read").Return(model.ContactStatusRead, nil)

		ctx := tr.do("PATCH", "/api/contacts/3/status", []byte(`{"status":"read"}`))

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Equal(t, MsgStatusUpdated, decode[messageResponse](t, ctx).Message)
		tr.svc.AssertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("UpdateStatus", mock.Anything, int64(3), "spam").
			Return(model.ContactStatus(""), validation.Errors{{Field: "status", Code: validation.CodeInvalidStatus}})

		ctx := tr.do("PATCH", "/api/contacts/3/status", []byte(`{"status":"spam"}`))
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("invalid status on bad id is still a 400", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("UpdateStatus", mock.Anything, int64(0), "spam").
			Return(model.ContactStatus(""), validation.Errors{{Field: "status", Code: validation.CodeInvalidStatus}})

		ctx := tr.do("PATCH", "/api/contacts/abc/status", []byte(`{"status":"spam"}`))
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("unknown id", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		tr.svc.On("UpdateStatus", mock.Anything, int64(0), "read").Return(model.ContactStatus(""), services.ErrNotFound)

		ctx := tr.do("PATCH", "/api/contacts/abc/status", []byte(`{"status":"read"}`))
		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("malformed JSON", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{})
		ctx := tr.do("PATCH", "/api/contacts/3/status", []byte(`status=read`))
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestAdminMiddleware(t *testing.T) {
	authn := auth.New("s3cret", time.Hour)
	tr := newTestRouter(ContactRoutes{Admin: AdminMiddleware(authn)})
	tr.svc.On("List", mock.Anything).Return([]*model.Contact{}, nil)

	ctx := tr.do("GET", "/api/contacts", nil)
	assert.Equal(t, 401, ctx.Response.StatusCode())
	assert.Equal(t, MsgUnauthorized, decode[xhttp.ErrorBody](t, ctx).Error)

	ctx = tr.do("GET", "/api/contacts", nil, "Authorization", "Bearer not-a-jwt")
	assert.Equal(t, 401, ctx.Response.StatusCode())

	token, _, err := authn.Issue()
	require.NoError(t, err)
	ctx = tr.do("GET", "/api/contacts", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, 200, ctx.Response.StatusCode())

	t.Run("disabled authenticator is a pass-through", func(t *testing.T) {
		tr := newTestRouter(ContactRoutes{Admin: AdminMiddleware(auth.New("", 0))})
		tr.svc.On("List", mock.Anything).Return([]*model.Contact{}, nil)
		assert.Equal(t, 200, tr.do("GET", "/api/contacts", nil).Response.StatusCode())
	})
}

type stubHealth struct{ h model.Health }

func (s stubHealth) Get() model.Health { return s.h }

func TestHealthHandler(t *testing.T) {
	r := xhttp.CreateDefaultRouter()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	RegisterHealthRoutes(r.Group("/api"), NewHealthHandler(stubHealth{model.Health{
		Status: "ok", Message: "Service is healthy", Timestamp: ts, Uptime: 12.5,
	}}))

	ctx := serve(r.Handler, "GET", "/api/health", nil)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok","message":"Service is healthy","timestamp":"2024-05-01T10:00:00Z","uptime":12.5}`,
		string(ctx.Response.Body()))
}

func TestDocsRoutes(t *testing.T) {
	r := xhttp.CreateDefaultRouter()
	RegisterDocsRoutes(r)

	ctx := serve(r.Handler, "GET", "/api-docs", nil)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "/api-docs/openapi.yaml")

	ctx = serve(r.Handler, "GET", "/api-docs/openapi.yaml", nil)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "/api/contacts/{id}/status:")
}

func TestErrorResponse(t *testing.T) {
	status, body := ErrorResponse(fmt.Errorf("wrapped: %w", services.ErrNotFound))
	assert.Equal(t, 404, status)
	assert.Equal(t, MsgNotFound, body.Error)

	status, body = ErrorResponse(validation.Errors{{Field: "email", Code: validation.CodeInvalidEmail}})
	assert.Equal(t, 400, status)
	assert.Len(t, body.Details, 1)

	status, body = ErrorResponse(fmt.Errorf("boom"))
	assert.Equal(t, 500, status)
	assert.Nil(t, body.Details)
}
