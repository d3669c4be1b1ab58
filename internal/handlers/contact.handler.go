package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
)

type ContactService interface {
	Submit(ctx context.Context, in model.ContactSubmission, meta model.RequestMeta) (*model.Contact, error)
	List(ctx context.Context) ([]*model.Contact, error)
	Get(ctx context.Context, id int64) (*model.Contact, error)
	UpdateStatus(ctx context.Context, id int64, raw string) (model.ContactStatus, error)
}

type ContactHandler struct {
	svc            ContactService
	trustedProxies int
}

// ContactRoutes carries the optional per-route middleware.
type ContactRoutes struct {
	// SubmitLimit guards POST /contact.
	SubmitLimit xhttp.MiddlewareFunc
	// Admin guards the query endpoints.
	Admin xhttp.MiddlewareFunc
}

func RegisterContactRoutes(g *xhttp.Group, h *ContactHandler, mw ContactRoutes) {
	wrap := func(m xhttp.MiddlewareFunc, next xhttp.RequestHandler) xhttp.RequestHandler {
		if m == nil {
			return next
		}
		return m(next)
	}

	g.POST("/contact", wrap(mw.SubmitLimit, h.SubmitContact))
	g.GET("/contacts", wrap(mw.Admin, h.ListContacts))
	g.GET("/contacts/{id}", wrap(mw.Admin, h.GetContact))
	g.PATCH("/contacts/{id}/status", wrap(mw.Admin, h.UpdateStatus))
}

func NewContactHandler(svc ContactService, trustedProxies int) *ContactHandler {
	return &ContactHandler{svc: svc, trustedProxies: trustedProxies}
}

type submitResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type listResponse struct {
	Contacts []*model.Contact `json:"contacts"`
	Total    int              `json:"total"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *ContactHandler) SubmitContact(ctx *xhttp.RequestCtx) {
	var req model.ContactSubmission
	if err := readJSON(ctx, &req); err != nil {
		xhttp.WriteError(ctx, xhttp.StatusBadRequest, MsgInvalidBody)
		return
	}

	meta := model.RequestMeta{
		IPAddress: xhttp.ClientIP(ctx, h.trustedProxies),
		UserAgent: string(ctx.UserAgent()),
	}
	c, err := h.svc.Submit(ctx, req, meta)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusCreated, submitResponse{Message: MsgSubmitted, ID: c.ID})
}

func (h *ContactHandler) ListContacts(ctx *xhttp.RequestCtx) {
	contacts, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, listResponse{Contacts: contacts, Total: len(contacts)})
}

func (h *ContactHandler) GetContact(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		xhttp.WriteError(ctx, xhttp.StatusNotFound, MsgNotFound)
		return
	}
	c, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, c)
}

func (h *ContactHandler) UpdateStatus(ctx *xhttp.RequestCtx) {
	var req statusRequest
	if err := readJSON(ctx, &req); err != nil {
		xhttp.WriteError(ctx, xhttp.StatusBadRequest, MsgInvalidBody)
		return
	}
	// an unparseable id goes through as 0, which matches no row, so a bad
	// status is still reported before the 404
	id, _ := pathID(ctx)
	if _, err := h.svc.UpdateStatus(ctx, id, req.Status); err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, messageResponse{Message: MsgStatusUpdated})
}

// readJSON decodes the body into dst. An empty body leaves dst untouched so
// that validation reports the missing fields.
func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// pathID parses the {id} route parameter. Only positive integers can match
// a stored row.
func pathID(ctx *xhttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
