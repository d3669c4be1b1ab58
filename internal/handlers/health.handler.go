package handlers

import (
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
)

type HealthService interface {
	Get() model.Health
}

type HealthHandler struct {
	svc HealthService
}

func RegisterHealthRoutes(g *xhttp.Group, h *HealthHandler) {
	g.GET("/health", h.GetHealth)
}

func NewHealthHandler(svc HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	xhttp.WriteJSON(ctx, xhttp.StatusOK, h.svc.Get())
}
