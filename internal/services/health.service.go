package services

import (
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
)

type HealthService struct {
	startedAt time.Time
	now       func() time.Time
}

func NewHealthService() *HealthService {
	return &HealthService{startedAt: time.Now(), now: time.Now}
}

// Get reports liveness. It does not touch the store.
func (s *HealthService) Get() model.Health {
	now := s.now()
	return model.Health{
		Status:    "ok",
		Message:   "Service is healthy",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(s.startedAt).Seconds(),
	}
}
