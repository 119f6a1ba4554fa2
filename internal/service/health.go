package service

import (
	"context"

	"todo_api/internal/repository"
)

type HealthService struct {
	healthRepo repository.HealthRepo
}

func NewHealthService(healthRepo repository.HealthRepo) *HealthService {
	return &HealthService{healthRepo: healthRepo}
}

// Check pings the store within the configured query timeout.
func (s *HealthService) Check(ctx context.Context) error {
	return s.healthRepo.Ping(ctx)
}
