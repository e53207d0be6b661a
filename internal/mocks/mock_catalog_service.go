package mocks

import (
	"context"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

type MockCatalogService struct {
	GetShowtimeDetailsFunc func(ctx context.Context, showtimeID string) (*domain.ShowtimeDetails, error)
}

func (m *MockCatalogService) GetShowtimeDetails(ctx context.Context, showtimeID string) (*domain.ShowtimeDetails, error) {
	return m.GetShowtimeDetailsFunc(ctx, showtimeID)
}
