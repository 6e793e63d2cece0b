package cache

import (
	"context"
	"time"

	"tokoscan/backend/internal/domain"
)

// ReportCache holds monthly sales reports keyed per owner and month.
// Implementations may fail; callers degrade to direct repository reads.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]domain.ReportRow, bool, error)
	Set(ctx context.Context, key string, rows []domain.ReportRow, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) ([]domain.ReportRow, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ []domain.ReportRow, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Delete(_ context.Context, _ string) error {
	return nil
}
