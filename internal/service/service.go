package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tokoscan/backend/internal/cache"
	"tokoscan/backend/internal/domain"
	"tokoscan/backend/internal/store"
)

// ErrUnauthenticated is returned when a workflow is invoked without an
// Actor in the context. The HTTP layer rejects such requests earlier; this
// is the service-level backstop.
var ErrUnauthenticated = errors.New("unauthenticated")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo      store.Repository
	reports   cache.ReportCache
	reportTTL time.Duration
}

func New(repo store.Repository, reports cache.ReportCache, reportTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if reportTTL <= 0 {
		reportTTL = time.Minute
	}

	return &Service{
		repo:      repo,
		reports:   reports,
		reportTTL: reportTTL,
	}
}

// Sell decrements stock for the scanned code by one and appends a ledger
// entry, scoped to the calling owner. Returns the confirmation message.
func (s *Service) Sell(ctx context.Context, req domain.SellRequest) (string, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}

	qrCode := strings.TrimSpace(req.QRCode)
	if qrCode == "" {
		return "", store.ErrInvalidInput
	}

	sale, err := s.repo.SellProduct(ctx, actor.UserID, qrCode, time.Now().UTC())
	if err != nil {
		return "", err
	}

	s.invalidateReport(ctx, actor.UserID, sale.SaleTimestamp)

	return fmt.Sprintf("Penjualan %s berhasil", sale.ProductName), nil
}

// Restock increments stock for an existing code or registers a new product.
// The returned flag is true when a product was created. For an existing
// product the supplied name is ignored; only the confirmation message echoes
// it.
func (s *Service) Restock(ctx context.Context, req domain.RestockRequest) (string, bool, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return "", false, ErrUnauthenticated
	}

	qrCode := strings.TrimSpace(req.QRCode)
	name := strings.TrimSpace(req.Name)
	if qrCode == "" || name == "" || req.Quantity < 1 {
		return "", false, store.ErrInvalidInput
	}

	_, created, err := s.repo.RestockProduct(ctx, actor.UserID, qrCode, name, req.Quantity)
	if err != nil {
		return "", false, err
	}

	if created {
		return fmt.Sprintf("Produk %s berhasil ditambahkan", name), true, nil
	}
	return fmt.Sprintf("Stok untuk %s berhasil diperbarui", name), false, nil
}

// ListStock returns the caller's products sorted by name ascending.
func (s *Service) ListStock(ctx context.Context) ([]domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListProducts(ctx, actor.UserID)
}

// MonthlyReport aggregates the caller's sales for the given calendar month.
// A month with no sales yields an empty slice, not an error.
func (s *Service) MonthlyReport(ctx context.Context, month int, year int) ([]domain.ReportRow, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if month < 1 || month > 12 || year < 1000 || year > 9999 {
		return nil, store.ErrInvalidInput
	}

	key := reportKey(actor.UserID, year, time.Month(month))
	if rows, hit, err := s.reports.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("report cache read failed, falling back to repository")
	} else if hit {
		return rows, nil
	}

	rows, err := s.repo.MonthlySalesReport(ctx, actor.UserID, year, time.Month(month))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.ReportRow{}
	}

	if err := s.reports.Set(ctx, key, rows, s.reportTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}

	return rows, nil
}

// invalidateReport drops the cached report for the month the sale landed in.
func (s *Service) invalidateReport(ctx context.Context, ownerID string, at time.Time) {
	key := reportKey(ownerID, at.UTC().Year(), at.UTC().Month())
	if err := s.reports.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("report cache invalidation failed")
	}
}

func reportKey(ownerID string, year int, month time.Month) string {
	return fmt.Sprintf("report:%s:%04d-%02d", ownerID, year, int(month))
}
