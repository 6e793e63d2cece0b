package store

import (
	"context"
	"errors"
	"time"

	"tokoscan/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrOutOfStock   = errors.New("out of stock")
	ErrDuplicate    = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// Repository is the persistence boundary. Every product and sale operation
// takes the owning user's ID; implementations must never return another
// owner's data.
type Repository interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error)

	ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error)
	GetProductByQRCode(ctx context.Context, ownerID string, qrCode string) (*domain.Product, error)

	// RestockProduct increments stock for an existing (ownerID, qrCode) pair
	// or creates the product when the code is unseen. The returned flag is
	// true when a new product was created. The name argument is only used on
	// creation; restocking never renames.
	RestockProduct(ctx context.Context, ownerID string, qrCode string, name string, quantity int) (*domain.Product, bool, error)

	// SellProduct decrements stock by one and appends a SaleRecord with
	// quantity 1, atomically. Returns ErrNotFound for an unknown code and
	// ErrOutOfStock when stock is already zero; in both cases nothing is
	// mutated.
	SellProduct(ctx context.Context, ownerID string, qrCode string, at time.Time) (*domain.SaleRecord, error)

	// MonthlySalesReport aggregates the owner's ledger entries whose
	// timestamp falls in the given calendar month, grouped by product name,
	// ordered by total sold descending (name ascending on ties).
	MonthlySalesReport(ctx context.Context, ownerID string, year int, month time.Month) ([]domain.ReportRow, error)
}
