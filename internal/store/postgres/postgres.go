package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tokoscan/backend/internal/domain"
	"tokoscan/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (id, email, password, created_at)
		VALUES ($1,$2,$3,$4)
	`, user.ID, email, user.Password, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password, created_at
		FROM app_users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, qr_code, name, stock
		FROM products
		WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.QRCode, &p.Name, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProductByQRCode(ctx context.Context, ownerID string, qrCode string) (*domain.Product, error) {
	var product domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, qr_code, name, stock
		FROM products
		WHERE owner_id = $1 AND qr_code = $2
	`, ownerID, qrCode).Scan(&product.ID, &product.OwnerID, &product.QRCode, &product.Name, &product.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) RestockProduct(ctx context.Context, ownerID string, qrCode string, name string, quantity int) (*domain.Product, bool, error) {
	qrCode = strings.TrimSpace(qrCode)
	name = strings.TrimSpace(name)
	if ownerID == "" || qrCode == "" || quantity < 1 {
		return nil, false, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var product domain.Product
	err = tx.QueryRowContext(ctx, `
		SELECT id, owner_id, qr_code, name, stock
		FROM products
		WHERE owner_id = $1 AND qr_code = $2
		FOR UPDATE
	`, ownerID, qrCode).Scan(&product.ID, &product.OwnerID, &product.QRCode, &product.Name, &product.Stock)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if name == "" {
			return nil, false, store.ErrInvalidInput
		}
		product = domain.Product{
			ID:      uuid.NewString(),
			OwnerID: ownerID,
			QRCode:  qrCode,
			Name:    name,
			Stock:   quantity,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, owner_id, qr_code, name, stock, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,now(),now())
		`, product.ID, product.OwnerID, product.QRCode, product.Name, product.Stock); err != nil {
			if isUniqueViolation(err) {
				return nil, false, store.ErrDuplicate
			}
			return nil, false, err
		}
		created = true
	case err != nil:
		return nil, false, err
	default:
		product.Stock += quantity
		if _, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $3, updated_at = now()
			WHERE owner_id = $1 AND id = $2
		`, ownerID, product.ID, quantity); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &product, created, nil
}

// SellProduct runs the guarded decrement and the ledger append in one
// transaction so a crash can never leave stock decremented without a
// matching sale record.
func (s *Store) SellProduct(ctx context.Context, ownerID string, qrCode string, at time.Time) (*domain.SaleRecord, error) {
	qrCode = strings.TrimSpace(qrCode)
	if ownerID == "" || qrCode == "" {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var product domain.Product
	err = tx.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - 1, updated_at = now()
		WHERE owner_id = $1 AND qr_code = $2 AND stock > 0
		RETURNING id, owner_id, qr_code, name, stock
	`, ownerID, qrCode).Scan(&product.ID, &product.OwnerID, &product.QRCode, &product.Name, &product.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMissedSale(ctx, ownerID, qrCode)
		}
		return nil, err
	}

	record := domain.SaleRecord{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		QRCode:        product.QRCode,
		QuantitySold:  1,
		SaleTimestamp: at.UTC(),
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sales (id, owner_id, product_id, product_name, qr_code, quantity_sold, sale_timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, record.ID, record.OwnerID, record.ProductID, record.ProductName, record.QRCode, record.QuantitySold, record.SaleTimestamp); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &record, nil
}

// classifyMissedSale distinguishes an unknown code from an out-of-stock
// product after the guarded decrement matched no row.
func (s *Store) classifyMissedSale(ctx context.Context, ownerID string, qrCode string) error {
	var stock int
	err := s.db.QueryRowContext(ctx, `
		SELECT stock
		FROM products
		WHERE owner_id = $1 AND qr_code = $2
	`, ownerID, qrCode).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return store.ErrOutOfStock
}

func (s *Store) MonthlySalesReport(ctx context.Context, ownerID string, year int, month time.Month) ([]domain.ReportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_name, SUM(quantity_sold) AS total_sold
		FROM sales
		WHERE owner_id = $1
		  AND EXTRACT(YEAR FROM sale_timestamp AT TIME ZONE 'UTC') = $2
		  AND EXTRACT(MONTH FROM sale_timestamp AT TIME ZONE 'UTC') = $3
		GROUP BY product_name
		ORDER BY total_sold DESC, product_name ASC
	`, ownerID, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := make([]domain.ReportRow, 0, 32)
	for rows.Next() {
		var row domain.ReportRow
		if err := rows.Scan(&row.ProductName, &row.TotalSold); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return report, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
