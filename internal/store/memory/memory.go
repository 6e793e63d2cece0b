package memory

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"tokoscan/backend/internal/domain"
	"tokoscan/backend/internal/store"
)

// Store is an in-memory repository used for dev mode and unit tests.
// All mutations run under one mutex, which also makes the sale
// decrement-plus-append pair atomic.
type Store struct {
	mu           sync.RWMutex
	usersByEmail map[string]domain.UserAccount
	products     map[string]map[string]domain.Product // ownerID -> qrCode -> product
	sales        map[string][]domain.SaleRecord       // ownerID -> ledger
}

func New() *Store {
	return &Store{
		usersByEmail: make(map[string]domain.UserAccount),
		products:     make(map[string]map[string]domain.Product),
		sales:        make(map[string][]domain.SaleRecord),
	}
}

// NewSeeded builds a store preloaded with a demo account and a few products
// for dev mode. The demo password is read from SEED_DEMO_PASSWORD; if unset
// a hardcoded dev default is used with a warning. Never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func NewSeeded() *Store {
	s := New()

	password := os.Getenv("SEED_DEMO_PASSWORD")
	if password == "" {
		password = "rahasia123"
		log.Warn().Msg("memory store: using default demo credentials, set SEED_DEMO_PASSWORD to override")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		log.Fatal().Err(err).Msg("memory store: failed to hash demo password")
	}

	owner := domain.UserAccount{
		ID:        uuid.NewString(),
		Email:     "demo@tokoscan.id",
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	}
	s.usersByEmail[owner.Email] = owner

	s.products[owner.ID] = map[string]domain.Product{}
	for _, p := range []domain.Product{
		{QRCode: "QR-MIE-01", Name: "Mie Goreng Instan", Stock: 24},
		{QRCode: "QR-KOPI-01", Name: "Kopi Sachet", Stock: 60},
		{QRCode: "QR-AIR-01", Name: "Air Mineral 600ml", Stock: 48},
		{QRCode: "QR-ROTI-01", Name: "Roti Tawar", Stock: 10},
	} {
		p.ID = uuid.NewString()
		p.OwnerID = owner.ID
		s.products[owner.ID][p.QRCode] = p
	}

	return s
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || user.Password == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return store.ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = email
	s.usersByEmail[email] = user
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := user
	return &found, nil
}

func (s *Store) ListProducts(_ context.Context, ownerID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.products[ownerID]
	products := make([]domain.Product, 0, len(owned))
	for _, p := range owned {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func (s *Store) GetProductByQRCode(_ context.Context, ownerID string, qrCode string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[ownerID][qrCode]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := p
	return &found, nil
}

func (s *Store) RestockProduct(_ context.Context, ownerID string, qrCode string, name string, quantity int) (*domain.Product, bool, error) {
	qrCode = strings.TrimSpace(qrCode)
	name = strings.TrimSpace(name)
	if ownerID == "" || qrCode == "" || quantity < 1 {
		return nil, false, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.products[ownerID]
	if owned == nil {
		owned = make(map[string]domain.Product)
		s.products[ownerID] = owned
	}

	if existing, ok := owned[qrCode]; ok {
		existing.Stock += quantity
		owned[qrCode] = existing
		updated := existing
		return &updated, false, nil
	}

	if name == "" {
		return nil, false, store.ErrInvalidInput
	}
	created := domain.Product{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		QRCode:  qrCode,
		Name:    name,
		Stock:   quantity,
	}
	owned[qrCode] = created
	return &created, true, nil
}

func (s *Store) SellProduct(_ context.Context, ownerID string, qrCode string, at time.Time) (*domain.SaleRecord, error) {
	if ownerID == "" || strings.TrimSpace(qrCode) == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[ownerID][qrCode]
	if !ok {
		return nil, store.ErrNotFound
	}
	if product.Stock <= 0 {
		return nil, store.ErrOutOfStock
	}

	product.Stock--
	s.products[ownerID][qrCode] = product

	record := domain.SaleRecord{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		QRCode:        product.QRCode,
		QuantitySold:  1,
		SaleTimestamp: at.UTC(),
	}
	s.sales[ownerID] = append(s.sales[ownerID], record)

	sold := record
	return &sold, nil
}

func (s *Store) MonthlySalesReport(_ context.Context, ownerID string, year int, month time.Month) ([]domain.ReportRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int)
	for _, record := range s.sales[ownerID] {
		ts := record.SaleTimestamp.UTC()
		if ts.Year() != year || ts.Month() != month {
			continue
		}
		totals[record.ProductName] += record.QuantitySold
	}

	rows := make([]domain.ReportRow, 0, len(totals))
	for name, total := range totals {
		rows = append(rows, domain.ReportRow{ProductName: name, TotalSold: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSold != rows[j].TotalSold {
			return rows[i].TotalSold > rows[j].TotalSold
		}
		return rows[i].ProductName < rows[j].ProductName
	})
	return rows, nil
}
