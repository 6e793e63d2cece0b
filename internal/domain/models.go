package domain

import "time"

// Product is one sellable item in an owner's inventory. The QR code is
// unique within a single owner's catalog, not globally.
type Product struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	QRCode  string `json:"qrCode"`
	Name    string `json:"name"`
	Stock   int    `json:"stock"`
}

// SaleRecord is an append-only ledger entry. ProductName is a denormalized
// snapshot taken at sale time so reports survive later product renames.
type SaleRecord struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	QRCode        string    `json:"qrCode"`
	QuantitySold  int       `json:"quantitySold"`
	SaleTimestamp time.Time `json:"saleTimestamp"`
}

// ReportRow is one aggregated line of the monthly sales report.
type ReportRow struct {
	ProductName string `json:"productName"`
	TotalSold   int    `json:"totalSold"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type SellRequest struct {
	QRCode string `json:"qrCode" validate:"required"`
}

type RestockRequest struct {
	QRCode   string `json:"qrCode" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// Actor identifies the authenticated owner a request acts on behalf of.
type Actor struct {
	UserID string
	Email  string
}

// UserAccount is an internal persistence model for auth credentials.
// Password holds the bcrypt hash, never plain text.
type UserAccount struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
}
