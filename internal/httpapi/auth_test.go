package httpapi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tokoscan/backend/internal/domain"
	"tokoscan/backend/internal/store"
)

type userStoreStub struct {
	byEmail map[string]domain.UserAccount
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{byEmail: make(map[string]domain.UserAccount)}
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrDuplicate
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *userStoreStub) GetUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := user
	return &found, nil
}

func TestSignupPasswordLength(t *testing.T) {
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, newUserStoreStub())
	ctx := context.Background()

	err := auth.Signup(ctx, domain.SignupRequest{Email: "budi@toko.id", Password: "12345"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 5-char password, got %v", err)
	}

	// Length is checked after trimming, so padding does not help.
	err = auth.Signup(ctx, domain.SignupRequest{Email: "budi@toko.id", Password: "  123  "})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for padded short password, got %v", err)
	}

	if err := auth.Signup(ctx, domain.SignupRequest{Email: "budi@toko.id", Password: "123456"}); err != nil {
		t.Fatalf("expected 6-char password to pass, got %v", err)
	}
}

func TestSignupRejectsMalformedEmail(t *testing.T) {
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, newUserStoreStub())

	err := auth.Signup(context.Background(), domain.SignupRequest{Email: "not-an-email", Password: "rahasia123"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSignupNormalizesEmailAndHashesPassword(t *testing.T) {
	users := newUserStoreStub()
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, users)

	if err := auth.Signup(context.Background(), domain.SignupRequest{Email: "  Budi@Toko.ID ", Password: "rahasia123"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	stored, ok := users.byEmail["budi@toko.id"]
	if !ok {
		t.Fatalf("expected account stored under lowercase email, have: %v", users.byEmail)
	}
	if stored.Password == "rahasia123" || !strings.HasPrefix(stored.Password, "$2") {
		t.Fatalf("password must be stored as a bcrypt hash, got %q", stored.Password)
	}
	if stored.ID == "" {
		t.Fatalf("expected a generated account ID")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, newUserStoreStub())
	ctx := context.Background()

	if err := auth.Signup(ctx, domain.SignupRequest{Email: "budi@toko.id", Password: "rahasia123"}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	err := auth.Signup(ctx, domain.SignupRequest{Email: "BUDI@toko.id", Password: "rahasia123"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestLoginAndParseTokenRoundtrip(t *testing.T) {
	users := newUserStoreStub()
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, users)
	ctx := context.Background()

	if err := auth.Signup(ctx, domain.SignupRequest{Email: "budi@toko.id", Password: "rahasia123"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "Budi@Toko.ID", Password: "rahasia123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" || resp.ExpiresAt == "" {
		t.Fatalf("incomplete login response: %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.UserID != users.byEmail["budi@toko.id"].ID {
		t.Fatalf("token subject mismatch: %q", actor.UserID)
	}
	if actor.Email != "budi@toko.id" {
		t.Fatalf("token email mismatch: %q", actor.Email)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, newUserStoreStub())
	ctx := context.Background()

	if err := auth.Signup(ctx, domain.SignupRequest{Email: "budi@toko.id", Password: "rahasia123"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if _, err := auth.Login(ctx, domain.LoginRequest{Email: "budi@toko.id", Password: "salah-total"}); err == nil {
		t.Fatalf("expected wrong password to fail")
	}
	if _, err := auth.Login(ctx, domain.LoginRequest{Email: "tidak-ada@toko.id", Password: "rahasia123"}); err == nil {
		t.Fatalf("expected unknown email to fail")
	}
}

func TestParseTokenRejectsForgedTokens(t *testing.T) {
	users := newUserStoreStub()
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, users)
	other := NewAuthManager("another-secret-entirely-another-one", time.Hour, users)
	ctx := context.Background()

	if err := auth.Signup(ctx, domain.SignupRequest{Email: "budi@toko.id", Password: "rahasia123"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	resp, err := other.Login(ctx, domain.LoginRequest{Email: "budi@toko.id", Password: "rahasia123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
	if _, err := auth.ParseToken("not.a.token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	users := newUserStoreStub()
	auth := NewAuthManager("unit-test-secret-unit-test-secret", time.Hour, users)

	token, err := auth.sign("user-1", "budi@toko.id", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
