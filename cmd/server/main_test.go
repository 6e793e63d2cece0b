package main

import (
	"strings"
	"testing"

	"tokoscan/backend/internal/config"
)

func TestValidateSecurityConfig(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: ""}); err == nil {
		t.Fatalf("expected missing secret to be rejected")
	}
	if err := validateSecurityConfig(config.Config{AuthSecret: "too-short"}); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
	if err := validateSecurityConfig(config.Config{AuthSecret: strings.Repeat("x", 32)}); err != nil {
		t.Fatalf("expected 32-char secret to pass, got %v", err)
	}
}
