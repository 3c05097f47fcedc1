package identity

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user_abc", "Poro Pal", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != "user_abc" || claims.DisplayName != "Poro Pal" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.Subject != "user_abc" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestGenerateToken_Validation(t *testing.T) {
	if _, err := GenerateToken("", "x", testSecret, time.Hour); err == nil {
		t.Error("expected error for empty user id")
	}
	if _, err := GenerateToken("user_abc", "x", nil, time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestParseToken_Errors(t *testing.T) {
	expired, err := GenerateToken("user_abc", "", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken(expired, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}

	valid, _ := GenerateToken("user_abc", "", testSecret, time.Hour)
	if _, err := ParseToken(valid, []byte("other-secret")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
	if _, err := ParseToken("not-a-token", testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"Poro", "Poro", nil},
		{"  Teemo  ", "Teemo", nil},
		{"abc", "abc", nil},
		{strings.Repeat("x", 20), strings.Repeat("x", 20), nil},
		{"Ünï", "Ünï", nil},
		{"", "", ErrEmptyDisplayName},
		{"   ", "", ErrDisplayNameLength},
		{" ab ", "", ErrDisplayNameLength},
		{strings.Repeat("x", 21), "", ErrDisplayNameLength},
	}

	for _, tt := range tests {
		got, err := NormalizeDisplayName(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("NormalizeDisplayName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeDisplayName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHashSubject(t *testing.T) {
	a := HashSubject("001234.abcdef")
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a != HashSubject("001234.abcdef") {
		t.Error("hash should be deterministic")
	}
	if a == HashSubject("001234.abcdeg") {
		t.Error("different subjects should hash differently")
	}
}
