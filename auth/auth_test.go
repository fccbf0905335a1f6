// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateSessionCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateSessionCode()
		if err != nil {
			t.Fatalf("GenerateSessionCode() error = %v", err)
		}

		if len(code) != SessionCodeLength {
			t.Fatalf("GenerateSessionCode() length = %d, want %d", len(code), SessionCodeLength)
		}

		// Upper-case alphanumeric only, so it survives NormalizeCode unchanged
		for _, c := range code {
			if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')) {
				t.Errorf("GenerateSessionCode() contains invalid char: %c", c)
			}
		}
		if NormalizeCode(code) != code {
			t.Errorf("NormalizeCode(%q) changed a generated code", code)
		}

		if seen[code] {
			t.Errorf("GenerateSessionCode() produced duplicate code: %s", code)
		}
		seen[code] = true
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123", "ABC123"},
		{"  AbC123 ", "ABC123"},
		{"ABC123", "ABC123"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "hunter22" {
		t.Error("HashPassword() returned the plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("not-a-hash", "hunter22") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	claims := NewClaims("user-1", "alice", "admin", now.Add(time.Hour))

	token, err := IssueToken(claims, "secret")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	// header.payload.signature
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("IssueToken() = %q, want 3 segments", token)
	}

	got, err := ParseToken(token, "secret", now)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if got.UserID != "user-1" || got.Username != "alice" || got.Role != "admin" {
		t.Errorf("ParseToken() = %+v, want %+v", got, claims)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Errorf("ParseToken() expiry = %v, want %v", got.ExpiresAt, now.Add(time.Hour))
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to build HS512 token: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		now     time.Time
		wantErr error
	}{
		{"wrong secret", token, "other-secret", now, ErrInvalidToken},
		{"empty token", "", "secret", now, ErrInvalidToken},
		{"missing signature", strings.Join(strings.Split(token, ".")[:2], "."), "secret", now, ErrInvalidToken},
		{"tampered", "x" + token, "secret", now, ErrInvalidToken},
		{"unsigned", none, "secret", now, ErrInvalidToken},
		{"other algorithm", hs512, "secret", now, ErrInvalidToken},
		{"expired", token, "secret", now.Add(2 * time.Hour), ErrTokenExpired},
		{"at expiry", token, "secret", now.Add(time.Hour), ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret, tt.now)
			if err != tt.wantErr {
				t.Errorf("ParseToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseToken_NoExpiry(t *testing.T) {
	token, err := IssueToken(NewClaims("u", "", "user", time.Time{}), "secret")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	if _, err := ParseToken(token, "secret", time.Now().Add(24*365*time.Hour)); err != nil {
		t.Errorf("ParseToken() error = %v for token without expiry", err)
	}
}

// Benchmark tests
func BenchmarkGenerateID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateID(16)
	}
}

func BenchmarkGenerateSessionCode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateSessionCode()
	}
}

func BenchmarkParseToken(b *testing.B) {
	token, _ := IssueToken(NewClaims("u", "", "admin", time.Time{}), "secret")
	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseToken(token, "secret", now)
	}
}
