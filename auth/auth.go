// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// SessionCodeLength is the number of characters in a session join code
const SessionCodeLength = 6

// Case-insensitive alphabet: 36^6 ≈ 2.2 billion codes
const sessionCodeChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// bcrypt work factor
const passwordCost = 10

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSessionCode creates a short, human-typeable join code
// Characters are drawn uniformly from 0-9A-Z using rejection sampling
func GenerateSessionCode() (string, error) {
	// Largest multiple of 36 that fits in a byte
	const limit = 256 - 256%len(sessionCodeChars)

	code := make([]byte, 0, SessionCodeLength)
	buf := make([]byte, SessionCodeLength*2)
	for len(code) < SessionCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate session code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, sessionCodeChars[int(b)%len(sessionCodeChars)])
			if len(code) == SessionCodeLength {
				break
			}
		}
	}
	return string(code), nil
}

// NormalizeCode canonicalizes a user-typed session code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HashPassword returns a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims identify the bearer of a token
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NewClaims builds claims that expire at expiresAt. A zero expiresAt
// issues a token that never expires.
func NewClaims(userID, username, role string, expiresAt time.Time) Claims {
	c := Claims{UserID: userID, Username: username, Role: role}
	if !expiresAt.IsZero() {
		c.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	return c
}

// IssueToken signs the claims as an HS256 JWT
func IssueToken(claims Claims, secret string) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies the signature and expiry of a token issued by IssueToken
func ParseToken(token, secret string, now time.Time) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	default:
		return Claims{}, ErrInvalidToken
	}
}
