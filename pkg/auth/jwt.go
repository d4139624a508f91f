// Package auth issues and validates JWT access/refresh tokens, hashes
// passwords and verifies Google ID tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reflaxess123/obedi/config"
)

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrWrongTokenType is returned when a refresh token is presented where an
// access token is expected, or the other way round.
var ErrWrongTokenType = errors.New("auth: wrong token type")

// Claims holds the typed JWT payload. The user id travels in "sub".
type Claims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("auth: invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// Tokens signs and validates HS256 tokens with one secret.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens creates a signer with explicit lifetimes.
func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// NewTokensFromConfig reads JWT_SECRET, JWT_EXPIRES_IN and
// JWT_REFRESH_EXPIRES_IN.
func NewTokensFromConfig() *Tokens {
	return NewTokens(config.JWTSecret(), config.AccessTokenTTL(), config.RefreshTokenTTL())
}

// RefreshTTL is the lifetime of refresh tokens, used for the cookie max-age.
func (t *Tokens) RefreshTTL() time.Duration { return t.refreshTTL }

// Access creates a short-lived token for API calls.
func (t *Tokens) Access(userID uint, email string) (string, error) {
	return t.sign(userID, email, TypeAccess, t.accessTTL)
}

// Refresh creates a long-lived token used only to mint new access tokens.
func (t *Tokens) Refresh(userID uint) (string, error) {
	return t.sign(userID, "", TypeRefresh, t.refreshTTL)
}

func (t *Tokens) sign(userID uint, email, typ string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses raw, checks signature and expiry, and requires the given
// token type.
func (t *Tokens) Validate(raw, typ string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
