package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tillpoint/tillpoint/internal/shared"
)

// Claims is the JWT payload carried by every bearer token.
type Claims struct {
	ProfileID int64  `json:"profile_id"`
	UserRegNo int64  `json:"user_reg_no"`
	Role      string `json:"role"`
	IsOwner   bool   `json:"is_owner"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies bearer tokens with a shared HMAC secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens constructs a token issuer/verifier.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the authenticated account.
func (t *Tokens) Issue(acct *Account, now time.Time) (string, error) {
	if acct == nil {
		return "", errors.New("auth: account required")
	}
	claims := Claims{
		ProfileID: acct.ProfileID,
		UserRegNo: acct.UserRegNo,
		Role:      acct.Role,
		IsOwner:   acct.IsOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates a bearer token, returning the principal it
// carries.
func (t *Tokens) Verify(tokenString string) (*shared.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ProfileID == 0 {
		return nil, errors.New("auth: invalid token claims")
	}
	return &shared.Principal{
		ProfileID: claims.ProfileID,
		UserRegNo: claims.UserRegNo,
		Role:      shared.Role(claims.Role),
		IsOwner:   claims.IsOwner,
	}, nil
}
