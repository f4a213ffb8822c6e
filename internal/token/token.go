// Copyright 2026 The Tenauth Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package token issues and verifies the bearer tokens that carry tenant
// scope through the system.
//
// Tokens are stateless HMAC-SHA256 JWTs signed with a process-wide
// secret loaded once at startup. Nothing is persisted server-side: a
// token is valid until its expiry and cannot be revoked earlier. Verify
// is the single authorization gate; every protected operation derives
// its tenant from the claims it returns and never from request input.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = 30 * time.Minute

// ErrInvalidToken covers every verification failure: bad signature,
// wrong algorithm, expiry passed, malformed structure, or missing
// required claims. Callers get no finer detail.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of a token. Subject carries the user's
// email.
type Claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Email returns the subject claim.
func (c *Claims) Email() string {
	return c.Subject
}

// Service signs and verifies tokens with a shared symmetric secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. The secret is required; running
// without one would make every token forgeable.
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue mints a signed token binding the principal to its tenant. The
// expiry is issue time plus the configured TTL.
func (s *Service) Issue(email, tenantID, userID, role string) (string, error) {
	now := time.Now()

	claims := Claims{
		TenantID: tenantID,
		UserID:   userID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of a presented token and
// returns its claims. The subject, tenant and user claims must all be
// present; a token missing any of them is invalid even with a good
// signature.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.TenantID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
