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

package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenauth/tenauth/internal/id"
	"github.com/tenauth/tenauth/internal/token"
)

const testSecret = "test-signing-secret"

// TestPurpose: Validates that a freshly issued token verifies and returns the exact claims it was minted with.
// Scope: Unit Test
// Security: Claim integrity across issue/verify
// Expected: Claims decode to the same email, tenant_id, user_id and role.
func TestToken_IssueVerify_RoundTrip(t *testing.T) {
	svc, err := token.NewService(testSecret, 30*time.Minute)
	require.NoError(t, err)

	tenantID := id.NewUUIDv7()
	userID := id.NewUUIDv7()

	signed, err := svc.Issue("admin@acme.com", tenantID, userID, "admin")
	require.NoError(t, err)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)

	assert.Equal(t, "admin@acme.com", claims.Email())
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

// TestPurpose: Validates that a token whose expiry has passed is rejected even though its signature is valid.
// Scope: Unit Test
// Security: Time-bounded credentials
// Expected: Verify returns ErrInvalidToken for an expired token.
func TestToken_Verify_ExpiredToken_IsInvalid(t *testing.T) {
	svc, err := token.NewService(testSecret, 30*time.Minute)
	require.NoError(t, err)

	// Sign an already-expired token with the same secret.
	now := time.Now()
	expired := token.Claims{
		TenantID: "tenant-a",
		UserID:   "user-1",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user@acme.com",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestPurpose: Validates that tampering with the signature segment invalidates the token.
// Scope: Unit Test
// Security: Forgery resistance
// Expected: A token with one byte flipped in its signature fails with ErrInvalidToken.
func TestToken_Verify_TamperedSignature_IsInvalid(t *testing.T) {
	svc, err := token.NewService(testSecret, 30*time.Minute)
	require.NoError(t, err)

	signed, err := svc.Issue("user@acme.com", "tenant-a", "user-1", "user")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestPurpose: Validates that a token signed with a different secret is rejected.
// Scope: Unit Test
// Security: Secret binding
// Expected: Verify fails with ErrInvalidToken.
func TestToken_Verify_WrongSecret_IsInvalid(t *testing.T) {
	issuer, err := token.NewService("other-secret", 30*time.Minute)
	require.NoError(t, err)
	verifier, err := token.NewService(testSecret, 30*time.Minute)
	require.NoError(t, err)

	signed, err := issuer.Issue("user@acme.com", "tenant-a", "user-1", "user")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestPurpose: Validates that a well-signed token missing required claims is rejected.
// Scope: Unit Test
// Security: Claim completeness; a token without tenant scope must never authorize anything.
// Expected: Verify fails with ErrInvalidToken when tenant_id, user_id or subject is absent.
func TestToken_Verify_MissingRequiredClaims_IsInvalid(t *testing.T) {
	svc, err := token.NewService(testSecret, 30*time.Minute)
	require.NoError(t, err)

	cases := map[string]token.Claims{
		"missing tenant_id": {
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user@acme.com",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		},
		"missing user_id": {
			TenantID: "tenant-a",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user@acme.com",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		},
		"missing subject": {
			TenantID: "tenant-a",
			UserID:   "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		},
	}

	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			require.NoError(t, err)

			_, err = svc.Verify(signed)
			assert.ErrorIs(t, err, token.ErrInvalidToken)
		})
	}
}

// TestPurpose: Validates that tokens signed with an unexpected algorithm are rejected even with the right key.
// Scope: Unit Test
// Security: Algorithm confusion resistance
// Expected: An HS512-signed token fails verification.
func TestToken_Verify_UnexpectedAlgorithm_IsInvalid(t *testing.T) {
	svc, err := token.NewService(testSecret, 30*time.Minute)
	require.NoError(t, err)

	claims := token.Claims{
		TenantID: "tenant-a",
		UserID:   "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user@acme.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestPurpose: Validates that garbage input is rejected rather than panicking or succeeding.
// Scope: Unit Test
// Expected: ErrInvalidToken for malformed strings.
func TestToken_Verify_Malformed_IsInvalid(t *testing.T) {
	svc, err := token.NewService(testSecret, 30*time.Minute)
	require.NoError(t, err)

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, token.ErrInvalidToken, "input %q", raw)
	}
}

// TestPurpose: Validates that the service refuses to start without a signing secret.
// Scope: Unit Test
// Security: Misconfiguration must fail at startup, not at request time.
// Expected: NewService returns an error for an empty secret.
func TestToken_NewService_EmptySecret_Fails(t *testing.T) {
	_, err := token.NewService("", 30*time.Minute)
	assert.Error(t, err)
}
