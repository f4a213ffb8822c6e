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

package identity

import (
	"strings"
	"testing"
)

func newFastHasher() *PasswordHasher {
	return NewPasswordHasher(1024, 1, 1, 16, 32)
}

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher := newFastHasher()

	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Errorf("unexpected encoding prefix: %q", encoded)
	}

	ok, err := hasher.Verify("correct horse battery staple", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = hasher.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

// Two hashes of the same password must differ: each carries a fresh salt.
func TestHashSaltIsFresh(t *testing.T) {
	hasher := newFastHasher()

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Error("identical encodings for two hashes of the same password")
	}

	// Both still verify.
	for _, encoded := range []string{first, second} {
		ok, err := hasher.Verify("same-password", encoded)
		if err != nil || !ok {
			t.Errorf("verify %q: ok=%v err=%v", encoded, ok, err)
		}
	}
}

// Verification reads cost parameters from the encoding, so hashes
// produced under old parameters keep verifying after a cost bump.
func TestVerifyHonorsEncodedParameters(t *testing.T) {
	old := NewPasswordHasher(1024, 1, 1, 16, 32)
	encoded, err := old.Hash("pw123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	current := NewPasswordHasher(2048, 2, 2, 16, 32)
	ok, err := current.Verify("pw123456", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("hash under previous parameters rejected")
	}
}

func TestVerifyMalformedEncoding(t *testing.T) {
	hasher := newFastHasher()

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1024,t=1,p=1$salt", // missing hash section
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
	} {
		ok, err := hasher.Verify("pw123456", encoded)
		if ok {
			t.Errorf("malformed encoding %q verified", encoded)
		}
		if err == nil {
			t.Errorf("malformed encoding %q produced no error", encoded)
		}
	}
}
