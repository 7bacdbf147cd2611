package password

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("expected PHC format, got %s", hash)
	}

	if err := Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := Verify(hash, "wrong password"); !errors.Is(err, ErrMismatch) {
		t.Errorf("expected ErrMismatch, got %v", err)
	}
}

func TestHash_UniqueSalt(t *testing.T) {
	h1, _ := Hash("same password")
	h2, _ := Hash("same password")
	if h1 == h2 {
		t.Error("expected different hashes for same password")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	for _, h := range []string{"", "plainhash", "$bcrypt$whatever", "$argon2id$v=19$broken"} {
		if err := Verify(h, "pw"); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("hash %q: expected ErrInvalidHash, got %v", h, err)
		}
	}
}

func TestMatch(t *testing.T) {
	hash, _ := Hash("secret")
	if !Match(hash, "secret") {
		t.Error("expected match")
	}
	if Match(hash, "other") {
		t.Error("expected mismatch")
	}
}
