package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("longenough1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("unexpected hash prefix: %s", hash)
	}
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need rehash")
	}

	other, _ := HashPassword("longenough1")
	if other == hash {
		t.Error("two hashes of the same password must differ by salt")
	}
}

func TestCheckPassword_Argon2(t *testing.T) {
	hash, err := HashPassword("longenough1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct", "longenough1", true},
		{"wrong", "longenough2", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := CheckPassword(tt.password, hash)
			if err != nil {
				t.Fatalf("CheckPassword error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, ok, tt.want)
			}
		})
	}
}

func TestCheckPassword_LegacyBcrypt(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	hash := string(raw)

	ok, err := CheckPassword("changeme", hash)
	if err != nil || !ok {
		t.Fatalf("CheckPassword(correct) = %v, %v", ok, err)
	}
	ok, err = CheckPassword("nope", hash)
	if err != nil || ok {
		t.Fatalf("CheckPassword(wrong) = %v, %v", ok, err)
	}
	if !NeedsRehash(hash) {
		t.Error("bcrypt hash should need rehash")
	}
}

func TestCheckPassword_Unsupported(t *testing.T) {
	_, err := CheckPassword("x", "plaintext")
	if !errors.Is(err, ErrUnsupportedHash) {
		t.Errorf("err = %v, want ErrUnsupportedHash", err)
	}
}

func TestNeedsRehash_OldParameters(t *testing.T) {
	old := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"
	if !NeedsRehash(old) {
		t.Error("hash with old parameters should need rehash")
	}
	if !NeedsRehash("garbage") {
		t.Error("garbage should need rehash")
	}
}

func TestCheckDummy(t *testing.T) {
	if CheckDummy("innolab-dummy-password") {
		t.Error("CheckDummy must always report false")
	}
}
