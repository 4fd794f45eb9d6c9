package auth

import (
	"errors"
	"testing"
	"time"

	"auction-arena/internal/store"
)

func TestTokenRoundtrip(t *testing.T) {
	svc := NewService(nil, "test-secret", time.Hour)
	u := &store.User{ID: "01TESTUSER", Email: "op@example.com"}

	token, exp, err := svc.mintToken(u)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if time.Until(exp) < 55*time.Minute {
		t.Fatalf("expiry too soon: %v", exp)
	}

	p, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.UserID != u.ID || p.Email != u.Email {
		t.Fatalf("principal = %+v", p)
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	minter := NewService(nil, "secret-a", time.Hour)
	verifier := NewService(nil, "secret-b", time.Hour)

	token, _, err := minter.mintToken(&store.User{ID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := verifier.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc := NewService(nil, "test-secret", time.Hour)
	if _, err := svc.Authenticate("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatal("expected password to verify")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatal("expected wrong password to fail")
	}
}
