package auth

import (
	"context"
	"testing"
	"time"

	"github.com/lromerof/comite-agua/internal/apperr"
)

type fakePINs struct {
	pin string
}

func (f fakePINs) VerifyPIN(_ context.Context, pin string) (bool, error) {
	return pin == f.pin, nil
}

func TestService_LoginAndVerify(t *testing.T) {
	svc := NewService(fakePINs{pin: "1234"}, "test-secret", time.Hour)
	ctx := context.Background()

	token, expires, err := svc.Login(ctx, "1234")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(expires) < 55*time.Minute {
		t.Fatalf("expected expiry about an hour out, got %s", expires)
	}

	if err := svc.Verify(token); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
}

func TestService_LoginWrongPIN(t *testing.T) {
	svc := NewService(fakePINs{pin: "1234"}, "test-secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "0000"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_VerifyRejectsForeignToken(t *testing.T) {
	issuer := NewService(fakePINs{pin: "1234"}, "secret-a", time.Hour)
	verifier := NewService(fakePINs{pin: "1234"}, "secret-b", time.Hour)

	token, _, err := issuer.Login(context.Background(), "1234")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := verifier.Verify(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestService_VerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService(fakePINs{pin: "1234"}, "test-secret", -time.Minute)

	token, _, err := svc.Login(context.Background(), "1234")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := svc.Verify(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
