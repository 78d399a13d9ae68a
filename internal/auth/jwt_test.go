package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nearmex/internal/apperr"
	"nearmex/internal/user"
)

const testSecret = "my_test_jwt_secret"

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	tokenString, err := issuer.Issue(42, user.RoleUser)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if tokenString == "" {
		t.Fatalf("empty token string")
	}

	id, err := issuer.Verify(tokenString)
	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}
	if id.UserID != 42 {
		t.Errorf("expected userId=42, got %d", id.UserID)
	}
	if id.Role != user.RoleUser {
		t.Errorf("expected role=user, got %s", id.Role)
	}
}

func TestIssueRoundTripAdmin(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 0)
	tok, err := issuer.Issue(7, user.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := issuer.Verify(tok)
	if err != nil || id.UserID != 7 || !id.IsAdmin() {
		t.Fatalf("unexpected identity %+v (%v)", id, err)
	}
}

func TestIssueEmbedsSevenDayExpiry(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 0)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	tok, err := issuer.Issue(1, user.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Errorf("expected 7 day lifetime, got %v", got)
	}
}

func TestVerify_Expired(t *testing.T) {
	past := NewTokenIssuer(testSecret, 7*24*time.Hour)
	past.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	tok, err := past.Issue(5, user.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = NewTokenIssuer(testSecret, time.Hour).Verify(tok)
	if !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_InvalidToken(t *testing.T) {
	_, err := NewTokenIssuer(testSecret, time.Hour).Verify("this.is.not.a.valid.jwt")
	if !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer(testSecret, time.Hour).Issue(99, user.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenIssuer("totally_wrong_secret", time.Hour).Verify(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	userTok, _ := issuer.Issue(3, user.RoleUser)
	adminTok, _ := issuer.Issue(3, user.RoleAdmin)

	// header and signature of one token, claims of another
	u := strings.Split(userTok, ".")
	a := strings.Split(adminTok, ".")
	forged := u[0] + "." + a[1] + "." + u[2]
	if _, err := issuer.Verify(forged); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expected forged token to be rejected, got %v", err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   string(user.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := NewTokenIssuer(testSecret, time.Hour).Verify(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expected alg=none token to be rejected, got %v", err)
	}
}

func TestVerify_RejectsUnknownRole(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	tok, _ := issuer.Issue(10, user.Role("superuser"))
	if _, err := issuer.Verify(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expected unknown role to be rejected, got %v", err)
	}
}
