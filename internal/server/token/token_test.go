package token

import (
	"errors"
	"testing"
	"time"

	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/server/models"
)

func newPair(t *testing.T, admins []string) (*Issuer, *Verifier) {
	t.Helper()
	iss, err := NewIssuer("super-secret", admins)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	ver, err := NewVerifier("super-secret")
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}
	return iss, ver
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	if _, err := NewIssuer("", nil); !errors.Is(err, common.ErrSigningFailure) {
		t.Fatalf("want ErrSigningFailure, got %v", err)
	}
	if _, err := NewVerifier(""); !errors.Is(err, common.ErrSigningFailure) {
		t.Fatalf("want ErrSigningFailure, got %v", err)
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	iss, ver := newPair(t, nil)

	s, err := iss.IssueAccessToken(&models.User{ID: "u-1"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := ver.Parse(s)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %q", claims.Subject)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("access token must carry an expiry claim")
	}
	if claims.Refresh != "" {
		t.Fatalf("access token must not carry the refresh marker")
	}
	if claims.Admin {
		t.Fatalf("unexpected admin claim")
	}
}

func TestAccessToken_Expired(t *testing.T) {
	iss, ver := newPair(t, nil)

	s, err := iss.IssueAccessToken(&models.User{ID: "u-1"}, -time.Second)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if _, err := ver.Parse(s); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestAccessToken_AdminAllowlist(t *testing.T) {
	iss, ver := newPair(t, []string{"admin-1"})

	s, err := iss.IssueAccessToken(&models.User{ID: "admin-1"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	claims, err := ver.Parse(s)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !claims.Admin {
		t.Fatalf("allowlisted subject must get the admin claim")
	}

	s, err = iss.IssueAccessToken(&models.User{ID: "someone-else"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	claims, err = ver.Parse(s)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Admin {
		t.Fatalf("non-allowlisted subject must not get the admin claim")
	}
}

func TestAccessToken_ExtraClaims(t *testing.T) {
	iss, ver := newPair(t, nil)

	s, err := iss.IssueAccessToken(&models.User{ID: "u-1"}, time.Hour, WithAdmin())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	claims, err := ver.Parse(s)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !claims.Admin {
		t.Fatalf("extra admin claim not applied")
	}
}

func TestRefreshToken_NoExpiry(t *testing.T) {
	iss, ver := newPair(t, nil)

	s, err := iss.IssueRefreshToken(&models.User{ID: "u-7"})
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	claims, err := ver.ParseSignatureOnly(s)
	if err != nil {
		t.Fatalf("ParseSignatureOnly error: %v", err)
	}
	if claims.Refresh != "u-7" || claims.Subject != "u-7" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("refresh token must not carry an expiry claim")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	iss, _ := newPair(t, nil)
	other, err := NewVerifier("different-secret")
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}

	s, err := iss.IssueAccessToken(&models.User{ID: "u-1"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := other.Parse(s); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
	if _, err := other.ParseSignatureOnly(s); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, ver := newPair(t, nil)
	if _, err := ver.Parse("not.a.jwt"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
