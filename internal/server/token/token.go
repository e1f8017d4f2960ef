// Package token mints and verifies the signed bearer credentials used as
// session tokens. Tokens are HS256 JWTs signed with a single process-wide
// secret; nothing is ever persisted.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/server/models"
)

// Claims is the claim set carried by both token kinds. A refresh token is
// distinguished solely by the Refresh marker and never carries an expiry;
// an access token always carries one.
type Claims struct {
	jwt.RegisteredClaims

	// Refresh holds the subject id again and marks the token as a refresh
	// token.
	Refresh string `json:"rfr,omitempty"`

	// Admin marks the subject as a recognized administrator.
	Admin bool `json:"adm,omitempty"`
}

// Extra is an additional claim applied to an access token at issuance.
type Extra func(*Claims)

// WithAdmin attaches the admin marker regardless of the allowlist.
func WithAdmin() Extra {
	return func(c *Claims) { c.Admin = true }
}

// Issuer mints signed tokens. The admin allowlist replaces the hardcoded
// bootstrap-admin username check of the legacy system: subjects on the list
// get the admin claim on their access tokens.
type Issuer struct {
	secret []byte
	admins map[string]struct{}
}

// NewIssuer builds an Issuer. An empty secret is a configuration error and
// must abort startup.
func NewIssuer(secret string, adminIDs []string) (*Issuer, error) {
	if secret == "" {
		return nil, common.ErrSigningFailure
	}
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Issuer{secret: []byte(secret), admins: admins}, nil
}

// IssueAccessToken mints an access token for the user with the given TTL.
func (i *Issuer) IssueAccessToken(user *models.User, ttl time.Duration, extra ...Extra) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if _, ok := i.admins[user.ID]; ok {
		claims.Admin = true
	}
	for _, e := range extra {
		e(&claims)
	}
	return i.sign(claims)
}

// IssueRefreshToken mints a long-lived refresh token for the user. It carries
// no expiry claim.
func (i *Issuer) IssueRefreshToken(user *models.User) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Refresh: user.ID,
	}
	return i.sign(claims)
}

func (i *Issuer) sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(i.secret)
	if err != nil {
		return "", common.ErrSigningFailure
	}
	return s, nil
}

// Verifier checks token signatures and extracts claims.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier sharing the issuer's secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, common.ErrSigningFailure
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, common.ErrInvalidToken
	}
	return v.secret, nil
}

// Parse verifies the signature and the temporal claims. Expired tokens yield
// common.ErrTokenExpired; every other failure collapses into
// common.ErrInvalidToken so callers learn nothing about token internals.
func (v *Verifier) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !t.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ParseSignatureOnly verifies the signature but skips temporal claim
// validation. Used for refresh tokens, which carry no expiry.
func (v *Verifier) ParseSignatureOnly(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	t, err := parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil || !t.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
