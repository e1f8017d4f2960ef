// Package policy classifies a bearer token's verified claim set against
// named policies before a protected operation is allowed to run.
package policy

import (
	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/server/token"
)

// Policy names a predicate over a verified claim set.
type Policy string

const (
	// Authenticated requires a valid signature and, when an expiry claim is
	// present, that the token has not expired.
	Authenticated Policy = "authenticated"

	// AdminOnly requires Authenticated plus the admin marker claim.
	AdminOnly Policy = "admin-only"

	// RefreshOnly requires a valid signature and the refresh marker. The
	// expiry check is skipped: refresh tokens carry no expiry claim, and a
	// token that carries one is not a refresh token.
	RefreshOnly Policy = "refresh-only"
)

// Evaluator applies policies to presented bearer tokens. Structure and
// signature are always checked first; claim-shape requirements come second
// and surface as common.ErrPolicyDenied.
type Evaluator struct {
	verifier *token.Verifier
}

func NewEvaluator(v *token.Verifier) *Evaluator {
	return &Evaluator{verifier: v}
}

// Evaluate verifies tokenString and checks it against p. It returns the
// verified claims on success. Signature or structure failures yield
// common.ErrInvalidToken (or common.ErrTokenExpired), claim-shape failures
// common.ErrPolicyDenied; an unknown policy is always denied.
func (e *Evaluator) Evaluate(p Policy, tokenString string) (*token.Claims, error) {
	switch p {
	case Authenticated:
		return e.verifier.Parse(tokenString)

	case AdminOnly:
		claims, err := e.verifier.Parse(tokenString)
		if err != nil {
			return nil, err
		}
		if !claims.Admin {
			return nil, common.ErrPolicyDenied
		}
		return claims, nil

	case RefreshOnly:
		claims, err := e.verifier.ParseSignatureOnly(tokenString)
		if err != nil {
			return nil, err
		}
		if claims.Refresh == "" || claims.ExpiresAt != nil {
			return nil, common.ErrPolicyDenied
		}
		return claims, nil

	default:
		return nil, common.ErrPolicyDenied
	}
}
