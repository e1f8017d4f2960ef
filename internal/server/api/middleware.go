package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/server/policy"
	"github.com/socialride/identity/internal/server/token"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// bearerToken extracts the bearer credential from the Authorization header.
// An empty string means the header was absent or malformed.
func bearerToken(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeader)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(h, common.BearerPrefix)
}

// require gates a route behind the named policy. Verified claims are stashed
// in the request context for the handler.
func (s *Server) require(p policy.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.policies.Evaluate(p, bearerToken(r))
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeAuthenticationGeneric, "authorization required")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims stashed by require.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	return claims, ok
}
