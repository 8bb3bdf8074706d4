package httpadapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

type claimsContextKey struct{}

func claimsFromContext(ctx context.Context) *domain.AuthClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(claimsContextKey{}).(*domain.AuthClaims)
	return claims
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// optionalAuth attaches claims when a bearer token is supplied. A token
// that fails verification is rejected rather than downgraded to anonymous.
func (rt *Router) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next(w, r)
			return
		}

		claims, err := rt.auth.Verify(r.Context(), token)
		if err != nil {
			status := mapErrorToHTTPStatus(err)
			writeError(w, status, publicErrorMessage(err, status), err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next(w, r.WithContext(ctx))
	}
}

func (rt *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authorization token is required", nil)
			return
		}

		claims, err := rt.auth.Verify(r.Context(), token)
		if err != nil {
			status := mapErrorToHTTPStatus(err)
			writeError(w, status, publicErrorMessage(err, status), err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next(w, r.WithContext(ctx))
	}
}
