package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/idgate/pkg/jwtx"
	"github.com/aussiebroadwan/idgate/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token and derives the request's
// authority set: the configured defaults unioned with the token's realm
// roles. Subject, authorities and full claims land in the request context.
func AuthnMiddleware(v jwtx.Verifier, defaultAuthorities []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			authorities := jwtx.MapAuthorities(defaultAuthorities, claims)

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims, authorities)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims, authorities []string) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyAuthorities, authorities)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
