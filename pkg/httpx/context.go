package httpx

import (
	"context"

	"github.com/aussiebroadwan/idgate/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubject     ctxKey = "subject"
	CtxKeyAuthorities ctxKey = "authorities"
	CtxKeyClaims      ctxKey = "claims"
)

// SubjectFromContext returns the authenticated token's subject, if any.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// AuthoritiesFromContext returns the authority set derived from the token.
func AuthoritiesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyAuthorities).([]string); ok {
		return v
	}
	return nil
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}
