package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyAuthority the caller must hold at least one of the listed authorities.
func RequireAnyAuthority(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, a := range required {
		want[a] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := AuthoritiesFromContext(r.Context())

			for _, a := range have {
				if _, ok := want[a]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthorityError(w, required...)
		})
	}
}

// RequireAllAuthorities the caller must hold every authority listed.
func RequireAllAuthorities(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := make(map[string]struct{})
			for _, a := range AuthoritiesFromContext(r.Context()) {
				have[a] = struct{}{}
			}

			for _, req := range required {
				if _, ok := have[req]; !ok {
					writeAuthorityError(w, required...)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthorityError(w http.ResponseWriter, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteProblem(w, http.StatusForbidden, "Access Denied",
		"the token does not carry the required authorities")
}
