package jwtx

import (
	"sort"
	"strings"
)

// RolePrefix marks authorities derived from provider roles, e.g. the realm
// role "admin" becomes the authority "ROLE_ADMIN".
const RolePrefix = "ROLE_"

// MapAuthorities converts a token's role claims into the authority set used
// by access-control checks. The defaults (whatever the verification layer
// already derived) are carried through unchanged and unioned with one
// authority per realm role, prefixed and upper-cased.
//
// The result is deduplicated and sorted, so the same claims always produce
// the same set regardless of input ordering. Absent or empty role claims
// simply contribute nothing.
//
// resource_access (per-client roles) is present on Claims but does not
// contribute authorities yet; client-role extraction can be added here
// without changing the realm-role behaviour.
func MapAuthorities(defaults []string, c Claims) []string {
	set := make(map[string]struct{}, len(defaults)+len(c.RealmAccess.Roles))

	for _, a := range defaults {
		if a = strings.TrimSpace(a); a != "" {
			set[a] = struct{}{}
		}
	}

	for _, role := range c.RealmAccess.Roles {
		if role = strings.TrimSpace(role); role != "" {
			set[RolePrefix+strings.ToUpper(role)] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// HasAuthority reports whether the given authority is in the set.
func HasAuthority(authorities []string, want string) bool {
	for _, a := range authorities {
		if a == want {
			return true
		}
	}
	return false
}
