// Package auth derives role claims from the session token and gates rendered
// controls on them. Decoding is deliberately non-verifying: the backend signs
// and validates tokens, the client only reads claims for UI gating. Anything
// malformed degrades to an empty role set, never an error.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/SamuelAraag/pr-manager-cloud/internal/ui"
)

// Claims is the decoded token payload.
type Claims map[string]any

// roleClaimKeys is probed in order; the first present key wins. The URI form
// is how .NET backends name the role claim.
var roleClaimKeys = []string{
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
	"role",
	"roles",
	"Role",
	"Roles",
}

// DecodeToken splits the bearer token, base64-decodes the middle segment and
// parses it as JSON. Returns nil on any malformation.
func DecodeToken(token string) Claims {
	if token == "" {
		return nil
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(parts[1], "="))
		if err != nil {
			return nil
		}
	}
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil
	}
	return claims
}

// RolesFromClaims extracts the role list. A bare string claim is wrapped into
// a single-element list; absent claims yield an empty list.
func RolesFromClaims(claims Claims) []string {
	if claims == nil {
		return nil
	}
	for _, key := range roleClaimKeys {
		v, ok := claims[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			return []string{val}
		case []any:
			roles := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok {
					roles = append(roles, s)
				}
			}
			return roles
		case []string:
			return val
		}
		return nil
	}
	return nil
}

// Store answers role queries for the current session. The token is read
// through a source function so roles are always recomputed from the live
// session, never cached across logins.
type Store struct {
	tokenSource func() string
}

func NewStore(tokenSource func() string) *Store {
	return &Store{tokenSource: tokenSource}
}

// Roles returns the current role list; empty when no or a malformed token is
// held.
func (s *Store) Roles() []string {
	return RolesFromClaims(DecodeToken(s.tokenSource()))
}

func (s *Store) HasRole(role string) bool {
	for _, r := range s.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

func (s *Store) HasAnyRole(roles []string) bool {
	current := s.Roles()
	for _, want := range roles {
		for _, have := range current {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (s *Store) IsAdmin() bool     { return s.HasRole(RoleAdmin) }
func (s *Store) IsQA() bool        { return s.HasRole(RoleQA) }
func (s *Store) IsDeveloper() bool { return s.HasRole(RoleDev) }

// Can reports whether the current user holds any of the required roles.
func (s *Store) Can(requiredRoles []string) bool {
	return s.HasAnyRole(requiredRoles)
}

// ApplyVisibility runs the role pass over a rendered tree: nodes tagged with
// roles stay visible only when the tag intersects the user's roles. Must run
// after every render, since rendering rebuilds the tree.
func (s *Store) ApplyVisibility(root *ui.Node) {
	roles := s.Roles()
	ui.Walk(root, func(n *ui.Node) {
		if len(n.Roles) == 0 {
			return
		}
		n.Hidden = !intersects(n.Roles, roles)
	})
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
