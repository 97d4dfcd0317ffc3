package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type userKey struct{}

type User struct {
	Name string
	Role string
}

type credential struct {
	password string
	role     string
}

// BasicAuth authenticates requests with HTTP Basic credentials loaded from
// configuration and attaches the matched user to the request context.
type BasicAuth struct {
	realm string
	users map[string]credential
}

// NewBasicAuth parses a comma separated list of "username:password:role"
// entries. A missing role defaults to "user".
func NewBasicAuth(realm, users string) (*BasicAuth, error) {
	parsed := make(map[string]credential)
	for _, entry := range strings.Split(users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid auth user entry %q", entry)
		}
		role := RoleUser
		if len(parts) == 3 && parts[2] != "" {
			role = parts[2]
		}
		parsed[parts[0]] = credential{password: parts[1], role: role}
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no auth users configured")
	}

	return &BasicAuth{realm: realm, users: parsed}, nil
}

// RequireUser admits any configured user.
func (a *BasicAuth) RequireUser(next http.Handler) http.Handler {
	return a.require(next, "")
}

// RequireAdmin admits only users with the admin role.
func (a *BasicAuth) RequireAdmin(next http.Handler) http.Handler {
	return a.require(next, RoleAdmin)
}

func (a *BasicAuth) require(next http.Handler, role string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, password, ok := r.BasicAuth()
		if !ok {
			a.unauthorized(w)
			return
		}

		cred, found := a.users[name]
		// Compare even on unknown users to keep timing uniform.
		expected := cred.password
		if !found {
			expected = ""
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 || !found {
			a.unauthorized(w)
			return
		}

		if role != "" && cred.role != role {
			http.Error(w, "admin privileges required", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, User{Name: name, Role: cred.role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *BasicAuth) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", a.realm))
	http.Error(w, "invalid credentials", http.StatusUnauthorized)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}
