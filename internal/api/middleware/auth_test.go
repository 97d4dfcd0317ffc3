package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(t *testing.T, wantUser, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUser, u.Name)
		assert.Equal(t, wantRole, u.Role)
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewBasicAuthParsing(t *testing.T) {
	_, err := NewBasicAuth("test", "admin:pw:admin,bob:pw2")
	require.NoError(t, err)

	_, err = NewBasicAuth("test", "")
	assert.Error(t, err)

	_, err = NewBasicAuth("test", "nocolon")
	assert.Error(t, err)
}

func TestRequireUser(t *testing.T) {
	auth, err := NewBasicAuth("test", "bob:pw:user")
	require.NoError(t, err)

	h := auth.RequireUser(okHandler(t, "bob", "user"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("bob", "pw")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("bob", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
}

func TestRequireUserUnknownUserWithEmptyPassword(t *testing.T) {
	auth, err := NewBasicAuth("test", "bob:pw:user")
	require.NoError(t, err)

	h := auth.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("mallory", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	auth, err := NewBasicAuth("test", "root:pw:admin,bob:pw:user")
	require.NoError(t, err)

	h := auth.RequireAdmin(okHandler(t, "root", "admin"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("root", "pw")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("bob", "pw")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleDefaultsToUser(t *testing.T) {
	auth, err := NewBasicAuth("test", "bob:pw")
	require.NoError(t, err)

	h := auth.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("bob", "pw")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
