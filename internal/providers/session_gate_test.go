package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvd/internal/structures"
)

func gateConf() *structures.Config {
	return &structures.Config{
		Auth: structures.AuthConfig{
			Secret:         "test-secret",
			TokenTTL:       7 * 24 * time.Hour,
			Users:          map[string]string{"alice": "wonder"},
			PublicPrefixes: []string{"/static/", "/favicon.ico", "/login", "/api/login", "/api/phonecode/"},
			LoginPath:      "/login",
		},
	}
}

func newGate(t *testing.T) (http.Handler, AuthProviderInterface) {
	t.Helper()
	conf := gateConf()
	auth := NewAuthProvider(conf)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if username, ok := UserFromContext(r.Context()); ok {
			w.Header().Set("X-User", username)
		}
		w.WriteHeader(http.StatusOK)
	})
	return SessionGate(conf, auth, next), auth
}

func TestSessionGate_PublicPathsPassThrough(t *testing.T) {
	gate, _ := newGate(t)

	for _, path := range []string{"/static/app.js", "/favicon.ico", "/login", "/api/login", "/api/phonecode/12345"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		gate.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestSessionGate_MissingCookieRedirects(t *testing.T) {
	gate, _ := newGate(t)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestSessionGate_InvalidTokenRedirects(t *testing.T) {
	gate, _ := newGate(t)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "garbage"})
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestSessionGate_ValidTokenAdmitsAndAttachesIdentity(t *testing.T) {
	gate, auth := newGate(t)
	token, err := auth.Login("alice", "wonder")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", rr.Header().Get("X-User"))
}

func TestSessionGate_ExpiredTokenRedirects(t *testing.T) {
	conf := gateConf()
	authProvider := NewAuthProvider(conf).(*AuthProvider)
	authProvider.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, err := authProvider.Login("alice", "wonder")
	require.NoError(t, err)
	authProvider.now = time.Now

	gate := SessionGate(conf, authProvider, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
}
