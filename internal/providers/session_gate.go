package providers

import (
	"context"
	"net/http"
	"strings"

	"tvd/internal/structures"
)

type contextKey string

const contextKeyUser contextKey = "user"

const TokenCookieName = "token"

// SessionGate admits or redirects every request reaching the gated surface.
// Paths matching a public prefix pass straight through; everything else
// needs a valid session cookie. Rejections redirect to the login page since
// the surface is browser-oriented.
func SessionGate(conf *structures.Config, auth AuthProviderInterface, next http.Handler) http.Handler {
	prefixes := conf.Auth.PublicPrefixes
	loginPath := conf.Auth.LoginPath

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range prefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		cookie, err := r.Cookie(TokenCookieName)
		if err != nil {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}

		username, err := auth.Verify(cookie.Value)
		if err != nil {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the identity a passed gate attached to the
// request.
func UserFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(contextKeyUser).(string)
	return username, ok
}
