package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/zuschusspiloten/leadserver/internal/session"
)

type ctxKey string

const sessionKey ctxKey = "session"

// WithSession resolves the session cookie into a *session.Session and stores
// it in the request context. Requests without a cookie, or with an expired
// or unknown session ID, proceed with no session attached; handlers that
// need one start it themselves.
func WithSession(manager *session.Manager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			s := manager.Get(cookie.Value)
			if s == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the resolved session from the request context.
// Returns nil if no live session was attached.
func SessionFromContext(ctx context.Context) *session.Session {
	val := ctx.Value(sessionKey)
	if s, ok := val.(*session.Session); ok {
		return s
	}
	return nil
}

// RequireLogin redirects unauthenticated requests to the admin login page
// and halts further processing.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil || !s.LoggedIn {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the caller's IP address: the first X-Forwarded-For entry
// when it parses as an address, otherwise the connection's remote host, with
// "0.0.0.0" as the fallback for unparsable values.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) != nil {
		return host
	}
	return "0.0.0.0"
}
