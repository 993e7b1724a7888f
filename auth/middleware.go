package auth

import (
	"context"
	"net/http"
)

type sessionKey struct{}

// RequireSession rejects requests without a valid session cookie.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(SessionCookie); err == nil {
			token = c.Value
		}
		sess, err := h.store.Authenticated(r.Context(), token)
		if err != nil {
			h.fail(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

// SessionFrom returns the session RequireSession attached to r.
func SessionFrom(r *http.Request) *Session {
	sess, _ := r.Context().Value(sessionKey{}).(*Session)
	if sess == nil {
		return &Session{}
	}
	return sess
}
