package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the visitor's session identifier.
const SessionCookie = "pesca_session"

type sessionIDKey struct{}

// sessionID extracts the session identifier from the request context.
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// withSession ensures every request carries a session identifier: an
// existing valid cookie is reused, otherwise a fresh ID is issued and set
// on the response.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = h.sessions.NewID()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
