package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/hannes/sentimento/src/backend/config"
)

const sessionKeyID = "session_id"

type sessionContextKey struct{}

// newSessionStore creates the cookie store. An empty secret gets a random
// key, so sessions do not survive a restart.
func newSessionStore(cfg config.SessionConfig) (*sessions.CookieStore, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return nil, errors.New("failed to generate session secret")
		}
	}

	maxAgeDays := cfg.MaxAgeDays
	if maxAgeDays <= 0 {
		maxAgeDays = 1
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * maxAgeDays,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

func (s *Server) cookieName() string {
	if s.config.Session.CookieName != "" {
		return s.config.Session.CookieName
	}
	return "sentimento_session"
}

// sessionID returns the caller's session id, issuing a new one when the
// request carries no valid session cookie
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	// A cookie that fails to decode yields a fresh session
	session, _ := s.sessionStore.Get(r, s.cookieName())

	if id, ok := session.Values[sessionKeyID].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[sessionKeyID] = id
	if err := session.Save(r, w); err != nil {
		return id, err
	}
	return id, nil
}

func withSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, id)
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey{}).(string)
	return id
}
