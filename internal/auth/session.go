package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const SessionCookieName = "coach_session"

var ErrInvalidPassword = errors.New("invalid coach password")

// SessionManager issues coach sessions in exchange for the shared coach
// password. Sessions live in memory and are lost on restart.
type SessionManager struct {
	mu       sync.Mutex
	password []byte
	ttl      time.Duration
	sessions map[string]time.Time
	now      func() time.Time
}

// NewSessionManager creates a new session manager.
func NewSessionManager(password string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		password: []byte(password),
		ttl:      ttl,
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Login checks password and, on success, creates a session and sets the cookie.
func (sm *SessionManager) Login(w http.ResponseWriter, password string) (string, time.Time, error) {
	if len(sm.password) == 0 || subtle.ConstantTimeCompare([]byte(password), sm.password) != 1 {
		log.Warn("Rejected coach login")
		return "", time.Time{}, ErrInvalidPassword
	}

	token := uuid.NewString()
	expires := sm.now().Add(sm.ttl)

	sm.mu.Lock()
	sm.sweep()
	sm.sessions[token] = expires
	sm.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	log.Info("Coach session created", "expires", expires)
	return token, expires, nil
}

// Logout removes the current session, if any, and clears the cookie.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) {
	if token := Token(r); token != "" {
		sm.mu.Lock()
		delete(sm.sessions, token)
		sm.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Valid reports whether token names a live session.
func (sm *SessionManager) Valid(token string) bool {
	if token == "" {
		return false
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	expires, ok := sm.sessions[token]
	if !ok {
		return false
	}
	if !sm.now().Before(expires) {
		delete(sm.sessions, token)
		return false
	}
	return true
}

// RequireCoach rejects requests without a live coach session.
func (sm *SessionManager) RequireCoach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sm.Valid(Token(r)) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Token extracts the session token from the Authorization header or the
// session cookie.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// sweep drops expired sessions. Callers hold mu.
func (sm *SessionManager) sweep() {
	now := sm.now()
	for token, expires := range sm.sessions {
		if !now.Before(expires) {
			delete(sm.sessions, token)
		}
	}
}
