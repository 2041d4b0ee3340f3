package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tmckay/tripplanner/client/internal/domain"
)

// Claims is the payload of the bearer credential issued by the trip API.
// The identity lives under the "user" claim; expiry is the standard "exp".
type Claims struct {
	User domain.User `json:"user"`
	jwt.RegisteredClaims
}

// Session holds the current identity decoded from the bearer credential.
//
// The credential is decoded without signature verification: the client holds
// no key, and the server re-validates the token on every call anyway. Expiry
// is checked once, at Initialize, not on every IsAuthenticated call. A token
// that expires mid-process surfaces as a 401 from the server.
type Session struct {
	store *Store
	now   func() time.Time

	mu     sync.RWMutex
	ready  bool
	token  string
	user   domain.User
	expiry time.Time
}

// New constructs a Session backed by the given Store. The session is not
// usable until Initialize has run.
func New(store *Store) *Session {
	return &Session{store: store, now: time.Now}
}

// Initialize loads the persisted credential, if any, and decodes it. A token
// that fails to decode or has expired is discarded from durable storage and
// the session is left empty. The session always ends up ready, whether or not
// a valid credential was found; an error is returned only for storage failures.
func (s *Session) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.ready = true }()

	token, ok, err := s.store.Get(KeyAuthToken)
	if err != nil {
		return fmt.Errorf("session.Session.Initialize: %w", err)
	}
	if !ok {
		return nil
	}

	claims, err := decode(token, s.now())
	if err != nil {
		// Stale or garbage credential: clear it and start logged out.
		if derr := s.store.Delete(KeyAuthToken); derr != nil {
			return fmt.Errorf("session.Session.Initialize: %w", derr)
		}
		return nil
	}

	s.token = token
	s.user = claims.User
	if claims.ExpiresAt != nil {
		s.expiry = claims.ExpiresAt.Time
	}
	return nil
}

// Login decodes the credential, persists it, and replaces the in-memory
// identity unconditionally (no merge with any previous session).
func (s *Session) Login(token string) error {
	claims, err := decode(token, s.now())
	if err != nil {
		return fmt.Errorf("session.Session.Login: %w", err)
	}

	if err := s.store.Set(KeyAuthToken, token); err != nil {
		return fmt.Errorf("session.Session.Login: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.token = token
	s.user = claims.User
	s.expiry = time.Time{}
	if claims.ExpiresAt != nil {
		s.expiry = claims.ExpiresAt.Time
	}
	return nil
}

// Logout clears durable storage and in-memory state. Idempotent.
func (s *Session) Logout() error {
	if err := s.store.Delete(KeyAuthToken); err != nil {
		return fmt.Errorf("session.Session.Logout: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = domain.User{}
	s.expiry = time.Time{}
	return nil
}

// Ready reports whether Initialize has completed. Gated operations must not
// run while the session is uninitialized.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// IsAuthenticated reports whether a usable credential is present. True iff
// the session is ready and an identity was decoded.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready && s.user.ID != ""
}

// Token returns the raw bearer credential for use on API calls.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// User returns the identity decoded from the credential.
func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user.ID != ""
}

// decode parses the token without signature verification and rejects it when
// the "exp" claim is in the past. A token without "exp" never expires.
func decode(token string, now time.Time) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("decode credential: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(now) {
		return Claims{}, fmt.Errorf("credential expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return claims, nil
}
