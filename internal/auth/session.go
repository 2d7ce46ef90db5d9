// Package auth handles sessions and the external identity provider.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. The browser is sent to the provider's portal (/api/oauth/login)
//  2. The portal redirects back to /api/oauth/callback with a code and a state
//     (the base64 of our callback URL)
//  3. The server exchanges the code for an access token, fetches the profile,
//     upserts the local user and mints a session token
//  4. The session token travels in the app_session_id cookie; the Authenticate
//     middleware turns it back into a *model.User on every request
//
// The session token is an HS256 JWT carrying the open-id, the app id and the
// display name. There is no server-side session store: logout only clears the
// cookie.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 365 * 24 * time.Hour

// Session is the verified payload of a session token.
type Session struct {
	OpenID    string
	AppID     string
	Name      string
	ExpiresAt time.Time
}

// sessionClaims is the JWT payload.
type sessionClaims struct {
	OpenID string `json:"openId"`
	AppID  string `json:"appId"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// SessionService signs and verifies session tokens.
type SessionService struct {
	secret []byte
	appID  string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a SessionService. ttl <= 0 selects DefaultSessionTTL.
func NewSessionService(secret, appID string, ttl time.Duration) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if appID == "" {
		return nil, errors.New("auth: app id is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		secret: []byte(secret),
		appID:  appID,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime given to new tokens.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Create mints a session token for openID with the default lifetime.
func (s *SessionService) Create(openID, name string) (string, error) {
	return s.CreateWithTTL(openID, name, s.ttl)
}

// CreateWithTTL mints a session token with a custom lifetime.
func (s *SessionService) CreateWithTTL(openID, name string, ttl time.Duration) (string, error) {
	if openID == "" {
		return "", errors.New("auth: open id is required")
	}
	now := s.now()

	c := sessionClaims{
		OpenID: openID,
		AppID:  s.appID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and checks its signature, expiry and payload.
//
// Only HS256 is accepted; WithValidMethods stops "alg: none" and
// algorithm-confusion tokens before the key function runs.
func (s *SessionService) Verify(tokenStr string) (*Session, error) {
	if tokenStr == "" {
		return nil, errors.New("auth: missing session token")
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: session expired")
		}
		return nil, fmt.Errorf("auth: invalid session: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid session claims")
	}
	if c.OpenID == "" || c.AppID == "" || c.Name == "" {
		return nil, fmt.Errorf("auth: session payload is incomplete")
	}

	return &Session{
		OpenID:    c.OpenID,
		AppID:     c.AppID,
		Name:      c.Name,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
