package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the session cookie set by the OAuth callback.
const CookieName = "app_session_id"

// SessionCookie builds the cookie that carries a session token.
//
// SameSite=None lets the app run embedded in another origin's frame. Secure
// follows the request scheme, trusting X-Forwarded-Proto from the proxy.
func SessionCookie(r *http.Request, token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   IsSecureRequest(r),
	}
}

// ClearSessionCookie builds a cookie that deletes the session in the browser.
func ClearSessionCookie(r *http.Request) *http.Cookie {
	c := SessionCookie(r, "", 0)
	c.MaxAge = -1
	return c
}

// IsSecureRequest reports whether the request reached us over HTTPS.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
