package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/auth"
	"github.com/sakif/gaia-lore/internal/rpc"
	"github.com/sakif/gaia-lore/internal/service"
)

// CallbackPath is where the identity provider sends the browser back.
const CallbackPath = "/api/oauth/callback"

// returnToCookie remembers where to land after sign-in.
const returnToCookie = "gaia_return_to"

// LoginStarter builds the provider's sign-in URL. *auth.Provider implements it.
type LoginStarter interface {
	LoginURL(redirectURI string) string
}

// LoginCompleter finishes a sign-in. *service.AuthService implements it.
type LoginCompleter interface {
	CompleteLogin(ctx context.Context, code, state string) (*service.LoginResult, error)
}

// OAuthHandler runs the browser side of the sign-in flow:
//
//	GET /api/oauth/login     → redirect to the provider's portal
//	GET /api/oauth/callback  → exchange the code, set the session cookie, redirect home
type OAuthHandler struct {
	starter    LoginStarter
	completer  LoginCompleter
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewOAuthHandler(starter LoginStarter, completer LoginCompleter, sessionTTL time.Duration, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		starter:    starter,
		completer:  completer,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// HandleLogin redirects to the provider's portal.
//
// HTTP: GET /api/oauth/login?redirect=/timeline
//
// The optional redirect is a local path kept in a short-lived cookie and
// used by the callback.
func (h *OAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if returnTo := r.URL.Query().Get("redirect"); isLocalPath(returnTo) {
		http.SetCookie(w, &http.Cookie{
			Name:     returnToCookie,
			Value:    url.QueryEscape(returnTo),
			Path:     CallbackPath,
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   auth.IsSecureRequest(r),
		})
	}

	http.Redirect(w, r, h.starter.LoginURL(callbackURL(r)), http.StatusFound)
}

// HandleCallback completes the sign-in.
//
// HTTP: GET /api/oauth/callback?code=xxx&state=yyy
//
// Missing code or state answers 400 without touching the provider; a
// failed exchange answers 500. On success the session cookie is set and
// the browser goes to the remembered path, or "/".
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, apperror.ValidationFailed("code", "code and state are required"))
		return
	}

	res, err := h.completer.CompleteLogin(r.Context(), code, state)
	if err != nil {
		h.logger.Error("oauth callback failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   rpc.KindInternal,
			Message: "OAuth callback failed",
		})
		return
	}

	http.SetCookie(w, auth.SessionCookie(r, res.SessionToken, h.sessionTTL))

	target := "/"
	if c, err := r.Cookie(returnToCookie); err == nil {
		if v, err := url.QueryUnescape(c.Value); err == nil && isLocalPath(v) {
			target = v
		}
		http.SetCookie(w, &http.Cookie{Name: returnToCookie, Value: "", Path: CallbackPath, MaxAge: -1})
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// callbackURL is the absolute callback URL for the host the browser used.
func callbackURL(r *http.Request) string {
	scheme := "http"
	if auth.IsSecureRequest(r) {
		scheme = "https"
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host + CallbackPath
}

// isLocalPath accepts "/x" but not "//host/x" or absolute URLs.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
