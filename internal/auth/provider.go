package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Provider API paths, relative to the OAuth server URL.
const (
	exchangeTokenPath      = "/webdev.v1.WebDevAuthPublicService/ExchangeToken"
	getUserInfoPath        = "/webdev.v1.WebDevAuthPublicService/GetUserInfo"
	getUserInfoWithJWTPath = "/webdev.v1.WebDevAuthPublicService/GetUserInfoWithJwt"
)

// HTTPClient is the subset of *http.Client the provider needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserInfo is the profile returned by the identity provider.
type UserInfo struct {
	OpenID    string   `json:"openId"`
	ProjectID string   `json:"projectId"`
	Name      string   `json:"name"`
	Email     *string  `json:"email"`
	Platform  *string  `json:"platform"`
	Platforms []string `json:"platforms"`
}

// LoginMethod returns how the user signed in: the provider's platform when
// given, otherwise the highest-priority entry of Platforms.
func (u *UserInfo) LoginMethod() *string {
	if u.Platform != nil && *u.Platform != "" {
		m := *u.Platform
		return &m
	}
	return DeriveLoginMethod(u.Platforms)
}

// loginMethodPriority is checked in order; the first platform present wins.
var loginMethodPriority = []struct {
	platforms []string
	method    string
}{
	{[]string{"REGISTERED_PLATFORM_EMAIL"}, "email"},
	{[]string{"REGISTERED_PLATFORM_GOOGLE"}, "google"},
	{[]string{"REGISTERED_PLATFORM_APPLE"}, "apple"},
	{[]string{"REGISTERED_PLATFORM_MICROSOFT", "REGISTERED_PLATFORM_AZURE"}, "microsoft"},
	{[]string{"REGISTERED_PLATFORM_GITHUB"}, "github"},
}

// DeriveLoginMethod maps the provider's registered platforms to a login
// method. Unknown platforms fall back to the first one, lower-cased.
func DeriveLoginMethod(platforms []string) *string {
	if len(platforms) == 0 {
		return nil
	}
	set := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		set[p] = true
	}
	for _, candidate := range loginMethodPriority {
		for _, p := range candidate.platforms {
			if set[p] {
				m := candidate.method
				return &m
			}
		}
	}
	m := strings.ToLower(platforms[0])
	return &m
}

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	ServerURL string // provider API base URL
	PortalURL string // browser-facing login portal
	AppID     string
	Timeout   time.Duration
	Client    HTTPClient // nil builds an *http.Client with Timeout
}

// Provider talks to the external identity provider.
//
// The provider is not a standard OAuth 2.0 token endpoint: code exchange and
// profile lookup are JSON POSTs. x/oauth2 still builds the portal login URL
// and carries the access token between the two calls.
type Provider struct {
	serverURL string
	appID     string
	client    HTTPClient
	portal    *oauth2.Config
}

// NewProvider creates a Provider.
func NewProvider(cfg ProviderConfig) *Provider {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Provider{
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		appID:     cfg.AppID,
		client:    client,
		portal: &oauth2.Config{
			ClientID: cfg.AppID,
			Endpoint: oauth2.Endpoint{
				AuthURL: strings.TrimRight(cfg.PortalURL, "/") + "/app-auth",
			},
		},
	}
}

// EncodeState packs the callback URL into the opaque OAuth state.
func EncodeState(redirectURI string) string {
	return base64.StdEncoding.EncodeToString([]byte(redirectURI))
}

// DecodeState recovers the callback URL from an OAuth state.
func DecodeState(state string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return "", fmt.Errorf("auth: decoding oauth state: %w", err)
	}
	return string(raw), nil
}

// LoginURL returns the portal URL that starts a sign-in and comes back to
// redirectURI.
func (p *Provider) LoginURL(redirectURI string) string {
	cfg := *p.portal
	cfg.RedirectURL = redirectURI
	return cfg.AuthCodeURL(EncodeState(redirectURI),
		oauth2.SetAuthURLParam("appId", p.appID),
		oauth2.SetAuthURLParam("redirectUri", redirectURI),
		oauth2.SetAuthURLParam("type", "signIn"),
	)
}

type exchangeTokenRequest struct {
	ClientID    string `json:"clientId"`
	GrantType   string `json:"grantType"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

type exchangeTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
	Scope        string `json:"scope"`
	IDToken      string `json:"idToken"`
}

// ExchangeCode trades an authorization code for an access token. The
// redirect URI sent to the provider is the one encoded in state.
func (p *Provider) ExchangeCode(ctx context.Context, code, state string) (*oauth2.Token, error) {
	redirectURI, err := DecodeState(state)
	if err != nil {
		return nil, err
	}

	var resp exchangeTokenResponse
	err = p.post(ctx, exchangeTokenPath, exchangeTokenRequest{
		ClientID:    p.appID,
		GrantType:   "authorization_code",
		Code:        code,
		RedirectURI: redirectURI,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging code: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("auth: provider returned no access token")
	}

	token := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return token.WithExtra(map[string]any{
		"scope":    resp.Scope,
		"id_token": resp.IDToken,
	}), nil
}

// GetUserInfo fetches the profile for an access token.
func (p *Provider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	if token == nil || token.AccessToken == "" {
		return nil, errors.New("auth: access token is required")
	}
	var info UserInfo
	if err := p.post(ctx, getUserInfoPath, map[string]string{
		"accessToken": token.AccessToken,
	}, &info); err != nil {
		return nil, fmt.Errorf("auth: fetching user info: %w", err)
	}
	return &info, nil
}

// GetUserInfoWithJWT fetches the profile for a session token. It is used to
// re-sync a user whose local row is missing.
func (p *Provider) GetUserInfoWithJWT(ctx context.Context, sessionToken string) (*UserInfo, error) {
	var info UserInfo
	if err := p.post(ctx, getUserInfoWithJWTPath, map[string]string{
		"jwtToken":  sessionToken,
		"projectId": p.appID,
	}, &info); err != nil {
		return nil, fmt.Errorf("auth: fetching user info with session: %w", err)
	}
	return &info, nil
}

func (p *Provider) post(ctx context.Context, path string, body, out any) error {
	if p.serverURL == "" {
		return errors.New("oauth server url is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
