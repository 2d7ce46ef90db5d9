package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/auth"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// IdentityProvider is the external OAuth service, as used by AuthService.
// *auth.Provider implements it.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code, state string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*auth.UserInfo, error)
	GetUserInfoWithJWT(ctx context.Context, sessionToken string) (*auth.UserInfo, error)
}

// AuthService keeps local users in step with the identity provider and turns
// session tokens into users.
//
//	OAuth callback → CompleteLogin → provider → UserRepository.UpsertUser → SessionService
//	each request   → Authenticate  → SessionService.Verify → UserRepository
type AuthService struct {
	users       repository.UserRepository
	sessions    *auth.SessionService
	provider    IdentityProvider
	ownerOpenID string
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthService creates an AuthService. Users whose open-id equals
// ownerOpenID are stored as admins.
func NewAuthService(
	users repository.UserRepository,
	sessions *auth.SessionService,
	provider IdentityProvider,
	ownerOpenID string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		provider:    provider,
		ownerOpenID: ownerOpenID,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// LoginResult bundles the signed-in user and the session token so the
// handler can set the cookie in one step.
type LoginResult struct {
	User         *model.User
	SessionToken string
}

// CompleteLogin finishes the OAuth callback: exchange the code, fetch the
// profile, upsert the user and mint a session token.
func (s *AuthService) CompleteLogin(ctx context.Context, code, state string) (*LoginResult, error) {
	token, err := s.provider.ExchangeCode(ctx, code, state)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	info, err := s.provider.GetUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}
	if info.OpenID == "" {
		return nil, apperror.ValidationFailed("openId", "openId missing from user info")
	}

	if err := s.SyncUser(ctx, info); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByOpenID(ctx, info.OpenID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading user %s: %w", info.OpenID, err)
	}

	sessionToken, err := s.sessions.Create(info.OpenID, displayName(info))
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user signed in",
		slog.String("openId", user.OpenID),
		slog.String("role", string(user.Role)),
	)
	return &LoginResult{User: user, SessionToken: sessionToken}, nil
}

// SyncUser upserts the local row for a provider profile.
func (s *AuthService) SyncUser(ctx context.Context, info *auth.UserInfo) error {
	u := model.UserUpsert{
		OpenID:       info.OpenID,
		Email:        info.Email,
		LoginMethod:  info.LoginMethod(),
		LastSignedIn: s.now(),
	}
	if info.Name != "" {
		name := info.Name
		u.Name = &name
	}
	return s.upsert(ctx, u)
}

// Authenticate resolves a session token to a local user.
//
// A user missing locally (first request after a database reset, say) is
// re-synced from the provider with the raw session token. Every successful
// call refreshes lastSignedIn.
func (s *AuthService) Authenticate(ctx context.Context, sessionToken string) (*model.User, error) {
	session, err := s.sessions.Verify(sessionToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid session cookie")
	}

	now := s.now()
	user, err := s.users.GetUserByOpenID(ctx, session.OpenID)
	if errors.Is(err, apperror.ErrNotFound) {
		info, infoErr := s.provider.GetUserInfoWithJWT(ctx, sessionToken)
		if infoErr != nil {
			s.logger.Warn("failed to re-sync user from provider",
				slog.String("openId", session.OpenID),
				slog.String("error", infoErr.Error()),
			)
			return nil, apperror.Unauthorized("user not found")
		}
		if info.OpenID == "" {
			info.OpenID = session.OpenID
		}
		if err := s.SyncUser(ctx, info); err != nil {
			return nil, err
		}
		user, err = s.users.GetUserByOpenID(ctx, info.OpenID)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading user %s: %w", session.OpenID, err)
	}

	if err := s.users.UpsertUser(ctx, model.UserUpsert{OpenID: user.OpenID, LastSignedIn: now}); err != nil {
		return nil, fmt.Errorf("service/auth: refreshing lastSignedIn: %w", err)
	}
	user.LastSignedIn = now
	return user, nil
}

// Promote makes an existing user an admin.
func (s *AuthService) Promote(ctx context.Context, openID string) error {
	openID = strings.TrimSpace(openID)
	if openID == "" {
		return apperror.ValidationFailed("openId", "openId is required")
	}
	if err := s.users.SetUserRole(ctx, openID, model.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("user promoted to admin", slog.String("openId", openID))
	return nil
}

// upsert applies owner promotion before writing.
func (s *AuthService) upsert(ctx context.Context, u model.UserUpsert) error {
	if u.Role == nil && s.ownerOpenID != "" && u.OpenID == s.ownerOpenID {
		admin := model.RoleAdmin
		u.Role = &admin
	}
	if err := s.users.UpsertUser(ctx, u); err != nil {
		return fmt.Errorf("service/auth: upserting user (openId=%s): %w", u.OpenID, err)
	}
	return nil
}

// displayName is the name carried in the session. The session payload needs
// a non-empty name, so a profile without one falls back to its open-id.
func displayName(info *auth.UserInfo) string {
	if strings.TrimSpace(info.Name) != "" {
		return info.Name
	}
	return info.OpenID
}
