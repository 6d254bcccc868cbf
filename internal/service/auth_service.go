package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/oauth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/google/uuid"
)

const minPasswordLength = 6

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

type Profile struct {
	*entity.User
	Seller *entity.Seller `json:"seller,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*Profile, error)
	GoogleAuthURL(ctx context.Context) (string, error)
	// GoogleCallback completes a Google login and returns the frontend URL
	// carrying the issued token.
	GoogleCallback(ctx context.Context, code, state string) (string, error)
}

type AuthServiceConfig struct {
	StateTTL    time.Duration
	FrontendURL string
}

type authService struct {
	users   repository.UserRepository
	sellers repository.SellerRepository
	states  repository.OAuthStateStore
	tokens  *auth.TokenManager
	google  oauth.Provider
	cfg     AuthServiceConfig
	log     logger.Logger
}

// NewAuthService builds the auth service. google may be nil when Google
// login is not configured.
func NewAuthService(
	users repository.UserRepository,
	sellers repository.SellerRepository,
	states repository.OAuthStateStore,
	tokens *auth.TokenManager,
	google oauth.Provider,
	cfg AuthServiceConfig,
	log logger.Logger,
) AuthService {
	return &authService{
		users:   users,
		sellers: sellers,
		states:  states,
		tokens:  tokens,
		google:  google,
		cfg:     cfg,
		log:     log.Named("AuthService"),
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	s.log.Infof("Registering user %s", in.Email)
	if len(in.Password) < minPasswordLength {
		return nil, apperror.Field("password", "password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("failed to register user", err)
	}
	user, err := entity.NewUser(in.Name, in.Email, hash, strings.TrimSpace(in.Phone))
	if err != nil {
		return nil, apperror.Validation(err.Error(), nil)
	}

	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		s.log.Warnf("Registration rejected, email %s already in use", user.Email)
		return nil, apperror.Conflict("email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user")
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperror.Conflict("email is already registered")
		}
		s.log.Errorf("Failed to create user %s: %v", user.Email, err)
		return nil, storeError(err, "user")
	}
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, storeError(err, "user")
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		s.log.Warnf("Failed login for user %s", user.ID)
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("account is deactivated")
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	profile := &Profile{User: user}
	if user.IsSeller {
		seller, err := s.sellers.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError(err, "seller")
		}
		profile.Seller = seller
	}
	return profile, nil
}

func (s *authService) GoogleAuthURL(ctx context.Context) (string, error) {
	if s.google == nil {
		return "", apperror.NotFound("google login is not configured")
	}
	state := uuid.NewString()
	if err := s.states.Save(ctx, state, s.cfg.StateTTL); err != nil {
		return "", apperror.Internal("failed to start google login", err)
	}
	return s.google.AuthCodeURL(state), nil
}

func (s *authService) GoogleCallback(ctx context.Context, code, state string) (string, error) {
	if s.google == nil {
		return "", apperror.NotFound("google login is not configured")
	}
	if code == "" || state == "" {
		return "", apperror.Validation("code and state are required", nil)
	}
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return "", apperror.Internal("failed to verify login state", err)
	}
	if !ok {
		s.log.Warnf("Google callback with unknown or reused state")
		return "", apperror.Unauthorized("login state is invalid or expired")
	}

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return "", apperror.Unauthorized(err.Error())
		}
		return "", apperror.Gateway("google login failed", err)
	}

	user, err := s.upsertGoogleUser(ctx, profile)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", apperror.Forbidden("account is deactivated")
	}
	result, err := s.issue(user)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s.cfg.FrontendURL, "/") + "/auth/callback?token=" + url.QueryEscape(result.Token), nil
}

func (s *authService) upsertGoogleUser(ctx context.Context, profile *oauth.GoogleProfile) (*entity.User, error) {
	user, err := s.users.GetByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user")
	}

	user, err = s.users.GetByEmail(ctx, entity.NormalizeEmail(profile.Email))
	switch {
	case err == nil:
		if err := s.users.LinkGoogle(ctx, repository.LinkGoogleParams{UserID: user.ID, GoogleID: profile.ID, AvatarURL: profile.Picture}); err != nil {
			return nil, storeError(err, "user")
		}
		user.GoogleID = profile.ID
		user.AvatarURL = profile.Picture
		s.log.Infof("Linked google account to user %s", user.ID)
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeError(err, "user")
	}

	name := profile.Name
	if strings.TrimSpace(name) == "" {
		name = strings.Split(profile.Email, "@")[0]
	}
	user, err = entity.NewUser(name, profile.Email, "", "")
	if err != nil {
		return nil, apperror.Validation(err.Error(), nil)
	}
	user.GoogleID = profile.ID
	user.AvatarURL = profile.Picture
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	s.log.Infof("Created user %s from google login", user.ID)
	return user, nil
}

func (s *authService) issue(user *entity.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, string(user.Role), user.IsSeller)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
