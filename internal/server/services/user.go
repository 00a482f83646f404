// Package services contains server-side business logic. This file implements
// UserService: registration, login, logout, session refresh, password change
// and access token resolution.
package services

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/media"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/users"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the outcome of a login or refresh: the account with secrets
// excluded plus a freshly issued token pair.
type Session struct {
	User   *models.User
	Tokens TokenPair
}

type UserService struct {
	users    users.Repository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenIssuer
	uploader media.Uploader
	log      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens *auth.TokenIssuer,
	uploader media.Uploader, log logging.Logger) *UserService {
	return &UserService{
		users:    m.Users(),
		hasher:   hasher,
		tokens:   tokens,
		uploader: uploader,
		log:      log.With("module", "users"),
	}
}

func internalError(msg string, err error) error {
	return common.WrapError(common.ErrorInternal, msg, err)
}

// Register creates an account. The avatar must upload before anything is
// written; a failed cover upload leaves the cover empty.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, common.NewError(common.ErrorValidation, err.Error())
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return nil, common.NewError(common.ErrorConflict, "user with email or username already exists")
	case !errors.Is(err, common.ErrorNotFound):
		return nil, internalError("failed to check existing users", err)
	}

	if in.AvatarPath == "" {
		return nil, common.NewError(common.ErrorValidation, "avatar file is required")
	}

	avatarURL, err := s.uploader.Upload(ctx, in.AvatarPath)
	if err != nil {
		return nil, common.WrapError(common.ErrorUpload, "failed to upload avatar", err)
	}
	if avatarURL == "" {
		return nil, common.NewError(common.ErrorUpload, "failed to upload avatar")
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = s.uploader.Upload(ctx, in.CoverImagePath)
		if err != nil {
			s.log.Warn(ctx, "cover image upload failed, continuing without it", "username", in.Username, "error", err)
			coverURL = ""
		}
	}

	draft := &models.User{
		Username:      in.Username,
		Email:         in.Email,
		FullName:      in.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}
	if err := s.setPassword(draft, in.Password); err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, draft)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, "user with email or username already exists")
		}
		return nil, internalError("failed to register user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return created.Public(), nil
}

// setPassword stores the hash of plaintext on u. Every write of a password
// goes through here.
func (s *UserService) setPassword(u *models.User, plaintext string) error {
	hashed, err := s.hasher.Hash(plaintext)
	if err != nil {
		return internalError("failed to hash password", err)
	}
	u.PasswordHash = hashed
	return nil
}

// Login checks credentials and starts a new session, replacing any stored
// refresh token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, common.NewError(common.ErrorValidation, err.Error())
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "user does not exist")
		}
		return nil, internalError("failed to look up user", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, internalError("failed to verify password", err)
	}
	if !ok {
		return nil, common.NewError(common.ErrorUnauthorized, "invalid user credentials")
	}

	return s.startSession(ctx, user)
}

// startSession issues a token pair and persists the refresh token.
func (s *UserService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	access, err := s.tokens.Issue(auth.AccessToken, user)
	if err != nil {
		return nil, internalError("failed to generate access token", err)
	}
	refresh, err := s.tokens.Issue(auth.RefreshToken, user)
	if err != nil {
		return nil, internalError("failed to generate refresh token", err)
	}

	public, err := s.users.UpdateRefreshToken(ctx, user.ID, refresh)
	if err != nil {
		return nil, internalError("failed to store refresh token", err)
	}

	return &Session{
		User:   public,
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Logout clears the stored refresh token. Access tokens already issued stay
// valid until they expire.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if _, err := s.users.UpdateRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return internalError("failed to clear refresh token", err)
	}
	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// RefreshSession exchanges the current refresh token for a new pair. Only the
// most recently issued refresh token is accepted.
func (s *UserService) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}

	claims, err := s.tokens.Verify(auth.RefreshToken, refreshToken)
	if err != nil {
		return nil, s.tokenError(err, "invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID, false)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, "invalid refresh token")
		}
		return nil, internalError("failed to look up user", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, common.NewError(common.ErrorUnauthorized, "refresh token is expired or used")
	}

	return s.startSession(ctx, user)
}

// ChangePassword replaces the password of userID after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return common.NewError(common.ErrorValidation, err.Error())
	}

	user, err := s.users.FindByID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorUnauthorized, "unauthorized request")
		}
		return internalError("failed to look up user", err)
	}

	ok, err := s.hasher.Verify(in.OldPassword, user.PasswordHash)
	if err != nil {
		return internalError("failed to verify password", err)
	}
	if !ok {
		return common.NewError(common.ErrorUnauthorized, "invalid old password")
	}

	if err := s.setPassword(user, in.NewPassword); err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, user.PasswordHash); err != nil {
		return internalError("failed to update password", err)
	}

	s.log.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// Authenticate resolves an access token to its account, secrets excluded.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}

	claims, err := s.tokens.Verify(auth.AccessToken, accessToken)
	if err != nil {
		return nil, s.tokenError(err, "invalid access token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID, true)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, "invalid access token")
		}
		return nil, internalError("failed to look up user", err)
	}
	return user, nil
}

// CurrentUser returns the account of userID with secrets excluded.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID, true)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "user does not exist")
		}
		return nil, internalError("failed to look up user", err)
	}
	return user, nil
}

// tokenError maps token verification failures. A missing secret is a server
// misconfiguration, everything else is the caller's problem.
func (s *UserService) tokenError(err error, msg string) error {
	switch {
	case errors.Is(err, common.ErrMissingSecret):
		return internalError("token verification is not configured", err)
	case errors.Is(err, common.ErrTokenExpired):
		return common.WrapError(common.ErrorUnauthorized, msg+": token expired", err)
	default:
		return common.WrapError(common.ErrorUnauthorized, msg, err)
	}
}
