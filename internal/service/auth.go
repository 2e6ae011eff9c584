package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/util"
)

const MinPasswordLen = 6

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
}

type LoginResult struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	AccessExp    time.Time    `json:"accessExpiresAt"`
	RefreshExp   time.Time    `json:"refreshExpiresAt"`
	User         *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrValidation)
	}
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if errors.Is(err, hash.ErrTooLong) {
		return nil, fmt.Errorf("password is too long: %w", ErrValidation)
	}
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: pwHash, Role: models.RoleUser}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Warn("register_error", "status", 409, "reason", "user already exists")
			return nil, fmt.Errorf("username %q is taken: %w", username, ErrConflict)
		}
		return nil, storeErr(err, "user")
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, fmt.Errorf("invalid username or password: %w", ErrUnauthorized)
		}
		return nil, storeErr(err, "user")
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, fmt.Errorf("invalid username or password: %w", ErrUnauthorized)
	}

	return s.issue(ctx, user, "", "")
}

// Refresh rotates a refresh token: the presented one is revoked in the same
// transaction that stores its replacement.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}

	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", ErrUnauthorized)
		}
		return nil, storeErr(err, "user")
	}

	res, err := s.issue(ctx, user, claims.ID, tokens.Sha256Hex(refreshToken))
	if err != nil {
		if errors.Is(err, repo.ErrRefreshExpiredOrRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_rejected", "status", 401, "user_id", userID)
			return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthorized)
		}
		return nil, err
	}
	return res, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User, rotateJTI, rotateHash string) (*LoginResult, error) {
	now := time.Now()
	accessExp := now.Add(tokens.AccessTTL)
	refreshExp := now.Add(tokens.RefreshTTL)

	access, err := tokens.NewAccessToken(s.JWTSecret, user.ID, user.Role, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, jti, err := tokens.NewRefreshToken(s.RefreshSecret, user.ID, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	stored := &models.RefreshToken{
		JTI:       jti,
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(refresh),
		ExpiresAt: refreshExp.Unix(),
	}
	if rotateJTI == "" {
		err = s.Repo.AddRefreshToken(ctx, stored)
	} else {
		err = s.Repo.RotateRefreshToken(ctx, rotateJTI, rotateHash, stored)
	}
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

// Logout revokes the refresh token. Unknown or malformed tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil
	}
	return storeErr(s.Repo.RevokeRefreshToken(ctx, claims.ID), "refresh token")
}

func (s *AuthService) GetUser(ctx context.Context, p models.Principal, userID uint) (*models.User, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context, p models.Principal, page util.Page) (int64, []models.User, error) {
	if err := requireAdmin(p); err != nil {
		return 0, nil, err
	}
	total, users, err := s.Repo.ListUsers(ctx, page.Offset(), page.Size)
	if err != nil {
		return 0, nil, storeErr(err, "users")
	}
	return total, users, nil
}

// DeleteUser removes the account and everything it owns.
func (s *AuthService) DeleteUser(ctx context.Context, p models.Principal, userID uint) error {
	if err := authorize(p, userID); err != nil {
		return err
	}
	if err := s.Repo.DeleteUser(ctx, userID); err != nil {
		return storeErr(err, "user")
	}
	logging.FromContext(ctx).Info("user_deleted", "svc", "auth", "user_id", userID, "by", p.UserID)
	return nil
}
