// Package auth implements registration, login and refresh-token rotation.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/inkwell-cms/core/internal/config"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	pkgjwt "github.com/inkwell-cms/core/internal/pkg/jwt"
	"github.com/inkwell-cms/core/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

const refreshKeyPrefix = "auth:refresh:"

// SessionStore persists refresh sessions keyed by token jti. The redis
// client satisfies it; tests substitute a map-backed store.
type SessionStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type Service struct {
	users    repository.UserRepository
	sessions SessionStore
	cfg      *config.AppConfig
	logger   *zap.Logger
}

func NewService(users repository.UserRepository, sessions SessionStore, cfg *config.AppConfig, logger *zap.Logger) *Service {
	return &Service{users: users, sessions: sessions, cfg: cfg, logger: logger}
}

// Register creates an author account. Email and username are unique.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*models.UserModel, error) {
	taken, err := s.users.ExistsEmailOrUsername(ctx, dto.Email, dto.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.UserModel{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: string(hash),
		Role:         models.RoleAuthor,
		IsActive:     true,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*TokenPair, *models.UserModel, error) {
	user, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh rotates a refresh token: the presented token's session is
// consumed atomically, so each refresh token works exactly once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := pkgjwt.Parse(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if claims.TokenType != pkgjwt.TypeRefresh {
		return nil, ErrInvalidRefresh
	}

	userID, err := s.sessions.GetDel(ctx, refreshKeyPrefix+claims.ID)
	if err != nil {
		return nil, err
	}
	if userID == "" || userID != claims.UserID {
		return nil, ErrInvalidRefresh
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidRefresh
	}

	return s.issuePair(ctx, user.ID)
}

// Logout revokes the presented refresh session.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := pkgjwt.Parse(refreshToken)
	if err != nil {
		return ErrInvalidRefresh
	}
	return s.sessions.Del(ctx, refreshKeyPrefix+claims.ID)
}

func (s *Service) issuePair(ctx context.Context, userID string) (*TokenPair, error) {
	access, _, err := pkgjwt.Sign(userID, pkgjwt.TypeAccess, s.cfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := pkgjwt.Sign(userID, pkgjwt.TypeRefresh, s.cfg.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}

	// the session key is the refresh jti; rotation consumes it via GETDEL
	if err := s.sessions.Set(ctx, refreshKeyPrefix+refreshClaims.ID, userID, s.cfg.RefreshTokenTTL()); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.cfg.AccessTokenTTL().Seconds()),
	}, nil
}
