package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/edufy-app/roster-api/internal/models"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
)

type sessionStore interface {
	Save(ctx context.Context, token string, session models.Session) error
	Find(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

// AuthConfig defines configuration for session issuance.
type AuthConfig struct {
	TokenSecret string
}

// AuthService owns the session lifecycle: initialized empty, mutated only
// by Login and Logout, read by CurrentSession. Tokens are HS256-signed
// projections, but a token is only honored while its server-side record
// exists, so logout is real revocation.
type AuthService struct {
	sessions sessionStore
	logger   *zap.Logger
	config   AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(sessions sessionStore, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{sessions: sessions, logger: logger, config: config}
}

// Login persists the minimal session projection for the user, overwriting
// any prior session unconditionally, and returns the signed token.
func (s *AuthService) Login(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	session := models.Session{ID: user.ID, Role: user.Role, Name: user.Name}

	issuedAt := time.Now().UTC()
	claims := &models.SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(issuedAt),
			// No expiry on purpose: sessions live until logout.
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	if err := s.sessions.Save(ctx, token, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	s.logger.Info("session created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return &models.LoginResponse{Token: token, Session: session, IssuedAt: issuedAt}, nil
}

// CurrentSession validates the token signature and returns the stored
// session record. Absence is an explicit ErrNoSession, never a nil success.
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*models.Session, error) {
	if _, err := s.parseClaims(token); err != nil {
		return nil, err
	}
	return s.sessions.Find(ctx, token)
}

// Logout removes the persisted session. Idempotent: logging out twice is
// not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

func (s *AuthService) parseClaims(token string) (*models.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}
