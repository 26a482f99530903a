// Package service provides the business logic layer (use cases).
// AdminAuthService handles the admin panel's login, session tokens and
// credential changes.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const (
	maxFailedAttempts = 5
	lockDuration      = 30 * time.Minute
	bcryptCost        = 12
)

// SessionClaims is the JWT payload for an admin session.
type SessionClaims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuthService orchestrates the admin login flow.
type AdminAuthService struct {
	store      port.AdminStore
	jwtSecret  []byte
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAdminAuthService creates a new admin auth service.
func NewAdminAuthService(store port.AdminStore, jwtSecret string, sessionTTL time.Duration, logger *zap.Logger) *AdminAuthService {
	return &AdminAuthService{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login validates the credential and issues a session token. Failed
// attempts are counted and the credential locks after too many.
func (s *AdminAuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AdminAuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	cred, err := s.store.GetAdminByUsername(ctx, req.Username)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			// Same message as a wrong password so usernames cannot be probed
			return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
		}
		return nil, fmt.Errorf("get admin credential: %w", err)
	}

	if cred.LockedUntil != nil && cred.LockedUntil.After(time.Now()) {
		remaining := time.Until(*cred.LockedUntil).Minutes()
		s.logger.Warn("admin login: credential temporarily locked",
			zap.String("username", req.Username),
			zap.Float64("remaining_minutes", remaining),
		)
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("Acesso temporariamente bloqueado. Tente novamente em %.0f minutos", remaining),
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		newAttempts := cred.FailedAttempts + 1
		updates := map[string]any{"failed_attempts": newAttempts}
		if newAttempts >= maxFailedAttempts {
			updates["locked_until"] = time.Now().Add(lockDuration).Format(time.RFC3339)
			s.logger.Warn("admin login: credential locked after max attempts",
				zap.String("username", req.Username),
				zap.Int("attempts", newAttempts),
			)
		} else {
			s.logger.Warn("admin login: failed password attempt",
				zap.String("username", req.Username),
				zap.Int("attempts", newAttempts),
			)
		}
		_ = s.store.UpdateAdminCredential(ctx, cred.ID, updates)
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	_ = s.store.UpdateAdminCredential(ctx, cred.ID, map[string]any{
		"failed_attempts": 0,
		"locked_until":    nil,
		"last_login_at":   time.Now().Format(time.RFC3339),
	})

	expiresAt := time.Now().Add(s.sessionTTL)
	token, err := s.signSessionToken(cred.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("admin logged in", zap.String("username", req.Username))

	return &domain.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password against the same credential.
func (s *AdminAuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	ctx, span := authTracer.Start(ctx, "AdminAuthService.ChangePassword")
	defer span.End()

	if len(next) < 8 {
		return &domain.ErrValidation{Field: "newPassword", Message: "Senha deve ter pelo menos 8 caracteres"}
	}

	cred, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get admin credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(current)); err != nil {
		return &domain.ErrUnauthorized{Message: "Senha atual incorreta"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateAdminCredential(ctx, cred.ID, map[string]any{"password_hash": string(hash)}); err != nil {
		return fmt.Errorf("update admin credential: %w", err)
	}

	s.logger.Info("admin password changed", zap.String("username", username))
	return nil
}

// VerifyToken parses and validates a session token, returning its claims.
func (s *AdminAuthService) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida ou expirada"}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Role != "admin" {
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida ou expirada"}
	}
	return claims, nil
}

func (s *AdminAuthService) signSessionToken(adminID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Sub:  adminID,
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "mei-portal-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
