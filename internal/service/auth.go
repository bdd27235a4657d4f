package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zuschusspiloten/leadserver/internal/models"
)

// AdminRepository defines the persistence operations required by the
// authentication service.
type AdminRepository interface {
	// GetByUsername fetches an operator, (nil, nil) when unknown.
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	// UpdateLastLogin stamps the operator's last successful login.
	UpdateLastLogin(ctx context.Context, id int64) error
}

// AuthService verifies operator credentials against stored bcrypt hashes.
type AuthService struct {
	// repo performs the data-layer operations.
	repo AdminRepository
	// log records non-fatal persistence problems.
	log *zap.Logger
}

// NewAuthService constructs an AuthService using the provided repository.
func NewAuthService(repo AdminRepository, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, log: log}
}

// Login verifies the username/password pair. On success it returns the
// operator and true, after stamping last_login. On any failure — unknown
// user, wrong password or storage error — it returns (nil, false) without
// revealing which half failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AdminUser, bool) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		s.log.Error("admin lookup failed", zap.Error(err))
		return nil, false
	}
	if user == nil {
		// Burn comparable time for unknown users so the response
		// duration does not reveal whether the username exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, false
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to update last login", zap.Error(err), zap.Int64("admin_id", user.ID))
	}

	return user, true
}
