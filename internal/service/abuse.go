package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// ActionFormSubmit labels rate-limit records created by the public form.
const ActionFormSubmit = "form_submit"

// RateLimitRepository defines the persistence operations needed by the
// AbuseService.
type RateLimitRepository interface {
	// DeleteExpired prunes all records older than windowSeconds.
	DeleteExpired(ctx context.Context, windowSeconds int) error
	// CountByIPAction counts live records for an IP/action pair.
	CountByIPAction(ctx context.Context, ip, action string) (int, error)
	// Insert records one attempt for an IP/action pair.
	Insert(ctx context.Context, ip, action string) error
}

// AbuseService implements the anti-abuse checks applied before validation:
// the honeypot field and a sliding-window rate limiter backed by the store.
type AbuseService struct {
	// repo performs the data-layer operations.
	repo RateLimitRepository
	// max caps attempts per IP/action within the window.
	max int
	// windowSeconds is the sliding-window length.
	windowSeconds int
	// log records swallowed storage errors.
	log *zap.Logger
}

// NewAbuseService constructs an AbuseService. max and windowSeconds come
// from configuration (defaults 10 per 3600s).
func NewAbuseService(repo RateLimitRepository, max, windowSeconds int, log *zap.Logger) *AbuseService {
	return &AbuseService{repo: repo, max: max, windowSeconds: windowSeconds, log: log}
}

// IsHoneypotFilled reports whether the hidden form field carries a value.
// Humans never see the field, so any content marks a bot.
func (s *AbuseService) IsHoneypotFilled(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsRateLimited applies the sliding-window check for one attempt: prune
// expired records, count the remainder for this IP/action, reject at the
// cap, otherwise record the attempt and let it pass.
//
// Storage failures are logged and swallowed — a broken rate limiter must
// never block legitimate intake, so every error path returns false.
func (s *AbuseService) IsRateLimited(ctx context.Context, ip, action string) bool {
	if err := s.repo.DeleteExpired(ctx, s.windowSeconds); err != nil {
		s.log.Warn("rate limit prune failed, skipping check", zap.Error(err))
		return false
	}

	count, err := s.repo.CountByIPAction(ctx, ip, action)
	if err != nil {
		s.log.Warn("rate limit count failed, skipping check", zap.Error(err))
		return false
	}
	if count >= s.max {
		return true
	}

	if err := s.repo.Insert(ctx, ip, action); err != nil {
		s.log.Warn("rate limit insert failed", zap.Error(err))
	}
	return false
}
