// Package reset implements password recovery: issuing single-use, time-limited
// reset tokens and exchanging them for a new password.
package reset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"nearmex/internal/apperr"
	"nearmex/internal/mail"
	"nearmex/internal/metrics"
	redisdb "nearmex/internal/redis"
	"nearmex/internal/user"
)

// DefaultTTL is how long a mailed reset link stays usable.
const DefaultTTL = time.Hour

const tokenBytes = 32

// Users is the slice of the credential store the reset flow needs.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	SetResetToken(ctx context.Context, id uint, digest string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) error
}

type Manager struct {
	users       Users
	hasher      *user.Hasher
	notifier    mail.Notifier
	throttle    *redisdb.Throttle
	metrics     *metrics.Metrics
	logger      *logrus.Logger
	ttl         time.Duration
	frontendURL string
	now         func() time.Time
}

type Option func(*Manager)

func WithThrottle(t *redisdb.Throttle) Option { return func(m *Manager) { m.throttle = t } }

func WithMetrics(mt *metrics.Metrics) Option { return func(m *Manager) { m.metrics = mt } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(users Users, hasher *user.Hasher, notifier mail.Notifier, logger *logrus.Logger,
	ttl time.Duration, frontendURL string, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		users:       users,
		hasher:      hasher,
		notifier:    notifier,
		logger:      logger,
		ttl:         ttl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Digest is the form a reset token is stored in.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (m *Manager) resetURL(token string) string {
	return m.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

// RequestReset starts recovery for email. Unknown addresses and throttled
// requests return nil without side effects so callers cannot tell them
// apart from a real send. Only store failures are returned.
func (m *Manager) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	u, err := m.users.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		m.logger.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	allowed, err := m.throttle.Allow(ctx, email)
	if err != nil {
		m.logger.WithError(err).Warn("reset throttle unavailable, allowing request")
	}
	if !allowed {
		m.logger.WithField("user_id", u.ID).Warn("password reset throttled")
		m.metrics.AuthEvent(metrics.EventResetThrottled)
		return nil
	}

	token, err := newToken()
	if err != nil {
		return apperr.Transient(fmt.Errorf("generate reset token: %w", err))
	}
	expiresAt := m.now().Add(m.ttl)
	if err := m.users.SetResetToken(ctx, u.ID, Digest(token), expiresAt); err != nil {
		return err
	}
	m.metrics.AuthEvent(metrics.EventResetRequested)

	// The token stays valid even when the mail never arrives.
	err = m.notifier.SendPasswordReset(ctx, u.Email, u.Username, m.resetURL(token))
	m.metrics.MailSent("password_reset", err)
	if err != nil {
		m.logger.WithError(err).WithField("user_id", u.ID).Error("password reset email failed")
	}
	return nil
}

// ConsumeReset sets newPassword on the account holding token if the token is
// unexpired, and invalidates it in the same update.
func (m *Manager) ConsumeReset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		m.metrics.AuthEvent(metrics.EventResetRejected)
		return apperr.ErrInvalidOrExpiredToken
	}
	if err := user.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := m.users.ConsumeResetToken(ctx, Digest(token), hash, m.now()); err != nil {
		if errors.Is(err, apperr.ErrInvalidOrExpiredToken) {
			m.metrics.AuthEvent(metrics.EventResetRejected)
		}
		return err
	}
	m.metrics.AuthEvent(metrics.EventResetConsumed)
	return nil
}
