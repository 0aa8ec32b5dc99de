package auth

import (
	"context"
	"time"

	"projecthub/internal/domain/token"
	"projecthub/internal/ids"
	"projecthub/internal/repository"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// ActiveChecker reports whether a user may hold a session.
type ActiveChecker interface {
	RequireActive(ctx context.Context, userID uuid.UUID) error
}

// TokenService issues, rotates and revokes session tokens.
type TokenService struct {
	access     *JWTService
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	tokens     repository.TokenRepository
	users      ActiveChecker
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
}

type TokenOption func(*TokenService)

func WithAccessTTL(d time.Duration) TokenOption {
	return func(s *TokenService) {
		if d > 0 {
			s.accessTTL = d
		}
	}
}

func WithRefreshTTL(d time.Duration) TokenOption {
	return func(s *TokenService) {
		if d > 0 {
			s.refreshTTL = d
		}
	}
}

func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) TokenOption {
	return func(s *TokenService) {
		s.metrics = m
	}
}

func NewTokenService(
	accessSecret, refreshSecret string,
	tokens repository.TokenRepository,
	users ActiveChecker,
	log logrus.FieldLogger,
	opts ...TokenOption,
) *TokenService {
	s := &TokenService{
		refreshKey: []byte(refreshSecret),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
		tokens:     tokens,
		users:      users,
		log:        log.WithField("component", "tokens"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.access = NewJWTService(accessSecret, s.accessTTL)
	s.access.now = s.now
	return s
}

// Issue creates a fresh access token and a new persisted refresh token.
// Existing sessions of the user are left alone.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (*token.Pair, error) {
	accessToken, _, err := s.access.Generate(userID)
	if err != nil {
		return nil, err
	}

	secret, err := randomSecret(refreshSecretBytes)
	if err != nil {
		return nil, apperrors.Internal(msgGenerateSecretFailed, err)
	}

	now := s.now()
	row := &token.RefreshToken{
		ID:        ids.NewAt(now),
		UserID:    userID,
		TokenHash: hashRefreshSecret(s.refreshKey, secret),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Insert(ctx, row); err != nil {
		return nil, err
	}

	return &token.Pair{
		AccessToken:  accessToken,
		RefreshToken: joinRefreshValue(row.ID, secret),
		TokenType:    token.TypeBearer,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

// Refresh consumes value and issues a new pair. The consume is one atomic
// delete, so a value can be exchanged at most once.
func (s *TokenService) Refresh(ctx context.Context, value string) (*token.Pair, error) {
	id, secret, ok := splitRefreshValue(value)
	if !ok {
		s.metrics.ObserveRefresh(metrics.OutcomeInvalid)
		return nil, apperrors.AuthInvalid(msgInvalidRefreshToken)
	}

	consumed, found, err := s.tokens.Consume(ctx, id, hashRefreshSecret(s.refreshKey, secret))
	if err != nil {
		return nil, err
	}
	if !found {
		s.metrics.ObserveRefresh(metrics.OutcomeInvalid)
		return nil, apperrors.AuthInvalid(msgInvalidRefreshToken)
	}

	if !s.now().Before(consumed.ExpiresAt) {
		s.metrics.ObserveRefresh(metrics.OutcomeExpired)
		return nil, apperrors.AuthExpired(msgRefreshTokenExpired)
	}

	if err := s.users.RequireActive(ctx, consumed.UserID); err != nil {
		if apperrors.Is(err, apperrors.ErrAccountDisabled) {
			s.metrics.ObserveRefresh(metrics.OutcomeDisabled)
		}
		return nil, err
	}

	pair, err := s.Issue(ctx, consumed.UserID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRefresh(metrics.OutcomeSuccess)
	return pair, nil
}

// Revoke drops one session when value is set, every session otherwise.
// A malformed or unknown value is a no-op.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID, value string) error {
	if value == "" {
		return s.RevokeAll(ctx, userID)
	}

	id, secret, ok := splitRefreshValue(value)
	if !ok {
		return nil
	}

	_, err := s.tokens.DeleteOne(ctx, userID, id, hashRefreshSecret(s.refreshKey, secret))
	return err
}

func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.tokens.DeleteAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "revoked": n}).Info("sessions revoked")
	return nil
}

// Authenticate verifies an access token and returns its subject.
func (s *TokenService) Authenticate(accessToken string) (uuid.UUID, error) {
	return s.access.Verify(accessToken)
}

// SweepExpired deletes refresh rows past their expiry.
func (s *TokenService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveSweep(n)
	if n > 0 {
		s.log.WithField("removed", n).Info("expired refresh tokens swept")
	}
	return n, nil
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}
