package auth

import (
	"context"

	"projecthub/internal/domain/token"
	"projecthub/internal/domain/user"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session is what register and login hand back to the client.
type Session struct {
	Tokens *token.Pair  `json:"tokens"`
	User   user.Profile `json:"user"`
}

// Service runs the credential flows on top of the identity store and the
// token service.
type Service struct {
	identity *IdentityStore
	tokens   *TokenService
	log      logrus.FieldLogger
}

func NewService(identity *IdentityStore, tokens *TokenService, log logrus.FieldLogger) *Service {
	return &Service{
		identity: identity,
		tokens:   tokens,
		log:      log.WithField("component", "auth"),
	}
}

func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	u, err := s.identity.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	return &Session{Tokens: pair, User: u.Profile()}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.identity.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.log.WithError(err).Debug("login rejected")
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return &Session{Tokens: pair, User: u.Profile()}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

// Logout revokes the given session, or all of them when refreshToken is empty.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	return s.tokens.Revoke(ctx, userID, refreshToken)
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	return s.identity.ChangePassword(ctx, userID, current, next)
}
