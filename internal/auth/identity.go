package auth

import (
	"context"
	"strings"

	"projecthub/internal/domain/user"
	"projecthub/internal/repository"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/password"
	"projecthub/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IdentityStore owns user accounts and password checks.
type IdentityStore struct {
	users  repository.UserRepository
	hasher *password.Hasher
	log    logrus.FieldLogger
}

func NewIdentityStore(users repository.UserRepository, hasher *password.Hasher, log logrus.FieldLogger) *IdentityStore {
	return &IdentityStore{
		users:  users,
		hasher: hasher,
		log:    log.WithField("component", "identity"),
	}
}

func (s *IdentityStore) Register(ctx context.Context, email, plain, displayName string) (*user.User, error) {
	email = validator.NormalizeEmail(email)
	displayName = strings.TrimSpace(displayName)

	var details []string
	if err := validator.Email(email); err != nil {
		details = append(details, err.Error())
	}
	if err := validator.Password(plain); err != nil {
		details = append(details, err.Error())
	}
	if err := validator.DisplayName(displayName); err != nil {
		details = append(details, err.Error())
	}
	if len(details) > 0 {
		return nil, apperrors.Validation(details[0], details...)
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, apperrors.Internal(msgHashPasswordFailed, err)
	}

	u, err := s.users.Create(ctx, user.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// VerifyCredentials never tells an unknown email apart from a wrong password.
// The disabled check runs only after the password matched.
func (s *IdentityStore) VerifyCredentials(ctx context.Context, email, plain string) (*user.User, error) {
	email = validator.NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			s.hasher.VerifyDummy(plain)
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}

	if !s.hasher.Verify(plain, u.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	if !u.IsActive {
		return nil, apperrors.AccountDisabled(msgAccountDisabled)
	}

	s.rehashIfStale(ctx, u, plain)
	return u, nil
}

// rehashIfStale upgrades a hash made at a lower cost than the current
// hasher. Failures are logged; the login already succeeded.
func (s *IdentityStore) rehashIfStale(ctx context.Context, u *user.User, plain string) {
	stale, err := s.hasher.NeedsRehash(u.PasswordHash)
	if err != nil || !stale {
		return
	}

	entry := s.log.WithField("user_id", u.ID)
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		entry.WithError(err).Warn(msgRehashFailed)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		entry.WithError(err).Warn(msgRehashFailed)
		return
	}
	u.PasswordHash = hash
	entry.Info("password rehashed")
}

func (s *IdentityStore) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

// RequireActive maps a missing user to ErrAuthInvalid and a disabled one to
// ErrAccountDisabled.
func (s *IdentityStore) RequireActive(ctx context.Context, id uuid.UUID) error {
	_, err := s.Active(ctx, id)
	return err
}

func (s *IdentityStore) Active(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.AuthInvalid(msgInvalidToken)
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, apperrors.AccountDisabled(msgAccountDisabled)
	}
	return u, nil
}

// ChangePassword replaces the hash and revokes every refresh token of the user.
func (s *IdentityStore) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.Active(ctx, id)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, u.PasswordHash) {
		return apperrors.AuthInvalid(msgCurrentPasswordIncorrect)
	}
	if err := validator.Password(next); err != nil {
		return apperrors.Validation(msgInvalidPassword, err.Error())
	}
	if current == next {
		return apperrors.Validation(msgPasswordUnchanged)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperrors.Internal(msgHashPasswordFailed, err)
	}

	if err := s.users.UpdatePasswordAndRevokeSessions(ctx, id, hash); err != nil {
		return err
	}

	s.log.WithField("user_id", id).Info("password changed, sessions revoked")
	return nil
}

func (s *IdentityStore) UpdateProfile(ctx context.Context, id uuid.UUID, input user.UpdateProfileInput) (*user.User, error) {
	if input.DisplayName == nil && input.AvatarURL == nil {
		return nil, apperrors.Validation(msgEmptyProfileUpdate)
	}

	patch := user.UpdateProfileInput{}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if err := validator.DisplayName(name); err != nil {
			return nil, apperrors.Validation(msgInvalidDisplayName, err.Error())
		}
		patch.DisplayName = &name
	}
	if input.AvatarURL != nil {
		url := strings.TrimSpace(*input.AvatarURL)
		if err := validator.AvatarURL(url); err != nil {
			return nil, apperrors.Validation(msgInvalidAvatarURL, err.Error())
		}
		patch.AvatarURL = &url
	}

	return s.users.UpdateProfile(ctx, id, patch)
}

// Deactivate soft-disables the account and drops its sessions.
func (s *IdentityStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.users.DeactivateAndRevokeSessions(ctx, id); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("user deactivated")
	return nil
}
