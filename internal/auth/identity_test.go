package auth

import (
	"context"
	"testing"

	"projecthub/pkg/logger"
	"projecthub/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyCredentialsRehashesWeakHash(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.service.Register(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	stronger, err := password.New(password.MinCost + 1)
	require.NoError(t, err)
	identity := NewIdentityStore(f.users, stronger, logger.Discard())

	u, err := identity.VerifyCredentials(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	stored, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, password.MinCost+1, cost)
	assert.Equal(t, stored.PasswordHash, u.PasswordHash)
	assert.True(t, stronger.Verify("correct horse", stored.PasswordHash))

	// the upgrade is not a password change
	assert.Equal(t, 1, f.tokens.countFor(reg.User.ID))
}

func TestVerifyCredentialsKeepsCurrentHash(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.service.Register(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)
	before, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)

	_, err = f.identity.VerifyCredentials(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	after, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestVerifyCredentialsWrongPasswordNeverRehashes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.service.Register(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)
	before, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)

	stronger, err := password.New(password.MinCost + 1)
	require.NoError(t, err)
	identity := NewIdentityStore(f.users, stronger, logger.Discard())

	_, err = identity.VerifyCredentials(ctx, "ada@example.com", "wrong horse!")
	require.Error(t, err)

	after, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}
