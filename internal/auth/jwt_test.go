package auth

import (
	"testing"
	"time"

	apperrors "projecthub/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(now time.Time) *JWTService {
	s := NewJWTService(testAccessSecret, 15*time.Minute)
	s.now = func() time.Time { return now }
	return s
}

func TestJWTRoundTrip(t *testing.T) {
	now := time.Now()
	s := newTestJWT(now)
	userID := uuid.New()

	raw, exp, err := s.Generate(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), exp, time.Second)

	got, err := s.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTExpired(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	raw, _, err := newTestJWT(issued).Generate(uuid.New())
	require.NoError(t, err)

	_, err = newTestJWT(time.Now()).Verify(raw)
	assert.ErrorIs(t, err, apperrors.ErrAuthExpired)
}

func TestJWTRejectsForeignTokens(t *testing.T) {
	now := time.Now()
	s := newTestJWT(now)

	claims := func(typ string) JWTClaims {
		return JWTClaims{
			Type: typ,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   uuid.NewString(),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
	}

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(tokenTypeAccess)).SignedString([]byte(testRefreshSecret))
	require.NoError(t, err)

	wrongType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims("refresh")).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims(tokenTypeAccess)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims(tokenTypeAccess)).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong key":  wrongKey,
		"wrong type": wrongType,
		"alg none":   unsigned,
		"hs512":      hs512,
		"garbage":    "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Verify(raw)
			assert.ErrorIs(t, err, apperrors.ErrAuthInvalid)
		})
	}
}

func TestSplitRefreshValue(t *testing.T) {
	id, secret, ok := splitRefreshValue("01ARZ3NDEKTSV4RRFFQ69G5FAV.c2VjcmV0")
	require.True(t, ok)
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", id)
	assert.Equal(t, "c2VjcmV0", secret)

	for _, v := range []string{"", ".", "nodot", "bad-id.secret", "01ARZ3NDEKTSV4RRFFQ69G5FAV."} {
		_, _, ok := splitRefreshValue(v)
		assert.False(t, ok, v)
	}
}

func TestHashRefreshSecretIsKeyed(t *testing.T) {
	a := hashRefreshSecret([]byte("key-one"), "secret")
	b := hashRefreshSecret([]byte("key-two"), "secret")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, hashRefreshSecret([]byte("key-one"), "secret"))
}
