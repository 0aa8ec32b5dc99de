package auth

import (
	"context"
	"sync"
	"time"

	"projecthub/internal/domain/token"
	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/logger"
	"projecthub/pkg/password"

	"github.com/google/uuid"
)

type memoryTokens struct {
	mu   sync.Mutex
	rows map[string]token.RefreshToken
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{rows: map[string]token.RefreshToken{}}
}

func (m *memoryTokens) Insert(_ context.Context, t *token.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = *t
	return nil
}

func (m *memoryTokens) Consume(_ context.Context, id, hash string) (*token.Consumed, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.TokenHash != hash {
		return nil, false, nil
	}
	delete(m.rows, id)
	return &token.Consumed{UserID: row.UserID, ExpiresAt: row.ExpiresAt}, true, nil
}

func (m *memoryTokens) DeleteOne(_ context.Context, userID uuid.UUID, id, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.UserID != userID || row.TokenHash != hash {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *memoryTokens) DeleteAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.rows {
		if !now.Before(row.ExpiresAt) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryTokens) countFor(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.UserID == userID {
			n++
		}
	}
	return n
}

type memoryUsers struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*user.User
	tokens *memoryTokens
}

func newMemoryUsers(tokens *memoryTokens) *memoryUsers {
	return &memoryUsers{byID: map[uuid.UUID]*user.User{}, tokens: tokens}
}

func (m *memoryUsers) Create(_ context.Context, in user.CreateUserInput) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == in.Email {
			return nil, apperrors.Conflict("email already registered")
		}
	}
	now := time.Now()
	u := &user.User{
		ID: uuid.New(), Email: in.Email, PasswordHash: in.PasswordHash,
		DisplayName: in.DisplayName, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	m.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (m *memoryUsers) UpdateProfile(_ context.Context, id uuid.UUID, in user.UpdateProfileInput) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	if in.DisplayName != nil {
		u.DisplayName = *in.DisplayName
	}
	if in.AvatarURL != nil {
		u.AvatarURL = in.AvatarURL
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdatePasswordAndRevokeSessions(ctx context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	u, ok := m.byID[id]
	if ok {
		u.PasswordHash = hash
	}
	m.mu.Unlock()
	if !ok {
		return apperrors.NotFound("user not found")
	}
	_, err := m.tokens.DeleteAllForUser(ctx, id)
	return err
}

func (m *memoryUsers) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryUsers) DeactivateAndRevokeSessions(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	u, ok := m.byID[id]
	if ok {
		u.IsActive = false
	}
	m.mu.Unlock()
	if !ok {
		return apperrors.NotFound("user not found")
	}
	_, err := m.tokens.DeleteAllForUser(ctx, id)
	return err
}

const (
	testAccessSecret  = "k3J9xQ2mV8pL5nR7tW1yZ4bC6dF0gH2jA8sE"
	testRefreshSecret = "Zp4Lr8Tq2Wn6Yx0Vb3Mc7Hd1Kf5Gj9Sa2Ue"
)

type fixture struct {
	tokens   *memoryTokens
	users    *memoryUsers
	identity *IdentityStore
	tokenSvc *TokenService
	service  *Service
	now      time.Time
}

func (f *fixture) clock() time.Time { return f.now }

func newFixture(opts ...TokenOption) *fixture {
	f := &fixture{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	f.tokens = newMemoryTokens()
	f.users = newMemoryUsers(f.tokens)

	hasher, err := password.New(password.MinCost)
	if err != nil {
		panic(err)
	}
	log := logger.Discard()

	f.identity = NewIdentityStore(f.users, hasher, log)
	opts = append([]TokenOption{WithClock(f.clock)}, opts...)
	f.tokenSvc = NewTokenService(testAccessSecret, testRefreshSecret, f.tokens, f.identity, log, opts...)
	f.service = NewService(f.identity, f.tokenSvc, log)
	return f
}
