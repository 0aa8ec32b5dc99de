package token

import (
	"time"

	"github.com/google/uuid"
)

const TypeBearer = "Bearer"

// RefreshToken is one live session. The secret half of the wire value is
// never stored; only its keyed hash is.
type RefreshToken struct {
	ID        string
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Pair is what clients receive after register, login and refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Consumed is what an atomic consume of a refresh row reports back.
type Consumed struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}
