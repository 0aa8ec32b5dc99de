package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"projecthub/internal/ids"
)

// hashRefreshSecret returns the hex HMAC-SHA256 of the secret half of a
// refresh token value, keyed with the refresh signing secret.
func hashRefreshSecret(key []byte, secret string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

func randomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// splitRefreshValue parses "<id>.<secret>". ok is false for anything else.
func splitRefreshValue(value string) (id, secret string, ok bool) {
	id, secret, found := strings.Cut(strings.TrimSpace(value), refreshValueSep)
	if !found || secret == "" || !ids.Valid(id) {
		return "", "", false
	}
	return id, secret, true
}

func joinRefreshValue(id, secret string) string {
	return id + refreshValueSep + secret
}
