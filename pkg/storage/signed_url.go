package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner creates and validates signed media download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Generate returns a signed token referencing the media blob ref.
func (s *SignedURLSigner) Generate(ref string) (string, time.Time, error) {
	if ref == "" {
		return "", time.Time{}, fmt.Errorf("ref required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encodedRef := base64.RawURLEncoding.EncodeToString([]byte(ref))
	payload := fmt.Sprintf("%d|%s", expiresAt.Unix(), encodedRef)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	token := strings.Join([]string{strconv.FormatInt(expiresAt.Unix(), 10), encodedRef, signature}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded blob ref.
func (s *SignedURLSigner) Parse(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed token")
	}
	expiresUnix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed expiry: %w", err)
	}
	payload := fmt.Sprintf("%d|%s", expiresUnix, parts[1])
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", fmt.Errorf("invalid signature")
	}
	if time.Now().After(time.Unix(expiresUnix, 0)) {
		return "", fmt.Errorf("token expired")
	}
	refBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed ref: %w", err)
	}
	return string(refBytes), nil
}
