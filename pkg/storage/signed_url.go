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

// SignedURLSigner creates and validates signed download tokens for exports.
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

// Generate returns a signed token referencing the export and its file path.
func (s *SignedURLSigner) Generate(exportID, relPath string) (string, time.Time, error) {
	if exportID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("exportID and relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	signature := s.sign(exportID, strconv.FormatInt(expiresAt.Unix(), 10), encodedPath)
	token := strings.Join([]string{exportID, strconv.FormatInt(expiresAt.Unix(), 10), encodedPath, signature}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded metadata.
func (s *SignedURLSigner) Parse(token string) (exportID, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("invalid token format")
	}
	exportID, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode path: %w", err)
	}

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)

	expected := s.sign(exportID, ts, encodedPath)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("invalid token signature")
	}
	if time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}
	return exportID, string(rawPath), expiresAt, nil
}

func (s *SignedURLSigner) sign(exportID, ts, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(exportID + "|" + ts + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
