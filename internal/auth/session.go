package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/geocoder89/backoffice/internal/domain/user"
)

// SessionCookie is the cookie carrying the raw session token.
const SessionCookie = "session_token"

// ErrSessionNotFound is what stores return for an unknown token hash.
var ErrSessionNotFound = errors.New("session not found")

// Record is a persisted session. Only the HMAC of the raw token is stored;
// the raw value exists client-side only.
type Record struct {
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	User      user.CurrentUser
}

// Keep this small interface so tests can fake it easily.
type SessionStore interface {
	Create(ctx context.Context, rec Record) error
	GetByTokenHash(ctx context.Context, tokenHash string) (Record, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	store  SessionStore
}

func NewManager(secret string, ttl time.Duration, store SessionStore) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
	}
}

// HashToken is a deterministic secret-keyed HMAC. A leaked sessions table
// alone cannot be replayed without the server secret.
func (m *Manager) HashToken(raw string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

func (m *Manager) tokensMatch(raw, storedHex string) bool {
	stored, err := hex.DecodeString(storedHex)

	if err != nil {
		return false
	}

	computed, err := hex.DecodeString(m.HashToken(raw))

	if err != nil {
		return false
	}

	return hmac.Equal(stored, computed)
}

// CreateSession mints a raw token with 32 bytes of entropy, persists its
// hash, and hands the raw value back exactly once. The caller delivers it
// to the client as the session cookie.
func (m *Manager) CreateSession(ctx context.Context, userID int64) (string, time.Time, error) {
	buf := make([]byte, 32)

	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}

	raw := hex.EncodeToString(buf)
	expiresAt := time.Now().UTC().Add(m.ttl)

	err := m.store.Create(ctx, Record{
		TokenHash: m.HashToken(raw),
		UserID:    userID,
		ExpiresAt: expiresAt,
	})

	if err != nil {
		return "", time.Time{}, err
	}

	return raw, expiresAt, nil
}

// GetCurrentUser resolves a raw token to its user. Absent, expired, and
// tampered sessions all collapse to (nil, nil) so callers cannot tell them
// apart. Expired records are purged as a side effect.
func (m *Manager) GetCurrentUser(ctx context.Context, raw string) (*user.CurrentUser, error) {
	if raw == "" {
		return nil, nil
	}

	tokenHash := m.HashToken(raw)

	rec, err := m.store.GetByTokenHash(ctx, tokenHash)

	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}

		return nil, err
	}

	if time.Now().UTC().After(rec.ExpiresAt) {
		// lazy expiry; no background sweeper
		if err := m.store.DeleteByTokenHash(ctx, tokenHash); err != nil {
			return nil, err
		}

		return nil, nil
	}

	// re-verify the looked-up hash against the presented token before
	// trusting the record
	if !m.tokensMatch(raw, rec.TokenHash) {
		if err := m.store.DeleteByTokenHash(ctx, tokenHash); err != nil {
			return nil, err
		}

		return nil, nil
	}

	u := rec.User

	return &u, nil
}

// ClearSession deletes the record matching the token's hash. Idempotent.
func (m *Manager) ClearSession(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}

	err := m.store.DeleteByTokenHash(ctx, m.HashToken(raw))

	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}

	return err
}
