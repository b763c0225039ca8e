package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// sessionName is the row key of the persisted endpoint.
const sessionName = "glbt-state"

// SessionRepo is the SQLite implementation of the SessionStore port. The
// endpoint is serialized as {"u": url, "t": token} and encrypted with
// AES-256-GCM before write.
type SessionRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when persistence is disabled.
}

// NewSessionRepo creates a new SessionRepo. key must be 32 bytes, or nil to
// disable persistence (Save and Load return ErrEncryptionKeyNotSet).
func NewSessionRepo(db *DB, key []byte) *SessionRepo {
	return &SessionRepo{db: db, key: key}
}

// Save stores or replaces the persisted endpoint.
func (r *SessionRepo) Save(ctx context.Context, ep model.Endpoint) error {
	plaintext, err := json.Marshal(ep)
	if err != nil {
		return fmt.Errorf("marshal endpoint: %w", err)
	}

	encrypted, err := r.encrypt(plaintext)
	if err != nil {
		return err
	}

	const query = `INSERT OR REPLACE INTO sessions (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, sessionName, encrypted); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the persisted endpoint, or (nil, nil) when none exists.
func (r *SessionRepo) Load(ctx context.Context) (*model.Endpoint, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT value FROM sessions WHERE name = ?`
	var encrypted string
	err := r.db.Reader.QueryRowContext(ctx, query, sessionName).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	plaintext, err := r.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypt session: %w", err)
	}

	var ep model.Endpoint
	if err := json.Unmarshal(plaintext, &ep); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &ep, nil
}

// Clear removes the persisted endpoint. It works without a key so that a
// logout always succeeds.
func (r *SessionRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM sessions WHERE name = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, sessionName); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// encrypt returns base64(nonce || ciphertext || tag).
func (r *SessionRepo) encrypt(plaintext []byte) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (r *SessionRepo) decrypt(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("gcm.Open: %w", err)
	}
	return plaintext, nil
}

func (r *SessionRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
