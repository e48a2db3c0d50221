package database

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/flashnotes/backend/internal/models"
)

// DefaultMaxRecordBytes caps one topic's serialized deck at 1 MiB unless
// MAX_TOPIC_BYTES overrides it.
const DefaultMaxRecordBytes = 1 << 20

// KV is the postgres-backed key-value collaborator behind the card store.
// Writes larger than the record cap are rejected with
// models.ErrStorageCapacityExceeded and leave the stored value untouched.
type KV struct {
	db       *sql.DB
	maxBytes int
}

func NewKV(db *sql.DB) *KV {
	maxBytes := DefaultMaxRecordBytes
	if raw := os.Getenv("MAX_TOPIC_BYTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxBytes = n
		}
	}
	return &KV{db: db, maxBytes: maxBytes}
}

func (kv *KV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := kv.db.QueryRow(`SELECT value FROM topic_records WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

func (kv *KV) Set(key string, value []byte) error {
	if len(value) > kv.maxBytes {
		return models.ErrStorageCapacityExceeded
	}
	_, err := kv.db.Exec(
		`INSERT INTO topic_records (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (kv *KV) Delete(key string) error {
	_, err := kv.db.Exec(`DELETE FROM topic_records WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}
