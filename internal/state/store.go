// Package state persists console-local state (auth session, selected agent)
// in SQLite so it survives across invocations.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/anonymeye/apex-platform/pkg/types"
	_ "modernc.org/sqlite"
)

const (
	sessionKey       = "auth.session"
	selectedAgentKey = "agent.selected"
)

// Store is a SQLite-backed key-value store for console state. Values are
// mutated only from the single CLI invocation that owns the store; WAL mode
// keeps concurrent invocations from corrupting each other.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the state database at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New creates the console_state table if it doesn't exist and returns a
// Store backed by the provided *sql.DB.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS console_state (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create console_state table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, value any) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO console_state(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, blob, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// get decodes the value under key into out. Returns (false, nil) when the
// key is absent.
func (s *Store) get(key string, out any) (bool, error) {
	row := s.db.QueryRow(`SELECT value FROM console_state WHERE key = ?`, key)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM console_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// SaveSession persists the authenticated session.
func (s *Store) SaveSession(session *types.Session) error {
	return s.put(sessionKey, session)
}

// Session returns the persisted session, or nil when not logged in.
func (s *Store) Session() (*types.Session, error) {
	var session types.Session
	ok, err := s.get(sessionKey, &session)
	if err != nil {
		return nil, err
	}
	if !ok || session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

// ClearSession removes the persisted session (logout, or after a 401).
func (s *Store) ClearSession() error {
	return s.delete(sessionKey)
}

// SaveSelectedAgent persists the agent id the console is operating on.
func (s *Store) SaveSelectedAgent(agentID string) error {
	return s.put(selectedAgentKey, agentID)
}

// SelectedAgent returns the persisted selected agent id, or "" when unset.
func (s *Store) SelectedAgent() (string, error) {
	var id string
	ok, err := s.get(selectedAgentKey, &id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return id, nil
}

// ClearSelectedAgent removes the persisted agent selection.
func (s *Store) ClearSelectedAgent() error {
	return s.delete(selectedAgentKey)
}
