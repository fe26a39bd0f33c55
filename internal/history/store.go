// Package history persists chat sessions and messages to sqlite for audit.
// The display transcript stays in memory; this store is write-mostly.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Message is one persisted transcript entry. Error turns are stored with
// IsError set even though the display transcript drops them.
type Message struct {
	ID        int64
	SessionID int64
	Role      string
	Content   string
	Tools     string
	IsError   bool
	CreatedAt string
}

// Store is a sqlite-backed transcript store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tools TEXT NOT NULL DEFAULT '',
			is_error INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate history db: %w", err)
		}
	}
	return nil
}

// CreateSession starts a new session and returns its ID.
func (s *Store) CreateSession(ctx context.Context, title string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO sessions (title) VALUES (?)", title)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return res.LastInsertId()
}

// SaveMessage appends one message to a session.
func (s *Store) SaveMessage(ctx context.Context, msg *Message) error {
	isError := 0
	if msg.IsError {
		isError = 1
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (session_id, role, content, tools, is_error) VALUES (?, ?, ?, ?, ?)",
		msg.SessionID, msg.Role, msg.Content, msg.Tools, isError)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	msg.ID, _ = res.LastInsertId()
	return nil
}

// Messages returns all messages of a session in insertion order.
func (s *Store) Messages(ctx context.Context, sessionID int64) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, role, content, tools, is_error, created_at FROM messages WHERE session_id = ? ORDER BY id",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		var isError int
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Tools, &isError, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.IsError = isError != 0
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
