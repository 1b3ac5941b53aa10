package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ukmcatur/caturbot/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			chat_id INTEGER PRIMARY KEY,
			token TEXT NOT NULL DEFAULT '',
			user_id INTEGER NOT NULL DEFAULT 0,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'MEMBER',
			logged_in INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notified_schedules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL,
			schedule_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			sent_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(chat_id, schedule_id, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notified_chat ON notified_schedules(chat_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Ignore "duplicate column" errors for ALTER TABLE
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("exec migration: %w", err)
			}
		}
	}
	return nil
}

// === Sessions ===

// SaveSession writes the whole login state for a chat, replacing any
// previous one.
func (s *Storage) SaveSession(sess *domain.Session) error {
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO sessions (chat_id, token, user_id, name, email, role, logged_in, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			logged_in = excluded.logged_in,
			updated_at = excluded.updated_at`,
		sess.ChatID, sess.Token, sess.UserID, sess.Name, sess.Email, string(sess.Role), sess.LoggedIn, now, now,
	)
	if err != nil {
		return err
	}
	sess.UpdatedAt = now
	return nil
}

// GetSession returns the login state for a chat, or nil when the chat
// has never logged in.
func (s *Storage) GetSession(chatID int64) (*domain.Session, error) {
	sess := &domain.Session{}
	var role string
	err := s.db.QueryRow(
		`SELECT chat_id, token, user_id, name, email, role, logged_in, created_at, updated_at
		 FROM sessions WHERE chat_id = ?`,
		chatID,
	).Scan(&sess.ChatID, &sess.Token, &sess.UserID, &sess.Name, &sess.Email, &role, &sess.LoggedIn, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.Role = domain.Role(role)
	return sess, nil
}

// ClearSession wipes the login state for a chat. Called at logout and
// when the token turns out to be expired.
func (s *Storage) ClearSession(chatID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE chat_id = ?`, chatID)
	return err
}

// ListActiveSessions returns every logged-in chat, for scheduled sends.
func (s *Storage) ListActiveSessions() ([]*domain.Session, error) {
	rows, err := s.db.Query(
		`SELECT chat_id, token, user_id, name, email, role, logged_in, created_at, updated_at
		 FROM sessions WHERE logged_in = 1 ORDER BY chat_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		sess := &domain.Session{}
		var role string
		if err := rows.Scan(&sess.ChatID, &sess.Token, &sess.UserID, &sess.Name, &sess.Email, &role, &sess.LoggedIn, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		sess.Role = domain.Role(role)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// === Reminder dedupe ===

// MarkNotified records that a reminder of the given kind went out to a
// chat for a schedule. Returns false when it was already recorded.
func (s *Storage) MarkNotified(chatID, scheduleID int64, kind string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO notified_schedules (chat_id, schedule_id, kind) VALUES (?, ?, ?)`,
		chatID, scheduleID, kind,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WasNotified reports whether a reminder already went out.
func (s *Storage) WasNotified(chatID, scheduleID int64, kind string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notified_schedules WHERE chat_id = ? AND schedule_id = ? AND kind = ?`,
		chatID, scheduleID, kind,
	).Scan(&count)
	return count > 0, err
}
