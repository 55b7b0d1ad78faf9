// Copyright (c) 2024 RoseLoverX

package session

import (
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteLoader stores sessions in a sqlite database.
type SQLiteLoader struct {
	mu   sync.Mutex
	conn *sql.DB
	path string
	name string
}

var _ SessionLoader = (*SQLiteLoader)(nil)

// NewSQLite keeps sessions in the sqlite database at path, keyed by name, so
// one database can hold several accounts.
func NewSQLite(path, name string) (*SQLiteLoader, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// one writer, shared memory databases stay alive
	conn.SetMaxOpenConns(1)

	l := &SQLiteLoader{conn: conn, path: path, name: name}
	if err := l.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

func (l *SQLiteLoader) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			name TEXT PRIMARY KEY,
			dc_id INTEGER NOT NULL,
			test_mode INTEGER NOT NULL,
			auth_key BLOB NOT NULL,
			user_id INTEGER NOT NULL DEFAULT 0,
			date INTEGER NOT NULL DEFAULT 0,
			is_bot INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS peers (
			session TEXT NOT NULL REFERENCES sessions(name) ON DELETE CASCADE,
			id INTEGER NOT NULL,
			access_hash INTEGER NOT NULL,
			username TEXT,
			phone TEXT,
			PRIMARY KEY(session, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_peers_username ON peers(session, username)`,
	}

	for _, query := range queries {
		if _, err := l.conn.Exec(query); err != nil {
			return errors.Wrap(err, "creating tables")
		}
	}
	return nil
}

func (l *SQLiteLoader) Path() string {
	return l.path
}

func (l *SQLiteLoader) Close() error {
	return l.conn.Close()
}

func (l *SQLiteLoader) Load() (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &Session{
		PeersByID:       map[int64]int64{},
		PeersByUsername: map[string]int64{},
		PeersByPhone:    map[string]int64{},
	}
	row := l.conn.QueryRow(
		`SELECT dc_id, test_mode, auth_key, user_id, date, is_bot FROM sessions WHERE name = ?`, l.name,
	)
	err := row.Scan(&s.DcID, &s.TestMode, &s.AuthKey, &s.UserID, &s.Date, &s.IsBot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading session")
	}

	rows, err := l.conn.Query(`SELECT id, access_hash, username, phone FROM peers WHERE session = ?`, l.name)
	if err != nil {
		return nil, errors.Wrap(err, "reading peers")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, hash        int64
			username, phone sql.NullString
		)
		if err := rows.Scan(&id, &hash, &username, &phone); err != nil {
			return nil, errors.Wrap(err, "reading peers")
		}
		s.PeersByID[id] = hash
		if username.Valid && username.String != "" {
			s.PeersByUsername[username.String] = id
		}
		if phone.Valid && phone.String != "" {
			s.PeersByPhone[phone.String] = id
		}
	}
	return s, errors.Wrap(rows.Err(), "reading peers")
}

func (l *SQLiteLoader) Store(s *Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.conn.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (name, dc_id, test_mode, auth_key, user_id, date, is_bot) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET dc_id = excluded.dc_id, test_mode = excluded.test_mode,
		auth_key = excluded.auth_key, user_id = excluded.user_id, date = excluded.date, is_bot = excluded.is_bot`,
		l.name, s.DcID, s.TestMode, s.AuthKey, s.UserID, s.Date, s.IsBot,
	)
	if err != nil {
		return errors.Wrap(err, "writing session")
	}

	usernames := invert(s.PeersByUsername)
	phones := invert(s.PeersByPhone)

	stmt, err := tx.Prepare(
		`INSERT INTO peers (session, id, access_hash, username, phone) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session, id) DO UPDATE SET access_hash = excluded.access_hash,
		username = COALESCE(excluded.username, peers.username), phone = COALESCE(excluded.phone, peers.phone)`,
	)
	if err != nil {
		return errors.Wrap(err, "writing peers")
	}
	defer stmt.Close()

	for id, hash := range s.PeersByID {
		if _, err := stmt.Exec(l.name, id, hash, nullString(usernames[id]), nullString(phones[id])); err != nil {
			return errors.Wrap(err, "writing peers")
		}
	}

	return errors.Wrap(tx.Commit(), "committing session")
}

func (l *SQLiteLoader) Delete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.conn.Exec(`DELETE FROM sessions WHERE name = ?`, l.name)
	return errors.Wrap(err, "deleting session")
}

func invert(m map[string]int64) map[int64]string {
	res := make(map[int64]string, len(m))
	for k, v := range m {
		res[v] = k
	}
	return res
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
