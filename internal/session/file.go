// Copyright (c) 2025 @AmarnathCJD

package session

import (
	"encoding/base64"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// authKeyLineWidth is the width the base64 auth key is wrapped at on disk.
const authKeyLineWidth = 43

type genericFileSessionLoader struct {
	mu         sync.Mutex
	path       string
	lastEdited time.Time
	cached     *Session
}

var _ SessionLoader = (*genericFileSessionLoader)(nil)

// NewFromFile stores the session as indented JSON at path.
func NewFromFile(path string) SessionLoader {
	return &genericFileSessionLoader{path: path}
}

func (l *genericFileSessionLoader) Path() string {
	return l.path
}

func (l *genericFileSessionLoader) Load() (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrSessionNotFound
	default:
		return nil, err
	}

	if info.ModTime().Equal(l.lastEdited) && l.cached != nil {
		return l.cached.Clone(), nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	file := new(sessionFileFormat)
	if err := json.Unmarshal(data, file); err != nil {
		return nil, errors.Wrap(err, "parsing file")
	}

	s, err := file.readSession()
	if err != nil {
		return nil, err
	}

	l.cached = s
	l.lastEdited = info.ModTime()
	return s.Clone(), nil
}

func (l *genericFileSessionLoader) Store(s *Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "creating %v", dir)
		}
	}

	file := new(sessionFileFormat)
	file.writeSession(s)
	data, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "writing session")
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return errors.Wrap(err, "writing session")
	}

	l.cached = nil
	return nil
}

func (l *genericFileSessionLoader) Delete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cached = nil
	return os.Remove(l.path)
}

type sessionFileFormat struct {
	DcID            int              `json:"dc_id"`
	TestMode        bool             `json:"test_mode"`
	AuthKey         []string         `json:"auth_key"`
	UserID          int64            `json:"user_id"`
	Date            int64            `json:"date"`
	IsBot           bool             `json:"is_bot"`
	PeersByID       map[int64]int64  `json:"peers_by_id"`
	PeersByUsername map[string]int64 `json:"peers_by_username"`
	PeersByPhone    map[string]int64 `json:"peers_by_phone"`
}

func (t *sessionFileFormat) writeSession(s *Session) {
	t.DcID = s.DcID
	t.TestMode = s.TestMode
	t.AuthKey = splitAuthKey(base64.StdEncoding.EncodeToString(s.AuthKey))
	t.UserID = s.UserID
	t.Date = s.Date
	t.IsBot = s.IsBot
	t.PeersByID = s.PeersByID
	t.PeersByUsername = s.PeersByUsername
	t.PeersByPhone = s.PeersByPhone
	if t.PeersByID == nil {
		t.PeersByID = map[int64]int64{}
	}
	if t.PeersByUsername == nil {
		t.PeersByUsername = map[string]int64{}
	}
	if t.PeersByPhone == nil {
		t.PeersByPhone = map[string]int64{}
	}
}

func (t *sessionFileFormat) readSession() (*Session, error) {
	key, err := base64.StdEncoding.DecodeString(strings.Join(t.AuthKey, ""))
	if err != nil {
		return nil, errors.Wrap(err, "invalid binary data of 'auth_key'")
	}

	s := &Session{
		DcID:            t.DcID,
		TestMode:        t.TestMode,
		AuthKey:         key,
		UserID:          t.UserID,
		Date:            t.Date,
		IsBot:           t.IsBot,
		PeersByID:       t.PeersByID,
		PeersByUsername: make(map[string]int64, len(t.PeersByUsername)),
		PeersByPhone:    make(map[string]int64, len(t.PeersByPhone)),
	}
	if s.PeersByID == nil {
		s.PeersByID = map[int64]int64{}
	}

	// secondary indexes pointing at unknown peers are dropped
	for name, id := range t.PeersByUsername {
		if _, ok := s.PeersByID[id]; ok {
			s.PeersByUsername[name] = id
		}
	}
	for phone, id := range t.PeersByPhone {
		if _, ok := s.PeersByID[id]; ok {
			s.PeersByPhone[phone] = id
		}
	}

	return s, nil
}

func splitAuthKey(encoded string) []string {
	lines := make([]string, 0, len(encoded)/authKeyLineWidth+1)
	for i := 0; i < len(encoded); i += authKeyLineWidth {
		end := min(i+authKeyLineWidth, len(encoded))
		lines = append(lines, encoded[i:end])
	}
	return lines
}

func NewInMemory() SessionLoader {
	return &inMemorySessionLoader{}
}

type inMemorySessionLoader struct {
	mu sync.Mutex
	s  *Session
}

var _ SessionLoader = (*inMemorySessionLoader)(nil)

func (l *inMemorySessionLoader) Path() string {
	return ":memory:"
}

func (l *inMemorySessionLoader) Load() (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.s == nil {
		return nil, ErrSessionNotFound
	}
	return l.s.Clone(), nil
}

func (l *inMemorySessionLoader) Store(s *Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.s = s.Clone()
	return nil
}

func (l *inMemorySessionLoader) Delete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.s = nil
	return nil
}
