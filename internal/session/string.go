// Copyright (c) 2024 RoseLoverX

package session

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	stringPrefix = "1BvX"
	// dc, test flag, bot flag, key length in 8 byte words, user id, date
	headerLen = 20
)

var ErrInvalidSession = errors.New("the session string is invalid/has been tampered with")

// EncodeString packs the account part of s (no peers) into a printable
// string.
func EncodeString(s *Session) string {
	buf := make([]byte, headerLen, headerLen+len(s.AuthKey))
	buf[0] = byte(s.DcID)
	if s.TestMode {
		buf[1] = 1
	}
	if s.IsBot {
		buf[2] = 1
	}
	buf[3] = byte(len(s.AuthKey) / 8)
	binary.LittleEndian.PutUint64(buf[4:], uint64(s.UserID))
	binary.LittleEndian.PutUint64(buf[12:], uint64(s.Date))
	buf = append(buf, s.AuthKey...)

	return stringPrefix + base64.RawURLEncoding.EncodeToString(buf)
}

func DecodeString(encoded string) (*Session, error) {
	if !strings.HasPrefix(encoded, stringPrefix) {
		return nil, ErrInvalidSession
	}
	data, err := base64.RawURLEncoding.DecodeString(encoded[len(stringPrefix):])
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSession, err.Error())
	}
	if len(data) < headerLen || len(data)-headerLen != int(data[3])*8 || data[0] == 0 {
		return nil, ErrInvalidSession
	}

	return &Session{
		DcID:            int(data[0]),
		TestMode:        data[1] == 1,
		IsBot:           data[2] == 1,
		UserID:          int64(binary.LittleEndian.Uint64(data[4:12])),
		Date:            int64(binary.LittleEndian.Uint64(data[12:headerLen])),
		AuthKey:         append([]byte(nil), data[headerLen:]...),
		PeersByID:       map[int64]int64{},
		PeersByUsername: map[string]int64{},
		PeersByPhone:    map[string]int64{},
	}, nil
}

type StringLoader struct {
	mu      sync.Mutex
	encoded string
	peers   *Session
}

var _ SessionLoader = (*StringLoader)(nil)

// NewStringSession keeps the session as a string; peers live only in memory.
// An empty string means no session yet.
func NewStringSession(encoded string) *StringLoader {
	return &StringLoader{encoded: encoded}
}

func (l *StringLoader) Path() string {
	return ":string:"
}

// Encoded returns the current session string.
func (l *StringLoader) Encoded() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.encoded
}

func (l *StringLoader) Load() (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.encoded == "" {
		return nil, ErrSessionNotFound
	}
	s, err := DecodeString(l.encoded)
	if err != nil {
		return nil, err
	}
	if l.peers != nil {
		s.PeersByID = l.peers.Clone().PeersByID
		s.PeersByUsername = cloneIndex(l.peers.PeersByUsername)
		s.PeersByPhone = cloneIndex(l.peers.PeersByPhone)
	}
	return s, nil
}

func (l *StringLoader) Store(s *Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.encoded = EncodeString(s)
	l.peers = s.Clone()
	return nil
}

func (l *StringLoader) Delete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.encoded = ""
	l.peers = nil
	return nil
}
