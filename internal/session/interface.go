// Copyright (c) 2024 RoseLoverX

package session

import "github.com/pkg/errors"

// SessionLoader is the interface which allows you to access sessions from different storages (like
// filesystem, database, etc.)
type SessionLoader interface {
	Load() (*Session, error)
	Store(*Session) error
	Path() string
	Delete() error
}

// Session is the durable state of an account: the data center it is tied
// to, its auth key and the known peers. Peers are kept as id -> access hash;
// the kind of a peer follows from the sign and prefix of its id.
type Session struct {
	DcID     int
	TestMode bool
	AuthKey  []byte
	UserID   int64
	// Date is the unix time of the last sync
	Date  int64
	IsBot bool

	PeersByID       map[int64]int64
	PeersByUsername map[string]int64
	PeersByPhone    map[string]int64
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	c := *s
	c.AuthKey = append([]byte(nil), s.AuthKey...)
	c.PeersByID = make(map[int64]int64, len(s.PeersByID))
	for k, v := range s.PeersByID {
		c.PeersByID[k] = v
	}
	c.PeersByUsername = cloneIndex(s.PeersByUsername)
	c.PeersByPhone = cloneIndex(s.PeersByPhone)
	return &c
}

func cloneIndex(m map[string]int64) map[string]int64 {
	res := make(map[string]int64, len(m))
	for k, v := range m {
		res[k] = v
	}
	return res
}

var ErrSessionNotFound = errors.New("session not found")
