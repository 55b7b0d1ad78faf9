// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	mtproto "github.com/roseloverx/mtproto"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/utils"
)

// answerFunc scripts the server. Returning nil, nil falls back to the
// default answers.
type answerFunc func(s *fakeSender, req tl.Object) (any, error)

// fakeSender stands in for a transport session. Requests are recorded
// with their connection wrappers removed.
type fakeSender struct {
	mu         sync.Mutex
	dc         int
	key        []byte
	state      mtproto.State
	updates    *utils.Queue[tl.Object]
	answer     answerFunc
	raw        []tl.Object
	requests   []tl.Object
	migrations []int
}

func (s *fakeSender) MakeRequest(_ context.Context, msg tl.Object) (any, error) {
	req := unwrapRequest(msg)
	s.mu.Lock()
	s.raw = append(s.raw, msg)
	s.requests = append(s.requests, req)
	answer := s.answer
	s.mu.Unlock()

	if answer != nil {
		if res, err := answer(s, req); res != nil || err != nil {
			return res, err
		}
	}
	return defaultAnswer(s, req)
}

func unwrapRequest(msg tl.Object) tl.Object {
	for {
		switch v := msg.(type) {
		case *InvokeWithLayerParams:
			msg = v.Query
		case *InitConnectionParams:
			msg = v.Query
		case *InvokeWithoutUpdatesParams:
			msg = v.Query
		default:
			return msg
		}
	}
}

const testUserID = 42

func defaultAnswer(s *fakeSender, req tl.Object) (any, error) {
	switch req.(type) {
	case *HelpGetConfigParams:
		return &Config{ThisDc: int32(s.DcID())}, nil
	case *UpdatesGetStateParams:
		return &UpdatesState{Pts: 1, Date: 1}, nil
	case *AuthImportBotAuthorizationParams:
		return &AuthAuthorizationObj{User: &UserObj{ID: testUserID, AccessHash: 1, Bot: true, Username: "TestBot"}}, nil
	case *AuthExportAuthorizationParams:
		return &AuthExportedAuthorization{ID: testUserID, Bytes: []byte{1, 2, 3}}, nil
	case *AuthImportAuthorizationParams:
		return &AuthAuthorizationObj{User: &UserObj{ID: testUserID, AccessHash: 1}}, nil
	case *AuthLogOutParams:
		return &AuthLoggedOut{}, nil
	}
	return nil, errors.Errorf("no answer scripted for %T", req)
}

func (s *fakeSender) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = mtproto.StateRunning
	return nil
}

func (s *fakeSender) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != mtproto.StateRunning {
		return &mtproto.InvalidStateError{Op: "stop", State: s.state}
	}
	s.state = mtproto.StateStopped
	return nil
}

func (s *fakeSender) Migrate(_ context.Context, dcID int, _ string, key *mtproto.AuthKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc, s.key = dcID, key.Key
	s.migrations = append(s.migrations, dcID)
	return nil
}

func (s *fakeSender) ExportAuthKey() *mtproto.AuthKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &mtproto.AuthKey{DcID: s.dc, Key: s.key}
}

func (s *fakeSender) Updates() *utils.Queue[tl.Object] { return s.updates }

func (s *fakeSender) DcID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc
}

func (s *fakeSender) State() mtproto.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSender) sent() []tl.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tl.Object(nil), s.requests...)
}

// harness is a Client wired to fake sessions and a fake key exchange.
type harness struct {
	t *testing.T
	c *Client

	mu       sync.Mutex
	sessions []*fakeSender
	keys     []int
	cdnKeys  []int
	answer   answerFunc
}

func botConfig() ClientConfig {
	return ClientConfig{AppID: 1, AppHash: "hash", BotToken: "1:token"}
}

func newHarness(t *testing.T, cfg ClientConfig) *harness {
	t.Helper()
	if cfg.SessionStorage == nil {
		cfg.SessionStorage = NewMemorySession()
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	c.Log = utils.NewDiscardLogger()
	c.scratchDir = t.TempDir()

	h := &harness{t: t, c: c}
	c.newSender = func(mc mtproto.Config) (sender, error) {
		s := &fakeSender{
			dc:      mc.DcID,
			key:     mc.AuthKey,
			updates: utils.NewQueue[tl.Object](),
			answer:  h.route,
		}
		h.mu.Lock()
		h.sessions = append(h.sessions, s)
		h.mu.Unlock()
		return s, nil
	}
	c.createKey = func(_ context.Context, dcID int, cdn bool) (*mtproto.AuthKey, error) {
		h.mu.Lock()
		if cdn {
			h.cdnKeys = append(h.cdnKeys, dcID)
		} else {
			h.keys = append(h.keys, dcID)
		}
		h.mu.Unlock()
		return &mtproto.AuthKey{DcID: dcID, Key: utils.RandomBytes(256)}, nil
	}

	t.Cleanup(func() {
		if c.running.Load() {
			_ = c.Stop()
		}
	})
	return h
}

func (h *harness) route(s *fakeSender, req tl.Object) (any, error) {
	h.mu.Lock()
	answer := h.answer
	h.mu.Unlock()
	if answer == nil {
		return nil, nil
	}
	return answer(s, req)
}

func (h *harness) setAnswer(f answerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.answer = f
}

// captureLogs routes the client's log to the returned hook. Call it before
// start.
func (h *harness) captureLogs() *test.Hook {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h.c.Log = utils.FromLogrus(logger)
	return hook
}

// logged reports whether an entry at level contains msg.
func logged(hook *test.Hook, level logrus.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, msg) {
			return true
		}
	}
	return false
}

func (h *harness) start() *Client {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(h.t, h.c.Start(ctx))
	return h.c
}

// main is the first session created, the client's home session.
func (h *harness) main() *fakeSender {
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(h.t, h.sessions)
	return h.sessions[0]
}

func (h *harness) allSessions() []*fakeSender {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*fakeSender(nil), h.sessions...)
}

func (h *harness) createdKeys() (keys, cdn []int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.keys...), append([]int(nil), h.cdnKeys...)
}

// count returns how many requests of type T all sessions received.
func count[T tl.Object](h *harness) int {
	n := 0
	for _, s := range h.allSessions() {
		for _, req := range s.sent() {
			if _, ok := req.(T); ok {
				n++
			}
		}
	}
	return n
}

func rpcError(name string, info any) error {
	return &mtproto.ErrResponseCode{Code: 400, Message: name, Description: name, AdditionalInfo: info}
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
