// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mtproto "github.com/roseloverx/mtproto"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/session"
)

func TestNewClientRequiresAppCredentials(t *testing.T) {
	_, err := NewClient(ClientConfig{AppHash: "hash"})
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{AppID: 1})
	assert.Error(t, err)
}

func TestClientDefaults(t *testing.T) {
	c, err := NewClient(ClientConfig{AppID: 1, AppHash: "hash"})
	require.NoError(t, err)

	assert.Equal(t, DefaultDC, c.cfg.DataCenter)
	assert.Equal(t, defaultDownloadWorkers, c.cfg.DownloadWorkers)
	assert.Equal(t, defaultFloodSleepThreshold, c.cfg.FloodSleepThreshold)
	assert.Equal(t, defaultSessionSyncInterval, c.cfg.SessionSyncInterval)
	assert.Equal(t, "session.session", c.storage.Path())
	assert.Equal(t, "en", c.cfg.LangCode)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TG_APP_ID", "12345")
	t.Setenv("TG_APP_HASH", "abcdef")
	t.Setenv("TG_BOT_TOKEN", "1:token")
	t.Setenv("TG_PROXY", "socks5://127.0.0.1:1080")
	t.Setenv("TG_LOG_LEVEL", "debug")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 12345, cfg.AppID)
	assert.Equal(t, "abcdef", cfg.AppHash)
	assert.Equal(t, "1:token", cfg.BotToken)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Proxy)
	assert.Equal(t, "127.0.0.1:1080", cfg.Proxy.Host)

	t.Setenv("TG_APP_ID", "not a number")
	_, err = ConfigFromEnv()
	assert.Error(t, err)
}

func TestStartAuthorizesBot(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	assert.True(t, c.IsConnected())
	assert.Equal(t, 1, c.DcID())
	assert.Equal(t, int64(testUserID), c.UserID())
	assert.True(t, c.IsBot())
	assert.Equal(t, 1, count[*AuthImportBotAuthorizationParams](h))

	// the authorized user lands in the peer directory
	_, ok := c.Peers.Lookup(testUserID)
	assert.True(t, ok)
	ref, ok := c.Peers.LookupUsername("testbot")
	require.True(t, ok)
	assert.Equal(t, int64(testUserID), ref.ID)

	// the first request of the session is wrapped in initConnection
	first := h.main().raw[0]
	layer, ok := first.(*InvokeWithLayerParams)
	require.True(t, ok, "got %T", first)
	assert.Equal(t, int32(ApiVersion), layer.Layer)
	initConn, ok := layer.Query.(*InitConnectionParams)
	require.True(t, ok)
	assert.Equal(t, int32(1), initConn.ApiID)
}

func TestStartTwiceIsInvalid(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	err := c.Start(testContext(t))
	var stateErr *mtproto.InvalidStateError
	require.True(t, errors.As(err, &stateErr), "got %v", err)
	assert.Equal(t, mtproto.StateRunning, stateErr.State)
}

func TestStopWhenNotRunning(t *testing.T) {
	h := newHarness(t, botConfig())

	var stateErr *mtproto.InvalidStateError
	assert.True(t, errors.As(h.c.Stop(), &stateErr))

	c := h.start()
	require.NoError(t, c.Stop())
	assert.False(t, c.IsConnected())
	assert.True(t, errors.As(c.Stop(), &stateErr))
}

func TestRestartReusesStoredKey(t *testing.T) {
	storage := NewMemorySession()
	cfg := botConfig()
	cfg.SessionStorage = storage
	h := newHarness(t, cfg)

	h.start()
	require.NoError(t, h.c.Stop())

	stored, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DcID)
	assert.Equal(t, int64(testUserID), stored.UserID)
	assert.True(t, stored.IsBot)
	assert.Equal(t, h.main().key, stored.AuthKey)

	h.start()
	keys, _ := h.createdKeys()
	assert.Equal(t, []int{1}, keys, "the second start must not create a key")
	assert.Equal(t, 1, count[*AuthImportBotAuthorizationParams](h), "the second start must not log in again")
	assert.Equal(t, stored.AuthKey, h.allSessions()[1].key)
}

func TestSessionSavedWhileRunning(t *testing.T) {
	storage := NewMemorySession()
	cfg := botConfig()
	cfg.SessionStorage = storage
	cfg.SessionSyncInterval = 20 * time.Millisecond
	h := newHarness(t, cfg)

	c := h.start()
	c.Peers.FetchPeers(&UserObj{ID: 10, AccessHash: 100})

	require.Eventually(t, func() bool {
		stored, err := storage.Load()
		return err == nil && stored.PeersByID[10] == 100
	}, 2*time.Second, 10*time.Millisecond, "peers learned after start reach storage without Stop")
	assert.True(t, c.IsConnected())
}

func TestSessionSyncDisabled(t *testing.T) {
	storage := NewMemorySession()
	cfg := botConfig()
	cfg.SessionStorage = storage
	cfg.SessionSyncInterval = -1
	h := newHarness(t, cfg)

	c := h.start()
	c.Peers.FetchPeers(&UserObj{ID: 10, AccessHash: 100})
	time.Sleep(50 * time.Millisecond)

	stored, err := storage.Load()
	require.NoError(t, err)
	assert.NotContains(t, stored.PeersByID, int64(10))

	require.NoError(t, c.Stop())
	stored, err = storage.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(100), stored.PeersByID[10])
}

func TestStartWithoutCredentials(t *testing.T) {
	h := newHarness(t, ClientConfig{AppID: 1, AppHash: "hash"})
	err := h.c.Start(testContext(t))
	assert.True(t, errors.Is(err, ErrNotAuthorized), "got %v", err)
	assert.Equal(t, mtproto.StateStopped, h.main().State())
}

func TestStartRejectsSessionOfOtherMode(t *testing.T) {
	storage := NewMemorySession()
	require.NoError(t, storage.Store(&session.Session{DcID: 2, TestMode: true, AuthKey: make([]byte, 256)}))
	cfg := botConfig()
	cfg.SessionStorage = storage
	h := newHarness(t, cfg)

	assert.Error(t, h.c.Start(testContext(t)))
}

func TestSendFollowsMigrate(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	h.setAnswer(func(s *fakeSender, req tl.Object) (any, error) {
		if _, ok := req.(*UsersGetUsersParams); !ok {
			return nil, nil
		}
		if s.DcID() != 4 {
			return nil, rpcError("USER_MIGRATE_X", 4)
		}
		return []tl.Object{&UserObj{ID: 7, AccessHash: 9}}, nil
	})

	users, err := c.UsersGetUsers(testContext(t), []InputUser{&InputUserObj{UserID: 7}})
	require.NoError(t, err)
	require.Len(t, users, 1)

	assert.Equal(t, 4, c.DcID())
	assert.Equal(t, []int{4}, h.main().migrations)
	keys, _ := h.createdKeys()
	assert.Equal(t, []int{1, 4}, keys)

	ref, ok := c.Peers.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, int64(9), ref.AccessHash)
}

func TestSendStopsAfterTooManyRedirects(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	h.setAnswer(func(s *fakeSender, req tl.Object) (any, error) {
		if _, ok := req.(*UsersGetUsersParams); !ok {
			return nil, nil
		}
		if s.DcID() == 2 {
			return nil, rpcError("USER_MIGRATE_X", 3)
		}
		return nil, rpcError("USER_MIGRATE_X", 2)
	})

	_, err := c.UsersGetUsers(testContext(t), []InputUser{&InputUserObj{UserID: 7}})
	assert.True(t, errors.Is(err, ErrTooManyRedirects), "got %v", err)
	assert.Len(t, h.main().migrations, maxRedirects)
}

func TestSendSleepsThroughShortFloodWait(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	calls := 0
	h.setAnswer(func(_ *fakeSender, req tl.Object) (any, error) {
		if _, ok := req.(*UsersGetUsersParams); !ok {
			return nil, nil
		}
		calls++
		if calls == 1 {
			return nil, rpcError("FLOOD_WAIT_X", 1)
		}
		return []tl.Object{}, nil
	})

	begin := time.Now()
	_, err := c.UsersGetUsers(testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(begin), time.Second)
}

func TestSendReturnsLongFloodWait(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	h.setAnswer(func(_ *fakeSender, req tl.Object) (any, error) {
		if _, ok := req.(*UsersGetUsersParams); ok {
			return nil, rpcError("FLOOD_WAIT_X", 30)
		}
		return nil, nil
	})

	_, err := c.UsersGetUsers(testContext(t), nil)
	wait, ok := mtproto.AsFloodWait(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, 30*time.Second, wait)
	assert.Equal(t, 1, count[*UsersGetUsersParams](h))
}

func TestSendWithoutSession(t *testing.T) {
	h := newHarness(t, botConfig())
	_, err := h.c.Send(testContext(t), &UpdatesGetStateParams{})
	var stateErr *mtproto.InvalidStateError
	assert.True(t, errors.As(err, &stateErr))
}

func TestNoUpdatesWrapsRequests(t *testing.T) {
	cfg := botConfig()
	cfg.NoUpdates = true
	h := newHarness(t, cfg)
	c := h.start()

	_, err := c.UpdatesGetState(testContext(t))
	require.NoError(t, err)

	raw := h.main().raw
	last := raw[len(raw)-1]
	wrapped, ok := last.(*InvokeWithoutUpdatesParams)
	require.True(t, ok, "got %T", last)
	assert.IsType(t, &UpdatesGetStateParams{}, wrapped.Query)
}

func TestExportSession(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	encoded, err := c.ExportSession()
	require.NoError(t, err)

	s, err := NewStringSession(encoded).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, s.DcID)
	assert.Equal(t, int64(testUserID), s.UserID)
	assert.Equal(t, h.main().key, s.AuthKey)
}

func TestLogOutDeletesSession(t *testing.T) {
	storage := NewMemorySession()
	cfg := botConfig()
	cfg.SessionStorage = storage
	h := newHarness(t, cfg)
	c := h.start()

	require.NoError(t, c.LogOut(testContext(t)))
	assert.Zero(t, c.UserID())
	require.NoError(t, c.Stop())

	_, err := storage.Load()
	assert.True(t, errors.Is(err, session.ErrSessionNotFound), "got %v", err)
}
