// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"crypto/rsa"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	mtproto "github.com/roseloverx/mtproto"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/session"
	"github.com/roseloverx/mtproto/internal/utils"
)

// Invoker sends one request and waits for its answer.
type Invoker interface {
	MakeRequest(ctx context.Context, msg tl.Object) (any, error)
}

// sender is the part of *mtproto.MTProto the client drives.
type sender interface {
	Invoker
	Start(ctx context.Context) error
	Stop() error
	Migrate(ctx context.Context, dcID int, addr string, key *mtproto.AuthKey) error
	ExportAuthKey() *mtproto.AuthKey
	Updates() *utils.Queue[tl.Object]
	DcID() int
	State() mtproto.State
}

type SessionLoader = session.SessionLoader

// NewFileSession stores the session as JSON at path.
func NewFileSession(path string) SessionLoader { return session.NewFromFile(path) }

func NewMemorySession() SessionLoader { return session.NewInMemory() }

// NewStringSession loads from an exported session string and keeps later
// saves in memory.
func NewStringSession(encoded string) SessionLoader { return session.NewStringSession(encoded) }

// NewSQLiteSession stores the session under name in the database at path.
func NewSQLiteSession(path, name string) (SessionLoader, error) {
	l, err := session.NewSQLite(path, name)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ClientConfig is the configuration of a Client. Zero values get the
// documented defaults.
type ClientConfig struct {
	AppID   int
	AppHash string

	// SessionName names the session file in WorkDir, default "session".
	SessionName string
	// WorkDir holds the session file, default the current directory.
	WorkDir string
	// SessionStorage overrides SessionName and WorkDir.
	SessionStorage SessionLoader

	// DataCenter is where a brand new session is created, default 1.
	DataCenter    int
	TestMode      bool
	IPv6          bool
	Proxy         *url.URL
	TransportMode TransportMode

	// Reported to the server in initConnection.
	DeviceModel   string
	SystemVersion string
	AppVersion    string
	LangCode      string

	// BotToken selects bot authorization for a new session.
	BotToken string
	Phone    ValueSource
	Code     ValueSource
	Password ValueSource

	// NoUpdates asks the server not to push updates in answer to our
	// requests.
	NoUpdates       bool
	DownloadWorkers int
	// FloodSleepThreshold is the longest rate limit wait honoured by
	// sleeping, default 10s. Longer waits are returned as errors; a negative
	// value returns all of them.
	FloodSleepThreshold time.Duration

	// SessionSyncInterval is how often the session is saved while the
	// client runs, default one minute. Negative saves only on Stop.
	SessionSyncInterval time.Duration

	LogLevel   string
	PublicKeys []*rsa.PublicKey
	// Timeout and Retries apply to every request of every session.
	Timeout time.Duration
	Retries int
}

func (c *ClientConfig) setDefaults() {
	if c.SessionName == "" {
		c.SessionName = "session"
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.DataCenter == 0 {
		c.DataCenter = DefaultDC
	}
	if c.DeviceModel == "" {
		c.DeviceModel = "Go " + runtime.Version()
	}
	if c.SystemVersion == "" {
		c.SystemVersion = runtime.GOOS + " " + runtime.GOARCH
	}
	if c.AppVersion == "" {
		c.AppVersion = Version
	}
	if c.LangCode == "" {
		c.LangCode = "en"
	}
	if c.DownloadWorkers <= 0 {
		c.DownloadWorkers = defaultDownloadWorkers
	}
	if c.FloodSleepThreshold == 0 {
		c.FloodSleepThreshold = defaultFloodSleepThreshold
	}
	if c.SessionSyncInterval == 0 {
		c.SessionSyncInterval = defaultSessionSyncInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = LogInfo
	}
}

// ConfigFromEnv seeds a config from TG_APP_ID, TG_APP_HASH, TG_BOT_TOKEN,
// TG_SESSION (an exported session string), TG_PROXY and TG_LOG_LEVEL.
func ConfigFromEnv() (ClientConfig, error) {
	var cfg ClientConfig
	if v := os.Getenv("TG_APP_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.Wrap(err, "parsing TG_APP_ID")
		}
		cfg.AppID = id
	}
	cfg.AppHash = os.Getenv("TG_APP_HASH")
	cfg.BotToken = os.Getenv("TG_BOT_TOKEN")
	cfg.LogLevel = os.Getenv("TG_LOG_LEVEL")
	if v := os.Getenv("TG_SESSION"); v != "" {
		cfg.SessionStorage = NewStringSession(v)
	}
	if v := os.Getenv("TG_PROXY"); v != "" {
		u, err := url.Parse(v)
		if err != nil {
			return cfg, errors.Wrap(err, "parsing TG_PROXY")
		}
		cfg.Proxy = u
	}
	return cfg, nil
}

// Client is an account session: the main transport session, the peer
// directory, the update pipeline and the media sessions used for transfers.
type Client struct {
	cfg     ClientConfig
	storage SessionLoader
	Log     *utils.Logger
	Peers   *PeerDirectory

	// lifecycle serialises Start and Stop
	lifecycle sync.Mutex
	running   atomic.Bool
	cancel    context.CancelFunc

	mu     sync.RWMutex
	sess   sender
	userID int64
	isBot  bool
	// loggedOut stops the session from being saved again
	loggedOut bool

	// migrateMu serialises data center switches of the main session
	migrateMu sync.Mutex
	saveMu    sync.Mutex

	newSender func(mtproto.Config) (sender, error)
	createKey func(ctx context.Context, dcID int, cdn bool) (*mtproto.AuthKey, error)

	// scratchDir holds downloads in progress
	scratchDir string

	media      *mediaSessions
	handlers   *handlerGroups
	channelPts *ChannelSequenceTracker
	events     *utils.Queue[*UpdateEvent]
	downloads  *utils.Queue[*downloadJob]

	wg         sync.WaitGroup
	dispatchWG sync.WaitGroup
	downloadWG sync.WaitGroup
	syncWG     sync.WaitGroup
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.AppID == 0 || cfg.AppHash == "" {
		return nil, errors.New("app id and app hash are required, get them at https://my.telegram.org/apps")
	}
	cfg.setDefaults()

	storage := cfg.SessionStorage
	if storage == nil {
		storage = session.NewFromFile(filepath.Join(cfg.WorkDir, cfg.SessionName+".session"))
	}

	c := &Client{
		cfg:        cfg,
		storage:    storage,
		Log:        utils.NewLogger("telegram").SetLevel(cfg.LogLevel),
		Peers:      NewPeerDirectory(),
		handlers:   newHandlerGroups(),
		channelPts: NewChannelSequenceTracker(),
		events:     utils.NewQueue[*UpdateEvent](),
		downloads:  utils.NewQueue[*downloadJob](),
		scratchDir: os.TempDir(),
	}
	c.media = newMediaSessions(c)
	c.newSender = func(mc mtproto.Config) (sender, error) {
		m, err := mtproto.NewMTProto(mc)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	c.createKey = c.negotiate
	return c, nil
}

// negotiate creates an auth key for dcID. CDN data centers are offered the
// keys announced by help.getCdnConfig.
func (c *Client) negotiate(ctx context.Context, dcID int, cdn bool) (*mtproto.AuthKey, error) {
	publicKeys := c.cfg.PublicKeys
	if cdn {
		var err error
		if publicKeys, err = c.media.cdnKeys(ctx, dcID); err != nil {
			return nil, err
		}
	}
	n := mtproto.NewNegotiator(mtproto.NegotiatorConfig{
		PublicKeys: publicKeys,
		Mode:       c.cfg.TransportMode,
		Timeout:    c.cfg.Timeout,
		Logger:     c.Log,
	})
	return n.Create(ctx, dcID, c.cfg.TestMode, c.cfg.IPv6, c.cfg.Proxy)
}

// senderConfig describes a session to the data center of key.
func (c *Client) senderConfig(key *mtproto.AuthKey, noUpdates bool) mtproto.Config {
	return mtproto.Config{
		DcID:       key.DcID,
		TestMode:   c.cfg.TestMode,
		IPv6:       c.cfg.IPv6,
		Proxy:      c.cfg.Proxy,
		Mode:       c.cfg.TransportMode,
		AuthKey:    key.Key,
		ServerSalt: key.ServerSalt,
		TimeOffset: key.TimeOffset,
		Timeout:    c.cfg.Timeout,
		Retries:    c.cfg.Retries,
		NoUpdates:  noUpdates,
		Logger:     c.Log.WithPrefix("dc" + strconv.Itoa(key.DcID)),
	}
}

func (c *Client) session() sender {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

// DcID is the data center of the main session, 0 before the first start.
func (c *Client) DcID() int {
	if s := c.session(); s != nil {
		return s.DcID()
	}
	return 0
}

func (c *Client) UserID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) IsBot() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isBot
}

func (c *Client) IsConnected() bool {
	s := c.session()
	return s != nil && s.State() == mtproto.StateRunning
}

// Start loads or creates the session, connects, authorizes a new session
// and starts the update, download and dispatch workers.
func (c *Client) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.running.Load() {
		return &mtproto.InvalidStateError{Op: "start client", State: mtproto.StateRunning}
	}

	key, err := c.loadSession(ctx)
	if err != nil {
		return err
	}

	sess, err := c.newSender(c.senderConfig(key, c.cfg.NoUpdates))
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	if err := sess.Start(ctx); err != nil {
		return errors.Wrapf(err, "connecting to DC %d", key.DcID)
	}
	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	if err := c.setup(ctx, sess); err != nil {
		if stopErr := sess.Stop(); stopErr != nil {
			c.Log.WithError(stopErr).Debug("stopping session after failed start")
		}
		return err
	}

	workCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.events = utils.NewQueue[*UpdateEvent]()
	c.downloads = utils.NewQueue[*downloadJob]()

	c.wg.Add(1)
	go c.updatesWorker(workCtx, sess.Updates())

	c.downloadWG.Add(c.cfg.DownloadWorkers)
	for i := 0; i < c.cfg.DownloadWorkers; i++ {
		go c.downloadWorker(workCtx)
	}
	c.Log.Debugf("started %d download workers", c.cfg.DownloadWorkers)

	c.dispatchWG.Add(1)
	go c.dispatcher(workCtx)

	if c.cfg.SessionSyncInterval > 0 {
		c.syncWG.Add(1)
		go c.sessionSyncer(workCtx, c.cfg.SessionSyncInterval)
	}

	c.running.Store(true)
	c.Log.Infof("client started on DC %d", sess.DcID())
	return nil
}

// setup runs the first requests of a fresh connection and authorizes it if
// the session has no account yet.
func (c *Client) setup(ctx context.Context, sess sender) error {
	res, err := c.initConnection(ctx, sess, &HelpGetConfigParams{})
	if err != nil {
		return errors.Wrap(err, "initializing connection")
	}
	if cfg, ok := res.(*Config); ok {
		c.applyConfig(cfg)
	}

	if c.UserID() == 0 {
		if err := c.authorize(ctx); err != nil {
			return err
		}
	}
	if err := c.saveSession(); err != nil {
		return err
	}

	if _, err := c.UpdatesGetState(ctx); err != nil {
		return errors.Wrap(err, "fetching update state")
	}
	return nil
}

// applyConfig replaces the data center address table with the one the
// server announced. Media-only and obfuscated-only endpoints are skipped.
func (c *Client) applyConfig(cfg *Config) {
	dcs := make(map[int][]utils.DC)
	for _, o := range cfg.DcOptions {
		if o == nil || o.MediaOnly || o.TcpoOnly {
			continue
		}
		addr := net.JoinHostPort(o.IpAddress, strconv.Itoa(int(o.Port)))
		dcs[int(o.ID)] = append(dcs[int(o.ID)], utils.DC{Addr: addr, V6: o.Ipv6})
	}
	if len(dcs) == 0 {
		return
	}
	if !c.cfg.TestMode {
		utils.SetDCs(dcs)
	}
	c.Log.Debugf("data center table updated, %d data centers", len(dcs))
}

func (c *Client) loadSession(ctx context.Context) (*mtproto.AuthKey, error) {
	s, err := c.storage.Load()
	if errors.Is(err, session.ErrSessionNotFound) {
		c.Log.Infof("no session at %s, creating an auth key for DC %d", c.storage.Path(), c.cfg.DataCenter)
		key, err := c.createKey(ctx, c.cfg.DataCenter, false)
		if err != nil {
			return nil, errors.Wrap(err, "creating auth key")
		}
		c.mu.Lock()
		c.userID, c.isBot, c.loggedOut = 0, false, false
		c.mu.Unlock()
		return key, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading session")
	}
	if s.TestMode != c.cfg.TestMode {
		return nil, errors.Errorf("session %s belongs to test mode %t", c.storage.Path(), s.TestMode)
	}

	c.Peers.Import(s.PeersByID, s.PeersByUsername, s.PeersByPhone)
	c.mu.Lock()
	c.userID, c.isBot, c.loggedOut = s.UserID, s.IsBot, false
	c.mu.Unlock()
	c.Log.Debugf("session loaded: DC %d, %d peers", s.DcID, len(s.PeersByID))
	return &mtproto.AuthKey{DcID: s.DcID, TestMode: s.TestMode, Key: s.AuthKey}, nil
}

// sessionSyncer saves the session every interval until ctx is done.
func (c *Client) sessionSyncer(ctx context.Context, interval time.Duration) {
	defer c.syncWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.saveSession(); err != nil {
				c.Log.WithError(err).Warn("periodic session save")
			}
		}
	}
}

func (c *Client) saveSession() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	sess := c.session()
	if sess == nil {
		return nil
	}
	key := sess.ExportAuthKey()
	byID, byUsername, byPhone := c.Peers.Export()

	c.mu.RLock()
	if c.loggedOut {
		c.mu.RUnlock()
		return nil
	}
	s := &session.Session{
		DcID:            key.DcID,
		TestMode:        c.cfg.TestMode,
		AuthKey:         key.Key,
		UserID:          c.userID,
		Date:            time.Now().Unix(),
		IsBot:           c.isBot,
		PeersByID:       byID,
		PeersByUsername: byUsername,
		PeersByPhone:    byPhone,
	}
	c.mu.RUnlock()

	return errors.Wrap(c.storage.Store(s), "saving session")
}

// Stop shuts the workers down in order, then the media sessions, saves the
// session and closes the main connection.
func (c *Client) Stop() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if !c.running.Load() {
		return &mtproto.InvalidStateError{Op: "stop client", State: mtproto.StateStopped}
	}
	sess := c.session()

	c.events.Push(nil)
	c.dispatchWG.Wait()

	for i := 0; i < c.cfg.DownloadWorkers; i++ {
		c.downloads.Push(nil)
	}
	c.downloadWG.Wait()
	c.Log.Debugf("stopped %d download workers", c.cfg.DownloadWorkers)

	sess.Updates().Push(nil)
	c.wg.Wait()

	c.media.stopAll()

	c.cancel()
	c.syncWG.Wait()
	saveErr := c.saveSession()
	c.running.Store(false)

	if err := sess.Stop(); err != nil {
		return errors.Wrap(err, "stopping session")
	}
	c.Log.Info("client stopped")
	return saveErr
}

func (c *Client) Restart(ctx context.Context) error {
	if err := c.Stop(); err != nil {
		return err
	}
	return c.Start(ctx)
}

// Send is the single low-level gateway for requests: it re-homes the
// session on migrate errors, sleeps through short flood waits and feeds the
// users and chats of every answer into the peer directory.
func (c *Client) Send(ctx context.Context, req tl.Object) (any, error) {
	return c.send(ctx, req, true)
}

// MakeRequest is Send, so a Client can serve as an Invoker.
func (c *Client) MakeRequest(ctx context.Context, req tl.Object) (any, error) {
	return c.send(ctx, req, true)
}

// gateway routes through the client, optionally returning flood waits to
// the caller instead of sleeping.
type gateway struct {
	c          *Client
	floodSleep bool
}

func (g gateway) MakeRequest(ctx context.Context, req tl.Object) (any, error) {
	return g.c.send(ctx, req, g.floodSleep)
}

func (c *Client) send(ctx context.Context, req tl.Object, floodSleep bool) (any, error) {
	if c.session() == nil {
		return nil, &mtproto.InvalidStateError{Op: "send " + requestName(req), State: mtproto.StateCreated}
	}
	if c.cfg.NoUpdates {
		if _, wrapped := req.(*InvokeWithoutUpdatesParams); !wrapped {
			req = &InvokeWithoutUpdatesParams{Query: req}
		}
	}

	redirects := 0
	for {
		res, err := c.session().MakeRequest(ctx, req)
		if err == nil {
			c.Peers.FetchPeers(collectEntities(res)...)
			return res, nil
		}

		if dcID, ok := mtproto.AsMigrate(err); ok {
			redirects++
			if redirects > maxRedirects {
				return nil, errors.Wrapf(ErrTooManyRedirects, "last redirect to DC %d", dcID)
			}
			if err := c.switchDC(ctx, dcID); err != nil {
				return nil, errors.Wrapf(err, "switching to DC %d", dcID)
			}
			continue
		}

		if wait, ok := mtproto.AsFloodWait(err); ok && floodSleep && wait <= c.cfg.FloodSleepThreshold {
			c.Log.Warnf("waiting %s before resending %s", wait, requestName(req))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		return nil, err
	}
}

// switchDC re-homes the main session to dcID with a fresh auth key.
func (c *Client) switchDC(ctx context.Context, dcID int) error {
	c.migrateMu.Lock()
	defer c.migrateMu.Unlock()

	sess := c.session()
	if sess.DcID() == dcID {
		return nil
	}
	c.Log.Infof("switching from DC %d to DC %d", sess.DcID(), dcID)

	key, err := c.createKey(ctx, dcID, false)
	if err != nil {
		return errors.Wrap(err, "creating auth key")
	}
	if err := sess.Migrate(ctx, dcID, "", key); err != nil {
		return err
	}
	if _, err := c.initConnection(ctx, sess, &HelpGetConfigParams{}); err != nil {
		return errors.Wrap(err, "initializing connection")
	}
	return nil
}

// ExportSession returns the session as a string for NewStringSession.
func (c *Client) ExportSession() (string, error) {
	sess := c.session()
	if sess == nil {
		return "", errors.New("client was never started")
	}
	key := sess.ExportAuthKey()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return session.EncodeString(&session.Session{
		DcID:     key.DcID,
		TestMode: c.cfg.TestMode,
		AuthKey:  key.Key,
		UserID:   c.userID,
		Date:     time.Now().Unix(),
		IsBot:    c.isBot,
	}), nil
}
