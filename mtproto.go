// Copyright (c) 2022 RoseLoverX

package mtproto

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/mode"
	"github.com/roseloverx/mtproto/internal/mtproto/messages"
	"github.com/roseloverx/mtproto/internal/mtproto/objects"
	"github.com/roseloverx/mtproto/internal/transport"
	"github.com/roseloverx/mtproto/internal/utils"
)

// State is the lifecycle stage of a session.
type State int32

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateMigrating
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateMigrating:
		return "migrating"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

const (
	defaultTimeout      = 15 * time.Second
	defaultRetries      = 3
	defaultPingInterval = time.Minute
	// the server closes the link if no ping arrives within this many seconds
	pingDisconnectDelay = 75
	// acknowledgements are flushed once this many pile up
	maxPendingAcks = 8
)

type Config struct {
	DcID     int
	TestMode bool
	IPv6     bool
	// Addr overrides the data center address table.
	Addr  string
	Proxy *url.URL
	Mode  mode.Variant

	AuthKey    []byte
	ServerSalt int64
	TimeOffset int64

	// Timeout bounds one attempt of a request, 15s when zero.
	Timeout time.Duration
	// Retries is how many times a timed out request is sent again, 3 when zero.
	// Use a negative value for none.
	Retries int
	// PingInterval is the keep-alive period, one minute when zero.
	PingInterval time.Duration
	// NoUpdates drops pushed updates instead of queueing them.
	NoUpdates bool

	Dial   DialFunc
	Logger *utils.Logger
}

// MTProto is one encrypted session with a data center.
type MTProto struct {
	cfg Config
	log *utils.Logger

	state atomic.Int32
	// lifecycle serialises Start, Stop and Migrate
	lifecycle sync.Mutex

	mu        sync.RWMutex
	transport transport.Transport
	addr      string
	dcID      int
	authKey   []byte

	serverSalt atomic.Int64
	sessionID  atomic.Int64
	timeOffset atomic.Int64

	// sendMu keeps message ids and seqnos in wire order
	sendMu sync.Mutex
	msgID  func(int64) int64

	seqNoMu    sync.Mutex
	seqNo      int32
	pending    *dispatchTable
	acks       *utils.SyncSet[int64]
	updates    *utils.Queue[tl.Object]
	reconnects atomic.Int32

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	pingIDs atomic.Int64
}

func NewMTProto(c Config) (*MTProto, error) {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retries == 0 {
		c.Retries = defaultRetries
	} else if c.Retries < 0 {
		c.Retries = 0
	}
	if c.PingInterval <= 0 {
		c.PingInterval = defaultPingInterval
	}
	if c.Dial == nil {
		c.Dial = defaultDial
	}
	if c.Logger == nil {
		c.Logger = utils.NewLogger("mtproto")
	}

	addr := c.Addr
	if addr == "" {
		addr = utils.GetHostIp(c.DcID, c.TestMode, c.IPv6)
	}
	if addr == "" {
		return nil, errors.Errorf("unknown data center %d", c.DcID)
	}

	m := &MTProto{
		cfg:     c,
		log:     c.Logger.WithField("dc", c.DcID),
		addr:    addr,
		dcID:    c.DcID,
		authKey: c.AuthKey,
		msgID:   utils.NewMsgIDGenerator(),
		pending: newDispatchTable(),
		acks:    utils.NewSyncSet[int64](),
		updates: utils.NewQueue[tl.Object](),
	}
	m.serverSalt.Store(c.ServerSalt)
	m.timeOffset.Store(c.TimeOffset)
	m.sessionID.Store(utils.GenerateSessionID())
	m.state.Store(int32(StateCreated))

	return m, nil
}

func (m *MTProto) State() State {
	return State(m.state.Load())
}

func (m *MTProto) DcID() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dcID
}

func (m *MTProto) Addr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.addr
}

// Updates is the queue pushed updates are handed to.
func (m *MTProto) Updates() *utils.Queue[tl.Object] {
	return m.updates
}

// Start opens the link and spawns the receive and keep-alive loops.
func (m *MTProto) Start(ctx context.Context) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	switch st := m.State(); st {
	case StateCreated, StateStopped:
	default:
		return &InvalidStateError{Op: "start", State: st}
	}
	if len(m.GetAuthKey()) == 0 {
		return &InvalidStateError{Op: "start without an auth key", State: m.State()}
	}

	m.state.Store(int32(StateStarting))
	if err := m.start(ctx); err != nil {
		m.state.Store(int32(StateStopped))
		return err
	}
	m.state.Store(int32(StateRunning))
	return nil
}

func (m *MTProto) start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())

	if err := m.connect(ctx, loopCtx); err != nil {
		cancel()
		return err
	}

	m.cancel = cancel
	m.wg.Add(2)
	go m.receiveLoop(loopCtx)
	go m.pingLoop(loopCtx)

	m.log.Infof("session started on %s", m.Addr())
	return nil
}

// connect dials the data center. The link lives until linkCtx is done or
// the transport is closed; dialCtx only bounds dialing.
func (m *MTProto) connect(dialCtx, linkCtx context.Context) error {
	addr := m.Addr()

	var (
		conn transport.Conn
		err  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err = m.cfg.Dial(linkCtx, addr, m.cfg.IPv6, m.cfg.Proxy)
	}()
	select {
	case <-done:
	case <-dialCtx.Done():
		go func() {
			<-done
			if conn != nil {
				conn.Close()
			}
		}()
		return &ConnectError{Addr: addr, Err: dialCtx.Err()}
	}
	if err != nil {
		return &ConnectError{Addr: addr, Err: err}
	}

	tr, err := transport.NewTransport(m, conn, m.cfg.Mode)
	if err != nil {
		conn.Close()
		return &ConnectError{Addr: addr, Err: err}
	}

	// stop cancels linkCtx before it clears the transport under mu, so a
	// link dialled after that is never installed
	m.mu.Lock()
	if err := linkCtx.Err(); err != nil {
		m.mu.Unlock()
		tr.Close()
		return &ConnectError{Addr: addr, Err: err}
	}
	old := m.transport
	m.transport = tr
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Stop drains the session: pending requests fail with ErrSessionStopped, the
// loops exit and the link is closed. Stopping a session that is not running
// is an InvalidStateError.
func (m *MTProto) Stop() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if st := m.State(); st != StateRunning {
		return &InvalidStateError{Op: "stop", State: st}
	}
	m.stop()
	m.state.Store(int32(StateStopped))
	m.log.Info("session stopped")
	return nil
}

func (m *MTProto) stop() {
	m.state.Store(int32(StateStopping))

	if err := m.flushAcks(); err != nil {
		m.log.WithError(err).Debug("flushing acks on stop")
	}
	if n := m.pending.cancelAll(ErrSessionStopped); n > 0 {
		m.log.Debugf("cancelled %d pending request(s)", n)
	}

	m.cancel()
	m.mu.Lock()
	if m.transport != nil {
		m.transport.Close()
		m.transport = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Migrate re-homes the session to another data center: the link is torn
// down and recreated against addr with key, under a fresh session id. An
// empty addr is looked up in the data center table.
func (m *MTProto) Migrate(ctx context.Context, dcID int, addr string, key *AuthKey) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if addr == "" {
		addr = utils.GetHostIp(dcID, m.cfg.TestMode, m.cfg.IPv6)
	}
	if addr == "" {
		return errors.Errorf("unknown data center %d", dcID)
	}
	if key == nil || len(key.Key) == 0 {
		return errors.New("migrating requires an auth key")
	}

	if m.State() == StateRunning {
		m.stop()
	}
	m.state.Store(int32(StateMigrating))
	m.log.Infof("migrating to DC %d", dcID)

	m.mu.Lock()
	m.dcID = dcID
	m.addr = addr
	m.authKey = key.Key
	m.mu.Unlock()
	m.serverSalt.Store(key.ServerSalt)
	m.timeOffset.Store(key.TimeOffset)
	m.resetSession()

	if err := m.start(ctx); err != nil {
		m.state.Store(int32(StateStopped))
		return err
	}
	m.state.Store(int32(StateRunning))
	return nil
}

func (m *MTProto) resetSession() {
	m.sessionID.Store(utils.GenerateSessionID())
	m.seqNoMu.Lock()
	m.seqNo = 0
	m.seqNoMu.Unlock()
	m.acks.Drain()
}

func (m *MTProto) receiveLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		msg, err := m.readMsg()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.handleReadError(ctx, err)
			continue
		}

		m.processMessage(msg.GetMsgID(), msg.GetSeqNo(), msg.GetMsg(), nil)
		if m.acks.Len() >= maxPendingAcks {
			if err := m.flushAcks(); err != nil {
				m.log.WithError(err).Warn("sending acks")
			}
		}
	}
}

func (m *MTProto) readMsg() (messages.Common, error) {
	m.mu.RLock()
	tr := m.transport
	m.mu.RUnlock()
	if tr == nil {
		return nil, errNoLink
	}
	return tr.ReadMsg()
}

func (m *MTProto) handleReadError(ctx context.Context, err error) {
	var code transport.ErrCode
	switch {
	case errors.As(err, &code) && code == -404:
		m.log.Error("server doesn't know our auth key")
		m.pending.cancelAll(ErrAuthKeyInvalid)
		m.reconnect(ctx)
	case errors.As(err, &code):
		m.log.Warnf("transport error %d, reconnecting", int32(code))
		m.reconnect(ctx)
	case errors.Is(err, errNoLink), transport.IsClosed(err), isReconnectRequired(err):
		m.log.WithError(err).Info("link lost, reconnecting")
		m.reconnect(ctx)
	default:
		// a packet we can't read doesn't poison the link
		m.log.WithError(err).Error("reading message")
	}
}

func isReconnectRequired(err error) bool {
	return err != nil && containsAny(err.Error(), "required to reconnect", "connection reset", "broken pipe")
}

// reconnect redials the same data center until it succeeds or ctx is done.
// The session id and salt survive; pending requests are resent by their
// own retry budgets.
func (m *MTProto) reconnect(ctx context.Context) {
	delay := 500 * time.Millisecond
	for ctx.Err() == nil {
		m.reconnects.Add(1)
		dialCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
		err := m.connect(dialCtx, ctx)
		cancel()
		if err == nil {
			m.log.Info("reconnected")
			return
		}

		m.log.WithError(err).Warnf("reconnect failed, next attempt in %v", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		delay = min(delay*2, 10*time.Second)
	}
}

func (m *MTProto) pingLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if ids := m.pending.expire(now); len(ids) > 0 {
				m.log.Debugf("expired %d request(s)", len(ids))
			}
			if err := m.flushAcks(); err != nil {
				m.log.WithError(err).Debug("sending acks")
			}

			_, err := objects.PingDelayDisconnect(ctx, m, m.pingIDs.Add(1), pingDisconnectDelay)
			if err != nil && ctx.Err() == nil {
				m.log.WithError(err).Warn("ping unsuccessful")
			}
		}
	}
}

// GetSessionID returns the current session id
func (m *MTProto) GetSessionID() int64 {
	return m.sessionID.Load()
}

// GetServerSalt returns current server salt
func (m *MTProto) GetServerSalt() int64 {
	return m.serverSalt.Load()
}

// GetAuthKey returns the key the session is encrypted with
func (m *MTProto) GetAuthKey() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authKey
}

// ExportAuthKey returns the current key material with its salt and clock
// offset, for persisting.
func (m *MTProto) ExportAuthKey() *AuthKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &AuthKey{
		DcID:       m.dcID,
		TestMode:   m.cfg.TestMode,
		Key:        m.authKey,
		ServerSalt: m.serverSalt.Load(),
		TimeOffset: m.timeOffset.Load(),
	}
}
