// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"crypto/rsa"
	"sync"

	"github.com/pkg/errors"

	mtproto "github.com/roseloverx/mtproto"
	"github.com/roseloverx/mtproto/internal/keys"
)

// mediaSessions keeps one auxiliary session per data center for downloads.
// They are created on first use and live until the client stops.
type mediaSessions struct {
	c *Client

	// mu covers the check-then-create of a session
	mu   sync.Mutex
	byDC map[int]sender

	keysMu     sync.Mutex
	cdnConfig  map[int][]*rsa.PublicKey
	cdnFetched bool
}

func newMediaSessions(c *Client) *mediaSessions {
	return &mediaSessions{
		c:         c,
		byDC:      make(map[int]sender),
		cdnConfig: make(map[int][]*rsa.PublicKey),
	}
}

// get returns the running media session for dcID, opening it if needed.
func (m *mediaSessions) get(ctx context.Context, dcID int, cdn bool) (sender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byDC[dcID]; ok {
		if s.State() == mtproto.StateRunning {
			return s, nil
		}
		delete(m.byDC, dcID)
	}

	s, err := m.c.openSession(ctx, dcID, cdn)
	if err != nil {
		return nil, err
	}
	m.byDC[dcID] = s
	return s, nil
}

func (m *mediaSessions) stopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for dcID, s := range m.byDC {
		if err := s.Stop(); err != nil {
			m.c.Log.WithError(err).Debugf("stopping media session for DC %d", dcID)
		}
		delete(m.byDC, dcID)
	}
}

func (m *mediaSessions) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byDC)
}

// cdnKeys returns the RSA keys of a CDN data center, fetching the CDN
// configuration once.
func (m *mediaSessions) cdnKeys(ctx context.Context, dcID int) ([]*rsa.PublicKey, error) {
	m.keysMu.Lock()
	defer m.keysMu.Unlock()

	if !m.cdnFetched {
		cfg, err := m.c.HelpGetCdnConfig(ctx)
		if err != nil {
			return nil, err
		}
		for _, pk := range cfg.PublicKeys {
			parsed, err := keys.ParsePEM([]byte(pk.PublicKey))
			if err != nil {
				return nil, errors.Wrapf(err, "parsing key of CDN DC %d", pk.DcID)
			}
			m.cdnConfig[int(pk.DcID)] = append(m.cdnConfig[int(pk.DcID)], parsed...)
		}
		m.cdnFetched = true
	}

	found := m.cdnConfig[dcID]
	if len(found) == 0 {
		return nil, errors.Errorf("no public key for CDN DC %d", dcID)
	}
	return found, nil
}

// openSession starts an auxiliary session to dcID. The home data center
// reuses the account key under a new session id; another data center gets
// a fresh key and an imported authorization; a CDN gets a fresh key only.
func (c *Client) openSession(ctx context.Context, dcID int, cdn bool) (sender, error) {
	main := c.session()
	if main == nil {
		return nil, &mtproto.InvalidStateError{Op: "open media session", State: mtproto.StateCreated}
	}
	home := main.ExportAuthKey()

	var (
		key       *mtproto.AuthKey
		needsAuth bool
		err       error
	)
	switch {
	case !cdn && dcID == home.DcID:
		key = home
	default:
		if key, err = c.createKey(ctx, dcID, cdn); err != nil {
			return nil, errors.Wrapf(err, "creating auth key for DC %d", dcID)
		}
		needsAuth = !cdn
	}

	s, err := c.newSender(c.senderConfig(key, true))
	if err != nil {
		return nil, errors.Wrap(err, "creating media session")
	}
	if err := s.Start(ctx); err != nil {
		return nil, errors.Wrapf(err, "connecting media session to DC %d", dcID)
	}

	fail := func(err error) (sender, error) {
		if stopErr := s.Stop(); stopErr != nil {
			c.Log.WithError(stopErr).Debug("stopping media session")
		}
		return nil, err
	}
	if _, err := c.initConnection(ctx, s, &HelpGetConfigParams{}); err != nil {
		return fail(errors.Wrap(err, "initializing media session"))
	}
	if needsAuth {
		if err := c.importAuthorization(ctx, s, dcID); err != nil {
			return fail(err)
		}
	}

	c.Log.Debugf("media session to DC %d ready (cdn: %t)", dcID, cdn)
	return s, nil
}

// importAuthorization logs s in with an authorization exported from the
// main session. AUTH_BYTES_INVALID is retried with a fresh export.
func (c *Client) importAuthorization(ctx context.Context, s sender, dcID int) error {
	var lastErr error
	for attempt := 1; attempt <= importAuthAttempts; attempt++ {
		exported, err := c.AuthExportAuthorization(ctx, int32(dcID))
		if err != nil {
			return err
		}
		_, err = invokeAs[AuthAuthorization](ctx, s, &AuthImportAuthorizationParams{
			ID:    exported.ID,
			Bytes: exported.Bytes,
		})
		if err == nil {
			return nil
		}
		if !mtproto.MatchError(err, "AUTH_BYTES_INVALID") {
			return err
		}
		c.Log.Warnf("authorization import to DC %d rejected (%d/%d)", dcID, attempt, importAuthAttempts)
		lastErr = err
	}
	return lastErr
}
