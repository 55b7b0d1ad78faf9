// Copyright (c) 2024 RoseLoverX

package mtproto

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/binary"
	"math/big"
	"net/url"
	"time"

	"github.com/pkg/errors"

	ige "github.com/roseloverx/mtproto/internal/aes_ige"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/keys"
	"github.com/roseloverx/mtproto/internal/math"
	"github.com/roseloverx/mtproto/internal/mode"
	"github.com/roseloverx/mtproto/internal/mtproto/messages"
	"github.com/roseloverx/mtproto/internal/mtproto/objects"
	"github.com/roseloverx/mtproto/internal/transport"
	"github.com/roseloverx/mtproto/internal/utils"
)

// AuthKey is a permanent key shared with one data center.
type AuthKey struct {
	DcID     int
	TestMode bool
	Key      []byte
	// ServerSalt is the first salt, derived from the nonces of the exchange
	ServerSalt int64
	// TimeOffset is server time minus local time, in seconds
	TimeOffset int64
}

// ID is the auth_key_id sent in front of every encrypted packet.
func (k *AuthKey) ID() int64 {
	return utils.AuthKeyID(k.Key)
}

// DialFunc opens the network link to a data center.
type DialFunc func(ctx context.Context, addr string, ipv6 bool, proxy *url.URL) (transport.Conn, error)

func defaultDial(ctx context.Context, addr string, ipv6 bool, proxy *url.URL) (transport.Conn, error) {
	return transport.NewTCP(transport.TCPConnConfig{
		Ctx:   ctx,
		Host:  addr,
		IpV6:  ipv6,
		Proxy: proxy,
	})
}

type NegotiatorConfig struct {
	// PublicKeys are the server keys offered for the RSA step, the built-in
	// production keys when empty.
	PublicKeys []*rsa.PublicKey
	Mode       mode.Variant
	// Timeout bounds every round trip, 10s when zero.
	Timeout time.Duration
	// Retries is how many times the whole exchange is attempted, 5 when zero.
	Retries int
	// Addr overrides the data center address table.
	Addr   string
	Dial   DialFunc
	Logger *utils.Logger
}

// Negotiator creates auth keys. A failed attempt leaves nothing behind, so
// Create may be called again at will.
type Negotiator struct {
	cfg NegotiatorConfig
	log *utils.Logger
}

func NewNegotiator(cfg NegotiatorConfig) *Negotiator {
	if len(cfg.PublicKeys) == 0 {
		cfg.PublicKeys = keys.DefaultKeys()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 5
	}
	if cfg.Dial == nil {
		cfg.Dial = defaultDial
	}
	if cfg.Logger == nil {
		cfg.Logger = utils.NewLogger("mtproto")
	}

	return &Negotiator{cfg: cfg, log: cfg.Logger.WithPrefix("negotiator")}
}

// Create runs the key exchange with data center dcID.
// https://core.telegram.org/mtproto/auth_key
func (n *Negotiator) Create(ctx context.Context, dcID int, testMode, ipv6 bool, proxy *url.URL) (*AuthKey, error) {
	addr := n.cfg.Addr
	if addr == "" {
		addr = utils.GetHostIp(dcID, testMode, ipv6)
	}
	if addr == "" {
		return nil, &NegotiationError{Stage: "resolve", Err: errors.Errorf("unknown data center %d", dcID)}
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key, err := n.negotiate(ctx, addr, ipv6, proxy)
		if err == nil {
			key.DcID = dcID
			key.TestMode = testMode
			n.log.Infof("auth key for DC %d ready", dcID)
			return key, nil
		}

		if ctx.Err() != nil || attempt >= n.cfg.Retries {
			return nil, err
		}
		n.log.WithError(err).Warnf("key exchange with DC %d failed, retrying (%d/%d)", dcID, attempt, n.cfg.Retries)

		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (n *Negotiator) negotiate(ctx context.Context, addr string, ipv6 bool, proxy *url.URL) (*AuthKey, error) {
	conn, err := n.cfg.Dial(ctx, addr, ipv6, proxy)
	if err != nil {
		return nil, &NegotiationError{Stage: "dial", Err: &ConnectError{Addr: addr, Err: err}}
	}

	tr, err := transport.NewTransport(noKey{}, conn, n.cfg.Mode)
	if err != nil {
		conn.Close()
		return nil, &NegotiationError{Stage: "dial", Err: err}
	}
	defer tr.Close()

	ex := &plainExchange{tr: tr, timeout: n.cfg.Timeout, msgID: utils.NewMsgIDGenerator()}
	return n.exchange(ctx, ex)
}

func (n *Negotiator) exchange(ctx context.Context, ex *plainExchange) (*AuthKey, error) {
	fail := func(stage string, err error) (*AuthKey, error) {
		return nil, &NegotiationError{Stage: stage, Err: err}
	}

	nonce, err := tl.RandomInt128()
	if err != nil {
		return fail("req_pq_multi", err)
	}
	res, err := objects.ReqPQMulti(ctx, ex, nonce)
	if err != nil {
		return fail("req_pq_multi", err)
	}
	if res.Nonce != nonce {
		return fail("req_pq_multi", errors.New("nonce mismatch"))
	}
	serverNonce := res.ServerNonce

	publicKey := n.pickKey(res.Fingerprints)
	if publicKey == nil {
		return fail("req_pq_multi", errors.Errorf("no public key for fingerprints %v", res.Fingerprints))
	}

	// (encoding) p_q_inner_data
	if len(res.Pq) == 0 || len(res.Pq) > 8 {
		return fail("req_DH_params", errors.Errorf("pq of %d bytes", len(res.Pq)))
	}
	pqBuf := make([]byte, 8)
	copy(pqBuf[8-len(res.Pq):], res.Pq)
	p, q, err := math.Factorize(binary.BigEndian.Uint64(pqBuf))
	if err != nil {
		return fail("req_DH_params", err)
	}
	pBytes := big.NewInt(0).SetUint64(p).Bytes()
	qBytes := big.NewInt(0).SetUint64(q).Bytes()

	newNonce, err := tl.RandomInt256()
	if err != nil {
		return fail("req_DH_params", err)
	}

	inner, err := tl.Marshal(&objects.PQInnerData{
		Pq:          res.Pq,
		P:           pBytes,
		Q:           qBytes,
		Nonce:       nonce,
		ServerNonce: serverNonce,
		NewNonce:    newNonce,
	})
	if err != nil {
		return fail("req_DH_params", err)
	}

	block := append(utils.Sha1Byte(inner), inner...)
	if len(block) > math.RSABlockSize {
		return fail("req_DH_params", errors.New("p_q_inner_data too long"))
	}
	block = append(block, utils.RandomBytes(math.RSABlockSize-len(block))...)
	encrypted, err := math.DoRSAencrypt(block, publicKey)
	if err != nil {
		return fail("req_DH_params", err)
	}

	dhResponse, err := objects.ReqDHParams(ctx, ex, &objects.ReqDHParamsParams{
		Nonce:                nonce,
		ServerNonce:          serverNonce,
		P:                    pBytes,
		Q:                    qBytes,
		PublicKeyFingerprint: keys.RSAFingerprint(publicKey),
		EncryptedData:        encrypted,
	})
	if err != nil {
		return fail("req_DH_params", err)
	}
	dhParams, ok := dhResponse.(*objects.ServerDHParamsOk)
	if !ok {
		return fail("req_DH_params", errors.New("server refused DH params"))
	}
	if dhParams.Nonce != nonce || dhParams.ServerNonce != serverNonce {
		return fail("req_DH_params", errors.New("nonce mismatch"))
	}

	// check of hash, random bytes trail removing occurs in this func already
	answer, err := ige.DecryptMessageWithTempKeys(dhParams.EncryptedAnswer, newNonce, serverNonce)
	if err != nil {
		return fail("server_DH_inner_data", err)
	}
	obj, err := tl.DecodeUnknownObject(answer)
	if err != nil {
		return fail("server_DH_inner_data", err)
	}
	dhi, ok := obj.(*objects.ServerDHInnerData)
	if !ok {
		return fail("server_DH_inner_data", errors.Errorf("unexpected %T", obj))
	}
	if dhi.Nonce != nonce || dhi.ServerNonce != serverNonce {
		return fail("server_DH_inner_data", errors.New("nonce mismatch"))
	}

	dhPrime := new(big.Int).SetBytes(dhi.DhPrime)
	gA := new(big.Int).SetBytes(dhi.GA)
	if dhPrime.BitLen() != 2048 || dhi.G < 2 || dhi.G > 7 {
		return fail("server_DH_inner_data", errors.New("unsafe DH parameters"))
	}
	if err := math.CheckDHValue(gA, dhPrime); err != nil {
		return fail("server_DH_inner_data", errors.Wrap(err, "g_a"))
	}
	timeOffset := int64(dhi.ServerTime) - time.Now().Unix()

	var retryID int64
	for round := 0; round < 5; round++ {
		_, gB, gAB, err := math.MakeGAB(dhi.G, gA, dhPrime)
		if err != nil {
			return fail("set_client_DH_params", err)
		}
		authKey := make([]byte, 256)
		gAB.FillBytes(authKey)
		authKeyHash := utils.Sha1Byte(authKey)

		// (encoding) client_DH_inner_data
		clientDH, err := tl.Marshal(&objects.ClientDHInnerData{
			Nonce:       nonce,
			ServerNonce: serverNonce,
			RetryID:     retryID,
			GB:          gB.Bytes(),
		})
		if err != nil {
			return fail("set_client_DH_params", err)
		}
		encrypted, err := ige.EncryptMessageWithTempKeys(clientDH, newNonce, serverNonce)
		if err != nil {
			return fail("set_client_DH_params", err)
		}

		status, err := objects.SetClientDHParams(ctx, ex, nonce, serverNonce, encrypted)
		if err != nil {
			return fail("set_client_DH_params", err)
		}

		switch s := status.(type) {
		case *objects.DHGenOk:
			if s.Nonce != nonce || s.ServerNonce != serverNonce {
				return fail("set_client_DH_params", errors.New("nonce mismatch"))
			}
			if !bytes.Equal(newNonceHash(newNonce, 1, authKeyHash), s.NewNonceHash1[:]) {
				return fail("set_client_DH_params", errors.New("new_nonce_hash1 mismatch"))
			}

			salt := make([]byte, tl.LongLen)
			copy(salt, newNonce[:8])
			utils.Xor(salt, serverNonce[:8])

			return &AuthKey{
				Key:        authKey,
				ServerSalt: int64(binary.LittleEndian.Uint64(salt)),
				TimeOffset: timeOffset,
			}, nil

		case *objects.DHGenRetry:
			if !bytes.Equal(newNonceHash(newNonce, 2, authKeyHash), s.NewNonceHash2[:]) {
				return fail("set_client_DH_params", errors.New("new_nonce_hash2 mismatch"))
			}
			retryID = int64(binary.LittleEndian.Uint64(authKeyHash[:8]))
			n.log.Debug("server asked to retry DH generation")

		case *objects.DHGenFail:
			return fail("set_client_DH_params", errors.New("server failed DH generation"))

		default:
			return fail("set_client_DH_params", errors.Errorf("unexpected %T", status))
		}
	}

	return fail("set_client_DH_params", errors.New("too many DH generation retries"))
}

func (n *Negotiator) pickKey(fingerprints []int64) *rsa.PublicKey {
	for _, fp := range fingerprints {
		for _, key := range n.cfg.PublicKeys {
			if keys.RSAFingerprint(key) == fp {
				return key
			}
		}
	}
	return nil
}

// newNonceHash is new_nonce_hash1/2/3: the low 128 bits of
// sha1(new_nonce + number + auth_key_aux_hash).
func newNonceHash(newNonce tl.Int256, number byte, authKeyHash []byte) []byte {
	return utils.Sha1Byte(newNonce[:], []byte{number}, authKeyHash[:8])[4:20]
}

// plainExchange sends unencrypted requests and waits for the reply, one at a
// time.
type plainExchange struct {
	tr      transport.Transport
	timeout time.Duration
	msgID   func(int64) int64
}

func (e *plainExchange) MakeRequest(ctx context.Context, msg tl.Object) (any, error) {
	data, err := tl.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}
	if err := e.tr.WriteMsg(&messages.Unencrypted{Msg: data, MsgID: e.msgID(0)}); err != nil {
		return nil, err
	}

	type result struct {
		msg messages.Common
		err error
	}
	ch := make(chan result, 1)
	go func() {
		m, err := e.tr.ReadMsg()
		ch <- result{m, err}
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return tl.DecodeUnknownObject(r.msg.GetMsg())
	case <-timer.C:
		e.tr.Close()
		return nil, &TimeoutError{Request: requestName(msg), Attempts: 1}
	case <-ctx.Done():
		e.tr.Close()
		return nil, ctx.Err()
	}
}

// noKey is the informator of a link that has no auth key yet.
type noKey struct{}

func (noKey) GetSessionID() int64  { return 0 }
func (noKey) GetServerSalt() int64 { return 0 }
func (noKey) GetAuthKey() []byte   { return nil }
