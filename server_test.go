// Copyright (c) 2024 RoseLoverX

package mtproto

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"math/big"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	ige "github.com/roseloverx/mtproto/internal/aes_ige"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/keys"
	"github.com/roseloverx/mtproto/internal/mode"
	"github.com/roseloverx/mtproto/internal/mtproto/messages"
	"github.com/roseloverx/mtproto/internal/mtproto/objects"
	"github.com/roseloverx/mtproto/internal/transport"
	"github.com/roseloverx/mtproto/internal/utils"
)

const dhPrimeHex = "c71caeb9c6b1c9048e6c522f70f13f73980d40238e3e21c14934d037563d930f" +
	"48198a0aa7c14058229493d22530f4dbfa336f6e0ac925139543aed44cce7c37" +
	"20fd51f69458705ac68cd4fe6b6b13abdc9746512969328454f18faf8c595f64" +
	"2477fe96bb2a941d5bcd1d4ac8cc49880708fa9b378e3c4f3a9060bee67cf9a4" +
	"a4a695811051907e162753b56b0f6b410dba74d8a84b2a14b3144e0ef1284754" +
	"fd17ed950d5965b4b9dd46582db1178d169c6bc465b0d6ff9ca3928fef5b9ae4" +
	"e418fc15e83ebea0f87fa9ff5eed70050ded2849f47bf959d956850ce929851f" +
	"0d8115f635b105ee2e4e15d04b2454bf6f4fadf034b10403119cd8e3b92fcc5b"

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

// serverKey is one RSA key shared by every test, generating it is slow.
func serverKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = k
	})
	return testKey
}

func testLogger() *utils.Logger {
	return utils.NewDiscardLogger()
}

// serverMsgIDs hands out odd, increasing server message ids.
type serverMsgIDs struct {
	n atomic.Int64
}

func (s *serverMsgIDs) next() int64 {
	return time.Now().Unix()<<32 | (s.n.Add(1)*4+1)&0xffffffff
}

// fakeDH plays the server side of the key exchange on one link.
type fakeDH struct {
	key *rsa.PrivateKey
	// fingerprint overrides the advertised key fingerprint when set
	fingerprint int64
	// retries is how many dh_gen_retry answers precede dh_gen_ok
	retries int

	mu       sync.Mutex
	authKeys [][]byte
	retryIDs []int64
}

func (f *fakeDH) serve(t *testing.T, conn net.Conn) {
	defer conn.Close()

	m, _, err := mode.Accept(conn)
	if err != nil {
		return
	}
	var ids serverMsgIDs

	read := func() tl.Object {
		data, err := m.ReadMsg()
		if err != nil {
			return nil
		}
		msg, err := messages.DeserializeUnencrypted(data)
		if err != nil {
			return nil
		}
		obj, err := tl.DecodeUnknownObject(msg.Msg)
		if err != nil {
			return nil
		}
		return obj
	}
	write := func(obj tl.Object) bool {
		data, err := tl.Marshal(obj)
		if err != nil {
			return false
		}
		return m.WriteMsg((&messages.Unencrypted{Msg: data, MsgID: ids.next()}).Serialize()) == nil
	}

	reqPQ, ok := read().(*objects.ReqPQMultiParams)
	if !ok {
		return
	}
	serverNonce, _ := tl.RandomInt128()
	const p, q = uint64(1000000007), uint64(1000000009)
	pq := make([]byte, 8)
	binary.BigEndian.PutUint64(pq, p*q)

	fp := f.fingerprint
	if fp == 0 {
		fp = keys.RSAFingerprint(&f.key.PublicKey)
	}
	if !write(&objects.ResPQ{Nonce: reqPQ.Nonce, ServerNonce: serverNonce, Pq: pq, Fingerprints: []int64{fp}}) {
		return
	}

	reqDH, ok := read().(*objects.ReqDHParamsParams)
	if !ok {
		return
	}
	block := make([]byte, 255)
	new(big.Int).Exp(new(big.Int).SetBytes(reqDH.EncryptedData), f.key.D, f.key.N).FillBytes(block)
	obj, err := tl.DecodeUnknownObject(block[20:])
	if err != nil {
		t.Errorf("decoding p_q_inner_data: %v", err)
		return
	}
	inner := obj.(*objects.PQInnerData)
	if new(big.Int).SetBytes(inner.P).Uint64() != p || new(big.Int).SetBytes(inner.Q).Uint64() != q {
		t.Errorf("client factorised pq wrong: %x %x", inner.P, inner.Q)
		return
	}
	newNonce := inner.NewNonce

	prime, _ := new(big.Int).SetString(dhPrimeHex, 16)
	a := new(big.Int).SetBytes(utils.RandomBytes(256))
	gA := new(big.Int).Exp(big.NewInt(3), a, prime)

	answer, _ := tl.Marshal(&objects.ServerDHInnerData{
		Nonce:       inner.Nonce,
		ServerNonce: serverNonce,
		G:           3,
		DhPrime:     prime.Bytes(),
		GA:          gA.Bytes(),
		ServerTime:  int32(time.Now().Unix()),
	})
	encrypted, _ := ige.EncryptMessageWithTempKeys(answer, newNonce, serverNonce)
	if !write(&objects.ServerDHParamsOk{Nonce: inner.Nonce, ServerNonce: serverNonce, EncryptedAnswer: encrypted}) {
		return
	}

	for round := 0; ; round++ {
		setDH, ok := read().(*objects.SetClientDHParamsParams)
		if !ok {
			return
		}
		plain, err := ige.DecryptMessageWithTempKeys(setDH.EncryptedData, newNonce, serverNonce)
		if err != nil {
			t.Errorf("decrypting client_DH_inner_data: %v", err)
			return
		}
		obj, err := tl.DecodeUnknownObject(plain)
		if err != nil {
			t.Errorf("decoding client_DH_inner_data: %v", err)
			return
		}
		clientDH := obj.(*objects.ClientDHInnerData)

		authKey := make([]byte, 256)
		new(big.Int).Exp(new(big.Int).SetBytes(clientDH.GB), a, prime).FillBytes(authKey)
		authKeyHash := utils.Sha1Byte(authKey)

		f.mu.Lock()
		f.authKeys = append(f.authKeys, authKey)
		f.retryIDs = append(f.retryIDs, clientDH.RetryID)
		f.mu.Unlock()

		var hash tl.Int128
		if round < f.retries {
			copy(hash[:], newNonceHash(newNonce, 2, authKeyHash))
			if !write(&objects.DHGenRetry{Nonce: inner.Nonce, ServerNonce: serverNonce, NewNonceHash2: hash}) {
				return
			}
			continue
		}
		copy(hash[:], newNonceHash(newNonce, 1, authKeyHash))
		write(&objects.DHGenOk{Nonce: inner.Nonce, ServerNonce: serverNonce, NewNonceHash1: hash})
		return
	}
}

func (f *fakeDH) dial(t *testing.T) DialFunc {
	return func(ctx context.Context, addr string, ipv6 bool, proxy *url.URL) (transport.Conn, error) {
		client, server := net.Pipe()
		go f.serve(t, server)
		return client, nil
	}
}

// inbound is one decrypted client message seen by fakeSession.
type inbound struct {
	msg *messages.Encrypted
	obj tl.Object
}

// fakeSession is the encrypted side of a data center. Every dialled link
// becomes the current one; tests read client messages from in and answer
// with reply.
type fakeSession struct {
	t   *testing.T
	key []byte
	in  chan inbound

	dials atomic.Int32
	ids   serverMsgIDs

	mu        sync.Mutex
	link      mode.Mode
	conn      net.Conn
	sessionID int64
	salt      int64
}

func newFakeSession(t *testing.T, key []byte) *fakeSession {
	return &fakeSession{t: t, key: key, in: make(chan inbound, 64)}
}

func (s *fakeSession) dial(ctx context.Context, addr string, ipv6 bool, proxy *url.URL) (transport.Conn, error) {
	s.dials.Add(1)
	client, server := net.Pipe()
	go s.serve(server)
	return client, nil
}

func (s *fakeSession) serve(conn net.Conn) {
	m, _, err := mode.Accept(conn)
	if err != nil {
		conn.Close()
		return
	}
	s.mu.Lock()
	s.link = m
	s.conn = conn
	s.mu.Unlock()

	for {
		data, err := m.ReadMsg()
		if err != nil {
			return
		}
		msg, err := messages.DeserializeFromClient(data, s.key)
		if err != nil {
			s.t.Errorf("server can't decrypt: %v", err)
			return
		}
		s.mu.Lock()
		s.sessionID = msg.SessionID
		s.salt = msg.Salt
		s.mu.Unlock()

		obj, _ := tl.DecodeUnknownObject(msg.Msg)
		s.in <- inbound{msg: msg, obj: obj}
	}
}

// next waits for the next client message that isn't an ack.
func (s *fakeSession) next() inbound {
	s.t.Helper()
	for {
		select {
		case in := <-s.in:
			if _, ack := in.obj.(*objects.MsgsAck); ack {
				continue
			}
			return in
		case <-time.After(5 * time.Second):
			s.t.Fatal("no message from client")
			return inbound{}
		}
	}
}

// nextAck waits for the next msgs_ack.
func (s *fakeSession) nextAck() *objects.MsgsAck {
	s.t.Helper()
	for {
		select {
		case in := <-s.in:
			if ack, ok := in.obj.(*objects.MsgsAck); ok {
				return ack
			}
		case <-time.After(5 * time.Second):
			s.t.Fatal("no ack from client")
			return nil
		}
	}
}

func (s *fakeSession) reply(obj tl.Object, seqNo int32) {
	s.t.Helper()
	require.NoError(s.t, s.send(obj, seqNo))
}

func (s *fakeSession) send(obj tl.Object, seqNo int32) error {
	data, err := tl.Marshal(obj)
	if err != nil {
		return err
	}
	return s.sendRaw(s.ids.next(), data, seqNo)
}

func (s *fakeSession) sendRaw(msgID int64, data []byte, seqNo int32) error {
	var (
		link          mode.Mode
		salt, session int64
	)
	// the link shows up once the client's mode announcement was read
	for deadline := time.Now().Add(5 * time.Second); ; {
		s.mu.Lock()
		link, salt, session = s.link, s.salt, s.sessionID
		s.mu.Unlock()
		if link != nil {
			break
		}
		if time.Now().After(deadline) {
			return errors.New("no link")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sealed, err := (&messages.Encrypted{
		Msg:       data,
		MsgID:     msgID,
		SeqNo:     seqNo,
		Salt:      salt,
		SessionID: session,
	}).SerializeFromServer(s.key)
	if err != nil {
		return err
	}
	return link.WriteMsg(sealed)
}

// drop closes the current link from the server side.
func (s *fakeSession) drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.link = nil
	}
}

func startedSession(t *testing.T, srv *fakeSession, modify ...func(*Config)) *MTProto {
	t.Helper()

	cfg := Config{
		DcID:       2,
		Addr:       "fake:443",
		AuthKey:    srv.key,
		ServerSalt: 77,
		Timeout:    2 * time.Second,
		Dial:       srv.dial,
		Logger:     testLogger(),
	}
	for _, f := range modify {
		f(&cfg)
	}

	m, err := NewMTProto(cfg)
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() {
		if m.State() == StateRunning {
			_ = m.Stop()
		}
	})
	return m
}

type sendResult struct {
	obj any
	err error
}

func sendAsync(m *MTProto, fn func() (any, error)) <-chan sendResult {
	ch := make(chan sendResult, 1)
	go func() {
		obj, err := fn()
		ch <- sendResult{obj, err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan sendResult) sendResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(10 * time.Second):
		t.Fatal("request never returned")
		return sendResult{}
	}
}
