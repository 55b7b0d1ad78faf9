// Copyright (c) 2022 RoseLoverX

package mtproto

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/mtproto/messages"
	"github.com/roseloverx/mtproto/internal/mtproto/objects"
	"github.com/roseloverx/mtproto/internal/utils"
)

// maxResends bounds how often one request is resent for salt or clock
// corrections before the caller gets an error.
const maxResends = 5

var errNoLink = errors.New("no network link")

// MakeRequest sends msg with the session's default timeout and retries.
func (m *MTProto) MakeRequest(ctx context.Context, msg tl.Object) (any, error) {
	return m.invoke(ctx, msg, m.cfg.Retries, m.cfg.Timeout, nil)
}

// MakeRequestWithHintToDecoder is MakeRequest for answers holding vectors
// of bare types, which can't be decoded without knowing their element type.
func (m *MTProto) MakeRequestWithHintToDecoder(ctx context.Context, msg tl.Object, expectedTypes ...reflect.Type) (any, error) {
	return m.invoke(ctx, msg, m.cfg.Retries, m.cfg.Timeout, expectedTypes)
}

// Send encrypts and sends msg, then blocks until the answer arrives. Every
// attempt waits at most timeout; a timed out attempt is resent under a new
// message id up to retries times before a *TimeoutError is returned.
func (m *MTProto) Send(ctx context.Context, msg tl.Object, retries int, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		timeout = m.cfg.Timeout
	}
	return m.invoke(ctx, msg, max(retries, 0), timeout, nil)
}

func (m *MTProto) invoke(ctx context.Context, msg tl.Object, retries int, timeout time.Duration, expect []reflect.Type) (any, error) {
	data, err := tl.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	var attempts, resends int
	for {
		if err := m.waitRunning(ctx, "send "+requestName(msg)); err != nil {
			return nil, err
		}

		p := newPendingRequest(0, time.Now().Add(timeout), expect)
		msgID, err := m.sendPacket(data, true, p)
		if err != nil {
			attempts++
			if attempts > retries {
				return nil, &ConnectError{Addr: m.Addr(), Err: err}
			}
			m.log.WithError(err).Debugf("writing %s, retrying", requestName(msg))
			if err := sleep(ctx, min(timeout, time.Second)); err != nil {
				return nil, err
			}
			continue
		}

		timer := time.NewTimer(timeout)
		select {
		case out := <-p.result:
			timer.Stop()
			switch {
			case out.err == nil:
				return tl.UnwrapNativeTypes(out.obj), nil
			case errors.Is(out.err, errResend):
				resends++
				if resends > maxResends {
					return nil, errors.Errorf("%s: resent too many times", requestName(msg))
				}
				continue
			case errors.Is(out.err, errExpired):
				attempts++
			default:
				return nil, out.err
			}

		case <-timer.C:
			m.pending.remove(msgID)
			attempts++

		case <-ctx.Done():
			timer.Stop()
			m.pending.remove(msgID)
			return nil, ctx.Err()
		}

		if attempts > retries {
			return nil, &TimeoutError{Request: requestName(msg), Attempts: attempts}
		}
		m.log.Debugf("%s timed out, attempt %d of %d", requestName(msg), attempts, retries+1)
	}
}

// waitRunning lets a request ride out a reconnect or a migration in
// progress; any other state than Running fails it.
func (m *MTProto) waitRunning(ctx context.Context, op string) error {
	for {
		switch st := m.State(); st {
		case StateRunning:
			return nil
		case StateStarting, StateMigrating:
			if err := sleep(ctx, 50*time.Millisecond); err != nil {
				return err
			}
		default:
			return &InvalidStateError{Op: op, State: st}
		}
	}
}

// sendPacket writes one encrypted message. p, when given, is registered
// under the new message id before the write, so an answer racing the write
// still finds it.
func (m *MTProto) sendPacket(data []byte, content bool, p *pendingRequest) (int64, error) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	m.mu.RLock()
	tr := m.transport
	m.mu.RUnlock()
	if tr == nil {
		return 0, errNoLink
	}

	msgID := m.msgID(m.timeOffset.Load())
	seqNo := m.nextSeqNo(content)
	if p != nil {
		p.msgID = msgID
		m.pending.register(p)
	}

	err := tr.WriteMsg(&messages.Encrypted{
		Msg:   data,
		MsgID: msgID,
		SeqNo: seqNo,
	})
	if err != nil {
		if p != nil {
			m.pending.remove(msgID)
		}
		return 0, errors.Wrap(err, "writing message")
	}
	return msgID, nil
}

// nextSeqNo is twice the number of content related messages sent before,
// plus one for a content related message.
func (m *MTProto) nextSeqNo(content bool) int32 {
	m.seqNoMu.Lock()
	defer m.seqNoMu.Unlock()

	if !content {
		return m.seqNo * 2
	}
	seq := m.seqNo*2 + 1
	m.seqNo++
	return seq
}

// flushAcks acknowledges the content related messages received so far.
func (m *MTProto) flushAcks() error {
	ids := m.acks.Drain()
	if len(ids) == 0 {
		return nil
	}

	data, err := tl.Marshal(&objects.MsgsAck{MsgIDs: ids})
	if err != nil {
		return errors.Wrap(err, "encoding acks")
	}
	if _, err := m.sendPacket(data, false, nil); err != nil {
		for _, id := range ids {
			m.acks.Add(id)
		}
		return err
	}
	return nil
}

// processMessage dispatches one inbound message. body is the already
// decoded object of a container entry, or nil.
func (m *MTProto) processMessage(msgID int64, seqNo int32, raw []byte, body tl.Object) {
	if seqNo%2 == 1 {
		m.acks.Add(msgID)
	}

	obj := body
	if obj == nil {
		var err error
		obj, err = tl.DecodeUnknownObject(raw)
		if err != nil {
			m.log.WithError(err).Warn("decoding inbound message")
			m.log.Dump("undecodable message", raw)
			return
		}
	}
	obj = objects.Unwrap(obj)

	switch msg := obj.(type) {
	case *objects.MessageContainer:
		for _, inner := range msg.Messages {
			m.processMessage(inner.MsgID, inner.SeqNo, inner.Data, inner.Body)
		}

	case *objects.RpcResult:
		m.handleRpcResult(msg)

	case *objects.BadServerSalt:
		m.log.Debugf("server salt changed to %d", msg.NewSalt)
		m.serverSalt.Store(msg.NewSalt)
		m.pending.fail(msg.BadMsgID, errResend)

	case *objects.BadMsgNotification:
		m.handleBadMsg(msgID, msg)

	case *objects.NewSessionCreated:
		m.log.Debug("new session created")
		m.serverSalt.Store(msg.ServerSalt)

	case *objects.Pong:
		m.pending.resolve(msg.MsgID, msg)

	case *objects.MsgsDetailedInfo:
		m.acks.Add(msg.AnswerMsgID)

	case *objects.MsgsNewDetailedInfo:
		m.acks.Add(msg.AnswerMsgID)

	case *objects.MsgsAck, *objects.MsgsStateInfo, *objects.MsgsAllInfo, *objects.MsgResendReq,
		*objects.DestroySessionOk, *objects.DestroySessionNone:

	default:
		if m.cfg.NoUpdates {
			return
		}
		if !m.updates.Push(obj) {
			m.log.Debugf("update %T dropped, queue closed", obj)
		}
	}
}

func (m *MTProto) handleRpcResult(r *objects.RpcResult) {
	obj := r.Obj
	if expect := m.pending.expectedTypes(r.ReqMsgID); obj == nil || len(expect) > 0 {
		decoded, err := objects.DecodeRPCPayload(r.Payload, expect...)
		if err != nil {
			m.log.Dump("undecodable result", r.Payload)
			m.pending.fail(r.ReqMsgID, errors.Wrap(err, "decoding result"))
			return
		}
		obj = decoded
	}
	obj = objects.Unwrap(obj)

	if e, ok := obj.(*objects.RpcError); ok {
		m.pending.fail(r.ReqMsgID, RpcErrorToNative(e))
		return
	}
	if !m.pending.resolve(r.ReqMsgID, obj) {
		m.log.Debugf("result for unknown request %d (%T)", r.ReqMsgID, obj)
	}
}

func (m *MTProto) handleBadMsg(serverMsgID int64, n *objects.BadMsgNotification) {
	switch BadSystemMessageCode(n.Code) {
	case ErrBadMsgIdTooLow, ErrBadMsgIdTooHigh:
		offset := utils.TimeOffsetFromMsgID(serverMsgID)
		m.log.Debugf("clock skew detected, time offset now %ds", offset)
		m.timeOffset.Store(offset)
		m.pending.fail(n.BadMsgID, errResend)
	default:
		err := BadMsgErrorFromNative(n)
		m.log.WithError(err).Warnf("bad message %d", n.BadMsgID)
		m.pending.fail(n.BadMsgID, err)
	}
}

// requestName is the Go type name of a request, for logs and errors.
func requestName(msg tl.Object) string {
	t := reflect.TypeOf(msg)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
