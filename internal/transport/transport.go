// Copyright (c) 2024 RoseLoverX

package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/mode"
	"github.com/roseloverx/mtproto/internal/mtproto/messages"
)

type Transport interface {
	Close() error
	WriteMsg(msg messages.Common) error
	ReadMsg() (messages.Common, error)
}

type transport struct {
	conn Conn
	mode Mode
	m    messages.MessageInformator

	writeMu sync.Mutex
}

func NewTransport(m messages.MessageInformator, conn ConnConfig, modeVariant mode.Variant) (Transport, error) {
	var (
		c   Conn
		err error
	)
	switch cfg := conn.(type) {
	case TCPConnConfig:
		c, err = NewTCP(cfg)
	case Conn:
		c = cfg
	default:
		return nil, fmt.Errorf("unsupported connection type %v", reflect.TypeOf(conn))
	}
	if err != nil {
		return nil, errors.Wrap(err, "setup connection")
	}

	t := &transport{conn: c, m: m}
	t.mode, err = mode.New(modeVariant, t.conn)
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "setup mode")
	}

	return t, nil
}

func (t *transport) Close() error {
	return t.conn.Close()
}

func (t *transport) WriteMsg(msg messages.Common) error {
	var data []byte
	switch message := msg.(type) {
	case *messages.Unencrypted:
		data = message.Serialize()

	case *messages.Encrypted:
		var err error
		data, err = message.Serialize(t.m)
		if err != nil {
			return errors.Wrap(err, "serializing message")
		}

	default:
		return fmt.Errorf("supported only mtproto predefined messages, got %v", reflect.TypeOf(msg))
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.mode.WriteMsg(data); err != nil {
		return errors.Wrap(err, "sending request")
	}
	return nil
}

func (t *transport) ReadMsg() (messages.Common, error) {
	data, err := t.mode.ReadMsg()
	if err != nil {
		if IsClosed(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, "reading message")
	}

	if len(data) == tl.WordLen {
		code := int32(binary.LittleEndian.Uint32(data))
		return nil, ErrCode(code)
	}

	var msg messages.Common
	if messages.IsEncrypted(data) {
		msg, err = messages.DeserializeEncrypted(data, t.m.GetAuthKey())
	} else {
		msg, err = messages.DeserializeUnencrypted(data)
	}
	if err != nil {
		return nil, errors.Wrap(err, "parsing message")
	}

	// server message ids are odd
	mod := msg.GetMsgID() & 3
	if mod != 1 && mod != 3 {
		return nil, fmt.Errorf("wrong bits of message_id: %d", mod)
	}

	return msg, nil
}

// IsClosed reports whether err means the link went away.
func IsClosed(err error) bool {
	for _, target := range []error{io.EOF, io.ErrUnexpectedEOF, io.ErrClosedPipe, net.ErrClosed, context.Canceled} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrCode is a transport level error: the server sent a bare negative
// 32-bit code (-404 unknown auth key, -429 too many connections, ...).
type ErrCode int32

func (e ErrCode) Error() string {
	return fmt.Sprintf("transport error code %d", int32(e))
}
