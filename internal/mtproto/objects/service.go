// Copyright (c) 2024 RoseLoverX

package objects

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"reflect"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

// RpcResult carries the answer to a request. Obj is nil when the payload
// could not be decoded without a type hint; Payload always holds the raw
// answer.
type RpcResult struct {
	ReqMsgID int64
	Obj      tl.Object
	Payload  []byte
}

func (*RpcResult) CRC() uint32 {
	return 0xf35c6d01
}

func (t *RpcResult) MarshalTL(e *tl.Encoder) error {
	e.PutCRC(t.CRC())
	e.PutLong(t.ReqMsgID)
	if t.Obj != nil {
		e.PutObject(t.Obj)
	} else {
		e.PutRawBytes(t.Payload)
	}
	return e.CheckErr()
}

func (t *RpcResult) UnmarshalTL(d *tl.Decoder) error {
	t.ReqMsgID = d.PopLong()
	if err := d.Err(); err != nil {
		return errors.Wrap(err, "reading req_msg_id")
	}

	payload, err := d.GetRestOfMessage()
	if err != nil {
		return err
	}
	t.Payload = payload

	if obj, err := tl.DecodeUnknownObject(payload); err == nil {
		t.Obj = obj
	}
	return nil
}

// Message is one entry of a container.
type Message struct {
	MsgID int64
	SeqNo int32
	Data  []byte
	// Body is nil when Data holds an unregistered constructor
	Body tl.Object
}

type MessageContainer struct {
	Messages []*Message
}

func (*MessageContainer) CRC() uint32 {
	return 0x73f1f8dc
}

func (t *MessageContainer) MarshalTL(e *tl.Encoder) error {
	e.PutCRC(t.CRC())
	e.PutInt(int32(len(t.Messages)))
	for _, msg := range t.Messages {
		e.PutLong(msg.MsgID)
		e.PutInt(msg.SeqNo)
		e.PutInt(int32(len(msg.Data)))
		e.PutRawBytes(msg.Data)
	}
	return e.CheckErr()
}

func (t *MessageContainer) UnmarshalTL(d *tl.Decoder) error {
	count := int(d.PopInt())
	if err := d.Err(); err != nil {
		return errors.Wrap(err, "reading container size")
	}
	if count < 0 || count*16 > d.Len() {
		return errors.Errorf("container of %d messages exceeds payload", count)
	}

	arr := make([]*Message, count)
	for i := range arr {
		msg := &Message{MsgID: d.PopLong(), SeqNo: d.PopInt()}
		size := int(d.PopInt())
		if err := d.Err(); err != nil {
			return errors.Wrap(err, "reading message header")
		}
		if size < 0 || size > d.Len() {
			return errors.Errorf("message of %d bytes exceeds container", size)
		}
		msg.Data = d.PopRawBytes(size)
		if err := d.Err(); err != nil {
			return err
		}
		if obj, err := tl.DecodeUnknownObject(msg.Data); err == nil {
			msg.Body = obj
		}
		arr[i] = msg
	}

	t.Messages = arr
	return nil
}

// GzipPacked wraps a compressed object.
type GzipPacked struct {
	Obj tl.Object
}

func (*GzipPacked) CRC() uint32 {
	return 0x3072cfa1
}

func (t *GzipPacked) MarshalTL(e *tl.Encoder) error {
	raw, err := tl.Marshal(t.Obj)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return errors.Wrap(err, "compressing")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "compressing")
	}

	e.PutCRC(t.CRC())
	e.PutMessage(buf.Bytes())
	return e.CheckErr()
}

func (t *GzipPacked) UnmarshalTL(d *tl.Decoder) error {
	packed := d.PopMessage()
	if err := d.Err(); err != nil {
		return errors.Wrap(err, "reading packed data")
	}

	raw, err := gunzip(packed)
	if err != nil {
		return err
	}

	t.Obj, err = tl.DecodeUnknownObject(raw)
	return err
}

func gunzip(packed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, errors.Wrap(err, "creating gzip reader")
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "decompressing")
	}
	return raw, nil
}

// DecodeRPCPayload decodes the raw answer of a request with decoder hints,
// looking through a gzip layer.
func DecodeRPCPayload(payload []byte, expect ...reflect.Type) (tl.Object, error) {
	if len(payload) >= tl.WordLen && binary.LittleEndian.Uint32(payload) == (*GzipPacked)(nil).CRC() {
		d, err := tl.NewDecoder(bytes.NewReader(payload[tl.WordLen:]))
		if err != nil {
			return nil, err
		}
		packed := d.PopMessage()
		if err := d.Err(); err != nil {
			return nil, errors.Wrap(err, "reading packed data")
		}
		raw, err := gunzip(packed)
		if err != nil {
			return nil, err
		}
		return tl.DecodeUnknownObject(raw, expect...)
	}
	return tl.DecodeUnknownObject(payload, expect...)
}

// Unwrap strips gzip layers.
func Unwrap(obj tl.Object) tl.Object {
	for {
		packed, ok := obj.(*GzipPacked)
		if !ok {
			return obj
		}
		obj = packed.Obj
	}
}
