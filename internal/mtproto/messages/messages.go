// Copyright (c) 2024 RoseLoverX

package messages

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	ige "github.com/roseloverx/mtproto/internal/aes_ige"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/utils"
)

// Common is an MTProto envelope, encrypted or not.
type Common interface {
	GetMsg() []byte
	GetMsgID() int64
	GetSeqNo() int32
}

// MessageInformator gives an envelope the session state it is sealed with.
type MessageInformator interface {
	GetSessionID() int64
	GetServerSalt() int64
	GetAuthKey() []byte
}

// ErrUnknownAuthKey is returned for packets sealed with a key we don't hold.
var ErrUnknownAuthKey = errors.New("wrong auth key id")

// Encrypted is a message protected by an auth key.
type Encrypted struct {
	Msg   []byte
	MsgID int64
	SeqNo int32

	// filled on decode
	Salt      int64
	SessionID int64
}

func (msg *Encrypted) GetMsg() []byte  { return msg.Msg }
func (msg *Encrypted) GetMsgID() int64 { return msg.MsgID }
func (msg *Encrypted) GetSeqNo() int32 { return msg.SeqNo }

// Serialize seals msg for the server.
func (msg *Encrypted) Serialize(client MessageInformator) ([]byte, error) {
	return seal(client.GetAuthKey(), serializePacket(client.GetServerSalt(), client.GetSessionID(), msg), ige.Encrypt)
}

// SerializeFromServer seals msg in the server to client direction with its
// own Salt and SessionID. In-process peers playing the server use it.
func (msg *Encrypted) SerializeFromServer(authKey []byte) ([]byte, error) {
	return seal(authKey, serializePacket(msg.Salt, msg.SessionID, msg), ige.EncryptFromServer)
}

// DeserializeEncrypted opens a server packet.
func DeserializeEncrypted(data, authKey []byte) (*Encrypted, error) {
	return open(data, authKey, ige.Decrypt)
}

// DeserializeFromClient opens a client packet.
func DeserializeFromClient(data, authKey []byte) (*Encrypted, error) {
	return open(data, authKey, ige.DecryptFromClient)
}

// salt(8) session_id(8) msg_id(8) seq_no(4) length(4) body
func serializePacket(salt, sessionID int64, msg *Encrypted) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 32+len(msg.Msg)))
	e := tl.NewEncoder(buf)
	e.PutLong(salt)
	e.PutLong(sessionID)
	e.PutLong(msg.MsgID)
	e.PutInt(msg.SeqNo)
	e.PutInt(int32(len(msg.Msg)))
	e.PutRawBytes(msg.Msg)
	return buf.Bytes()
}

type sealFunc func(msg, authKey []byte) ([]byte, []byte, error)

type openFunc func(msg, authKey, msgKey []byte) ([]byte, error)

func seal(authKey, packet []byte, encrypt sealFunc) ([]byte, error) {
	encrypted, msgKey, err := encrypt(packet, authKey)
	if err != nil {
		return nil, errors.Wrap(err, "encrypting")
	}

	out := make([]byte, 0, 24+len(encrypted))
	out = append(out, utils.AuthKeyHash(authKey)...)
	out = append(out, msgKey...)
	out = append(out, encrypted...)
	return out, nil
}

func open(data, authKey []byte, decrypt openFunc) (*Encrypted, error) {
	if len(data) < 24+32 {
		return nil, errors.Errorf("encrypted packet too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], utils.AuthKeyHash(authKey)) {
		return nil, ErrUnknownAuthKey
	}

	plain, err := decrypt(data[24:], authKey, data[8:24])
	if err != nil {
		return nil, errors.Wrap(err, "decrypting")
	}

	msg := &Encrypted{
		Salt:      int64(binary.LittleEndian.Uint64(plain[0:8])),
		SessionID: int64(binary.LittleEndian.Uint64(plain[8:16])),
		MsgID:     int64(binary.LittleEndian.Uint64(plain[16:24])),
		SeqNo:     int32(binary.LittleEndian.Uint32(plain[24:28])),
	}

	length := int(int32(binary.LittleEndian.Uint32(plain[28:32])))
	padding := len(plain) - 32 - length
	if length < 0 || length%tl.WordLen != 0 || padding < 12 || padding > 1024 {
		return nil, errors.Errorf("invalid message length %d in %d byte packet", length, len(plain))
	}

	msg.Msg = plain[32 : 32+length]
	return msg, nil
}

// Unencrypted is a handshake message, sent before an auth key exists.
type Unencrypted struct {
	Msg   []byte
	MsgID int64
}

func (msg *Unencrypted) GetMsg() []byte  { return msg.Msg }
func (msg *Unencrypted) GetMsgID() int64 { return msg.MsgID }
func (msg *Unencrypted) GetSeqNo() int32 { return 0 }

// auth_key_id = 0 (8) msg_id(8) length(4) body
func (msg *Unencrypted) Serialize() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 20+len(msg.Msg)))
	e := tl.NewEncoder(buf)
	e.PutLong(0)
	e.PutLong(msg.MsgID)
	e.PutInt(int32(len(msg.Msg)))
	e.PutRawBytes(msg.Msg)
	return buf.Bytes()
}

func DeserializeUnencrypted(data []byte) (*Unencrypted, error) {
	if len(data) < 20 {
		return nil, errors.Errorf("unencrypted packet too short: %d bytes", len(data))
	}
	if binary.LittleEndian.Uint64(data[:8]) != 0 {
		return nil, errors.New("auth key id of unencrypted packet isn't zero")
	}

	msg := &Unencrypted{MsgID: int64(binary.LittleEndian.Uint64(data[8:16]))}
	length := int(binary.LittleEndian.Uint32(data[16:20]))
	if length > len(data)-20 {
		return nil, errors.Errorf("message length %d exceeds packet", length)
	}
	msg.Msg = data[20 : 20+length]
	return msg, nil
}

// IsEncrypted reports whether a raw packet carries a non-zero auth key id.
func IsEncrypted(data []byte) bool {
	return len(data) >= 8 && binary.LittleEndian.Uint64(data[:8]) != 0
}
