// Copyright (c) 2024 RoseLoverX

package objects

import (
	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

// https://core.telegram.org/schema/mtproto

type ResPQ struct {
	Nonce        tl.Int128
	ServerNonce  tl.Int128
	Pq           []byte
	Fingerprints []int64
}

func (*ResPQ) CRC() uint32 {
	return 0x05162463
}

type PQInnerData struct {
	Pq          []byte
	P           []byte
	Q           []byte
	Nonce       tl.Int128
	ServerNonce tl.Int128
	NewNonce    tl.Int256
}

func (*PQInnerData) CRC() uint32 {
	return 0x83c95aec
}

type ServerDHParams interface {
	tl.Object
	ImplementsServerDHParams()
}

type ServerDHParamsFail struct {
	Nonce        tl.Int128
	ServerNonce  tl.Int128
	NewNonceHash tl.Int128
}

func (*ServerDHParamsFail) ImplementsServerDHParams() {}

func (*ServerDHParamsFail) CRC() uint32 {
	return 0x79cb045d
}

type ServerDHParamsOk struct {
	Nonce           tl.Int128
	ServerNonce     tl.Int128
	EncryptedAnswer []byte
}

func (*ServerDHParamsOk) ImplementsServerDHParams() {}

func (*ServerDHParamsOk) CRC() uint32 {
	return 0xd0e8075c
}

type ServerDHInnerData struct {
	Nonce       tl.Int128
	ServerNonce tl.Int128
	G           int32
	DhPrime     []byte
	GA          []byte
	ServerTime  int32
}

func (*ServerDHInnerData) CRC() uint32 {
	return 0xb5890dba
}

type ClientDHInnerData struct {
	Nonce       tl.Int128
	ServerNonce tl.Int128
	RetryID     int64
	GB          []byte
}

func (*ClientDHInnerData) CRC() uint32 {
	return 0x6643b654
}

type SetClientDHParamsAnswer interface {
	tl.Object
	ImplementsSetClientDHParamsAnswer()
}

type DHGenOk struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	NewNonceHash1 tl.Int128
}

func (*DHGenOk) ImplementsSetClientDHParamsAnswer() {}

func (*DHGenOk) CRC() uint32 {
	return 0x3bcbf734
}

type DHGenRetry struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	NewNonceHash2 tl.Int128
}

func (*DHGenRetry) ImplementsSetClientDHParamsAnswer() {}

func (*DHGenRetry) CRC() uint32 {
	return 0x46dc1fb9
}

type DHGenFail struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	NewNonceHash3 tl.Int128
}

func (*DHGenFail) ImplementsSetClientDHParamsAnswer() {}

func (*DHGenFail) CRC() uint32 {
	return 0xa69dae02
}

type RpcError struct {
	ErrorCode    int32
	ErrorMessage string
}

func (*RpcError) CRC() uint32 {
	return 0x2144ca19
}

type RpcAnswerUnknown struct{}

func (*RpcAnswerUnknown) CRC() uint32 {
	return 0x5e2ad36e
}

type RpcAnswerDroppedRunning struct{}

func (*RpcAnswerDroppedRunning) CRC() uint32 {
	return 0xcd78e586
}

type RpcAnswerDropped struct {
	MsgID int64
	SeqNo int32
	Bytes int32
}

func (*RpcAnswerDropped) CRC() uint32 {
	return 0xa43ad8b7
}

type Pong struct {
	MsgID  int64
	PingID int64
}

func (*Pong) CRC() uint32 {
	return 0x347773c5
}

type NewSessionCreated struct {
	FirstMsgID int64
	UniqueID   int64
	ServerSalt int64
}

func (*NewSessionCreated) CRC() uint32 {
	return 0x9ec20908
}

type MsgsAck struct {
	MsgIDs []int64
}

func (*MsgsAck) CRC() uint32 {
	return 0x62d6b459
}

type BadMsgNotification struct {
	BadMsgID    int64
	BadMsgSeqNo int32
	Code        int32
}

func (*BadMsgNotification) CRC() uint32 {
	return 0xa7eff811
}

type BadServerSalt struct {
	BadMsgID    int64
	BadMsgSeqNo int32
	ErrorCode   int32
	NewSalt     int64
}

func (*BadServerSalt) CRC() uint32 {
	return 0xedab447b
}

type MsgResendReq struct {
	MsgIDs []int64
}

func (*MsgResendReq) CRC() uint32 {
	return 0x7d861a08
}

type MsgsStateReq struct {
	MsgIDs []int64
}

func (*MsgsStateReq) CRC() uint32 {
	return 0xda69fb52
}

type MsgsStateInfo struct {
	ReqMsgID int64
	Info     []byte
}

func (*MsgsStateInfo) CRC() uint32 {
	return 0x04deb57d
}

type MsgsAllInfo struct {
	MsgIDs []int64
	Info   []byte
}

func (*MsgsAllInfo) CRC() uint32 {
	return 0x8cc0d131
}

type MsgsDetailedInfo struct {
	MsgID       int64
	AnswerMsgID int64
	Bytes       int32
	Status      int32
}

func (*MsgsDetailedInfo) CRC() uint32 {
	return 0x276d3ec6
}

type MsgsNewDetailedInfo struct {
	AnswerMsgID int64
	Bytes       int32
	Status      int32
}

func (*MsgsNewDetailedInfo) CRC() uint32 {
	return 0x809db6df
}

type DestroySessionOk struct {
	SessionID int64
}

func (*DestroySessionOk) CRC() uint32 {
	return 0xe22045fc
}

type DestroySessionNone struct {
	SessionID int64
}

func (*DestroySessionNone) CRC() uint32 {
	return 0x62d350c9
}
