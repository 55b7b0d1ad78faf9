// Copyright (c) 2024 RoseLoverX

package objects

import (
	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

func init() {
	tl.RegisterObjects(
		&ReqPQMultiParams{},
		&ReqDHParamsParams{},
		&SetClientDHParamsParams{},
		&PingParams{},
		&PingDelayDisconnectParams{},
		&DestroySessionParams{},
		&ResPQ{},
		&PQInnerData{},
		&ServerDHParamsFail{},
		&ServerDHParamsOk{},
		&ServerDHInnerData{},
		&ClientDHInnerData{},
		&DHGenOk{},
		&DHGenRetry{},
		&DHGenFail{},
		&RpcResult{},
		&RpcError{},
		&RpcAnswerUnknown{},
		&RpcAnswerDroppedRunning{},
		&RpcAnswerDropped{},
		&Pong{},
		&NewSessionCreated{},
		&MessageContainer{},
		&GzipPacked{},
		&MsgsAck{},
		&BadMsgNotification{},
		&BadServerSalt{},
		&MsgResendReq{},
		&MsgsStateReq{},
		&MsgsStateInfo{},
		&MsgsAllInfo{},
		&MsgsDetailedInfo{},
		&MsgsNewDetailedInfo{},
		&DestroySessionOk{},
		&DestroySessionNone{},
	)
}
