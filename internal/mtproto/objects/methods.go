// Copyright (c) 2024 RoseLoverX

package objects

import (
	"context"
	"reflect"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type requester interface {
	MakeRequest(ctx context.Context, msg tl.Object) (any, error)
}

type ReqPQMultiParams struct {
	Nonce tl.Int128
}

func (*ReqPQMultiParams) CRC() uint32 {
	return 0xbe7e8ef1
}

func ReqPQMulti(ctx context.Context, m requester, nonce tl.Int128) (*ResPQ, error) {
	data, err := m.MakeRequest(ctx, &ReqPQMultiParams{Nonce: nonce})
	if err != nil {
		return nil, errors.Wrap(err, "sending ReqPQMulti")
	}

	resp, ok := data.(*ResPQ)
	if !ok {
		return nil, errors.New("got invalid response type: " + reflect.TypeOf(data).String())
	}

	return resp, nil
}

type ReqDHParamsParams struct {
	Nonce                tl.Int128
	ServerNonce          tl.Int128
	P                    []byte
	Q                    []byte
	PublicKeyFingerprint int64
	EncryptedData        []byte
}

func (*ReqDHParamsParams) CRC() uint32 {
	return 0xd712e4be
}

func ReqDHParams(ctx context.Context, m requester, params *ReqDHParamsParams) (ServerDHParams, error) {
	data, err := m.MakeRequest(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "sending ReqDHParams")
	}

	resp, ok := data.(ServerDHParams)
	if !ok {
		return nil, errors.New("got invalid response type: " + reflect.TypeOf(data).String())
	}

	return resp, nil
}

type SetClientDHParamsParams struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	EncryptedData []byte
}

func (*SetClientDHParamsParams) CRC() uint32 {
	return 0xf5045f1f
}

func SetClientDHParams(ctx context.Context, m requester, nonce, serverNonce tl.Int128, encryptedData []byte) (SetClientDHParamsAnswer, error) {
	data, err := m.MakeRequest(ctx, &SetClientDHParamsParams{
		Nonce:         nonce,
		ServerNonce:   serverNonce,
		EncryptedData: encryptedData,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sending SetClientDHParams")
	}

	resp, ok := data.(SetClientDHParamsAnswer)
	if !ok {
		return nil, errors.New("got invalid response type: " + reflect.TypeOf(data).String())
	}

	return resp, nil
}

type PingParams struct {
	PingID int64
}

func (*PingParams) CRC() uint32 {
	return 0x7abe77ec
}

func Ping(ctx context.Context, m requester, pingID int64) (*Pong, error) {
	data, err := m.MakeRequest(ctx, &PingParams{PingID: pingID})
	if err != nil {
		return nil, errors.Wrap(err, "sending Ping")
	}

	resp, ok := data.(*Pong)
	if !ok {
		return nil, errors.New("got invalid response type: " + reflect.TypeOf(data).String())
	}

	return resp, nil
}

type PingDelayDisconnectParams struct {
	PingID          int64
	DisconnectDelay int32
}

func (*PingDelayDisconnectParams) CRC() uint32 {
	return 0xf3427b8c
}

func PingDelayDisconnect(ctx context.Context, m requester, pingID int64, disconnectDelay int32) (*Pong, error) {
	data, err := m.MakeRequest(ctx, &PingDelayDisconnectParams{
		PingID:          pingID,
		DisconnectDelay: disconnectDelay,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sending PingDelayDisconnect")
	}

	resp, ok := data.(*Pong)
	if !ok {
		return nil, errors.New("got invalid response type: " + reflect.TypeOf(data).String())
	}

	return resp, nil
}

type DestroySessionParams struct {
	SessionID int64
}

func (*DestroySessionParams) CRC() uint32 {
	return 0xe7512126
}
