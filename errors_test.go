// Copyright (c) 2024 RoseLoverX

package mtproto

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/roseloverx/mtproto/internal/mtproto/objects"
)

func TestTryExpandError(t *testing.T) {
	tests := []struct {
		in   string
		name string
		data any
	}{
		{"FLOOD_WAIT_17", "FLOOD_WAIT_X", 17},
		{"PHONE_MIGRATE_4", "PHONE_MIGRATE_X", 4},
		{"FILE_PART_3_MISSING", "FILE_PART_X_MISSING", 3},
		{"INTERDC_2_CALL_ERROR", "INTERDC_X_CALL_ERROR", 2},
		{"FLOOD_WAIT_", "FLOOD_WAIT_", nil},
		{"PEER_ID_INVALID", "PEER_ID_INVALID", nil},
	}
	for _, tt := range tests {
		name, data := TryExpandError(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.data, data, tt.in)
	}
}

func TestRpcErrorToNative(t *testing.T) {
	err := RpcErrorToNative(&objects.RpcError{ErrorCode: 303, ErrorMessage: "USER_MIGRATE_5"}, "auth.importBotAuthorization")

	var e *ErrResponseCode
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, int64(303), e.Code)
	assert.Contains(t, e.Description, "DC 5")
	assert.Contains(t, e.Description, "auth.importBotAuthorization")

	dc, ok := AsMigrate(err)
	assert.True(t, ok)
	assert.Equal(t, 5, dc)

	_, ok = AsFloodWait(err)
	assert.False(t, ok)
}

func TestErrorMatchers(t *testing.T) {
	wrapped := errors.Wrap(RpcErrorToNative(&objects.RpcError{ErrorCode: 420, ErrorMessage: "SLOWMODE_WAIT_3"}), "sending")
	wait, ok := AsFloodWait(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, wait)
	assert.True(t, MatchError(wrapped, "PEER_ID_INVALID", "SLOWMODE_WAIT_X"))
	assert.False(t, MatchError(wrapped, "FLOOD_WAIT_X"))
	assert.False(t, MatchError(errors.New("plain"), "FLOOD_WAIT_X"))

	fileErr := RpcErrorToNative(&objects.RpcError{ErrorCode: 303, ErrorMessage: "FILE_MIGRATE_2"})
	dc, ok := AsFileMigrate(fileErr)
	assert.True(t, ok)
	assert.Equal(t, 2, dc)
	_, ok = AsMigrate(fileErr)
	assert.False(t, ok, "file migration doesn't re-home the session")
}

func TestUnknownRpcErrorKeepsMessage(t *testing.T) {
	err := RpcErrorToNative(&objects.RpcError{ErrorCode: 400, ErrorMessage: "SOMETHING_NEW"})
	assert.Equal(t, "[SOMETHING_NEW] SOMETHING_NEW (code 400)", err.Error())
}

func TestTypedErrors(t *testing.T) {
	cause := errors.New("refused")
	neg := &NegotiationError{Stage: "dial", Err: &ConnectError{Addr: "a:1", Err: cause}}
	assert.ErrorIs(t, neg, cause)

	var connErr *ConnectError
	assert.True(t, errors.As(neg, &connErr))
	assert.Equal(t, "a:1", connErr.Addr)

	assert.Equal(t, "can't stop: session is stopped", (&InvalidStateError{Op: "stop", State: StateStopped}).Error())
	assert.Contains(t, (&TimeoutError{Request: "PingParams", Attempts: 4}).Error(), "4 attempt(s)")

	bad := BadMsgErrorFromNative(&objects.BadMsgNotification{Code: int32(ErrBadMsgSeqNoTooLow)})
	assert.Contains(t, bad.Error(), "code 32")
	assert.NotEmpty(t, bad.Description)
}
