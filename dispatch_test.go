// Copyright (c) 2024 RoseLoverX

package mtproto

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roseloverx/mtproto/internal/mtproto/objects"
)

func TestDispatchResolve(t *testing.T) {
	d := newDispatchTable()
	p := newPendingRequest(4, time.Time{}, nil)
	d.register(p)
	require.Equal(t, 1, d.len())

	assert.True(t, d.resolve(4, &objects.Pong{PingID: 1}))
	out := <-p.result
	assert.NoError(t, out.err)
	assert.Equal(t, &objects.Pong{PingID: 1}, out.obj)

	assert.False(t, d.resolve(4, &objects.Pong{}), "a slot resolves once")
	assert.Zero(t, d.len())
}

func TestDispatchFailAndRemove(t *testing.T) {
	d := newDispatchTable()
	p := newPendingRequest(8, time.Time{}, nil)
	d.register(p)

	assert.True(t, d.fail(8, errResend))
	assert.ErrorIs(t, (<-p.result).err, errResend)

	d.register(newPendingRequest(12, time.Time{}, nil))
	d.remove(12)
	assert.False(t, d.fail(12, errResend))
}

func TestDispatchExpectedTypes(t *testing.T) {
	d := newDispatchTable()
	hint := []reflect.Type{reflect.TypeOf([]int64{})}
	d.register(newPendingRequest(16, time.Time{}, hint))

	assert.Equal(t, hint, d.expectedTypes(16))
	assert.Nil(t, d.expectedTypes(20))
}

func TestDispatchCancelAll(t *testing.T) {
	d := newDispatchTable()
	reqs := []*pendingRequest{
		newPendingRequest(4, time.Time{}, nil),
		newPendingRequest(8, time.Time{}, nil),
		newPendingRequest(12, time.Time{}, nil),
	}
	for _, p := range reqs {
		d.register(p)
	}

	assert.Equal(t, 3, d.cancelAll(ErrSessionStopped))
	for _, p := range reqs {
		assert.ErrorIs(t, (<-p.result).err, ErrSessionStopped)
	}
	assert.Zero(t, d.len())
}

func TestDispatchExpire(t *testing.T) {
	d := newDispatchTable()
	now := time.Now()
	old := newPendingRequest(4, now.Add(-time.Second), nil)
	fresh := newPendingRequest(8, now.Add(time.Minute), nil)
	forever := newPendingRequest(12, time.Time{}, nil)
	d.register(old)
	d.register(fresh)
	d.register(forever)

	assert.Equal(t, []int64{4}, d.expire(now))
	assert.ErrorIs(t, (<-old.result).err, errExpired)
	assert.Equal(t, 2, d.len())
}
