// Copyright (c) 2024 RoseLoverX

package mtproto

import (
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

// errResend tells the waiting caller to send its request again under a new
// message id, without spending a retry.
var errResend = errors.New("request must be resent")

type outcome struct {
	obj tl.Object
	err error
}

// pendingRequest is owned by the dispatch table from register until one of
// resolve, fail, cancelAll or expire removes it.
type pendingRequest struct {
	msgID    int64
	expect   []reflect.Type
	deadline time.Time
	result   chan outcome
}

func newPendingRequest(msgID int64, deadline time.Time, expect []reflect.Type) *pendingRequest {
	return &pendingRequest{
		msgID:    msgID,
		expect:   expect,
		deadline: deadline,
		result:   make(chan outcome, 1),
	}
}

type dispatchTable struct {
	mu      sync.Mutex
	pending map[int64]*pendingRequest
}

func newDispatchTable() *dispatchTable {
	return &dispatchTable{pending: make(map[int64]*pendingRequest)}
}

func (d *dispatchTable) register(p *pendingRequest) {
	d.mu.Lock()
	d.pending[p.msgID] = p
	d.mu.Unlock()
}

func (d *dispatchTable) take(msgID int64) (*pendingRequest, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[msgID]
	if ok {
		delete(d.pending, msgID)
	}
	return p, ok
}

// expectedTypes returns the decoder hints of a pending request.
func (d *dispatchTable) expectedTypes(msgID int64) []reflect.Type {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[msgID]; ok {
		return p.expect
	}
	return nil
}

// resolve delivers obj to the request sent as msgID.
func (d *dispatchTable) resolve(msgID int64, obj tl.Object) bool {
	p, ok := d.take(msgID)
	if ok {
		p.result <- outcome{obj: obj}
	}
	return ok
}

// fail delivers err to the request sent as msgID.
func (d *dispatchTable) fail(msgID int64, err error) bool {
	p, ok := d.take(msgID)
	if ok {
		p.result <- outcome{err: err}
	}
	return ok
}

// remove forgets msgID without notifying its caller.
func (d *dispatchTable) remove(msgID int64) {
	d.take(msgID)
}

// cancelAll fails every pending request with err.
func (d *dispatchTable) cancelAll(err error) int {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[int64]*pendingRequest)
	d.mu.Unlock()

	for _, p := range pending {
		p.result <- outcome{err: err}
	}
	return len(pending)
}

// expire fails the requests whose deadline passed before now with
// errExpired; their callers count it as a timed out attempt.
func (d *dispatchTable) expire(now time.Time) []int64 {
	d.mu.Lock()
	var expired []*pendingRequest
	for id, p := range d.pending {
		if !p.deadline.IsZero() && p.deadline.Before(now) {
			expired = append(expired, p)
			delete(d.pending, id)
		}
	}
	d.mu.Unlock()

	ids := make([]int64, 0, len(expired))
	for _, p := range expired {
		p.result <- outcome{err: errExpired}
		ids = append(ids, p.msgID)
	}
	return ids
}

var errExpired = errors.New("request expired")

func (d *dispatchTable) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
