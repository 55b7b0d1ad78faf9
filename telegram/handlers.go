// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

const DefaultGroup = 0

// Handler reacts to updates accepted by all its filters.
type Handler struct {
	Filters  []func(*UpdateEvent) bool
	Callback func(ctx context.Context, c *Client, u *UpdateEvent) error
}

func NewHandler(callback func(ctx context.Context, c *Client, u *UpdateEvent) error, filters ...func(*UpdateEvent) bool) *Handler {
	return &Handler{Filters: filters, Callback: callback}
}

func (h *Handler) check(u *UpdateEvent) bool {
	for _, f := range h.Filters {
		if !f(u) {
			return false
		}
	}
	return true
}

// OfType is a filter accepting updates of type T, e.g.
// OfType[*UpdateNewMessage].
func OfType[T Update](u *UpdateEvent) bool {
	_, ok := u.Update.(T)
	return ok
}

type handlerGroups struct {
	mu     sync.RWMutex
	groups map[int][]*Handler
}

func newHandlerGroups() *handlerGroups {
	return &handlerGroups{groups: make(map[int][]*Handler)}
}

// AddHandler registers h in group. Groups run in ascending order and at
// most one handler of each group handles an update.
func (c *Client) AddHandler(h *Handler, group int) (*Handler, int) {
	c.handlers.mu.Lock()
	defer c.handlers.mu.Unlock()

	c.handlers.groups[group] = append(c.handlers.groups[group], h)
	return h, group
}

func (c *Client) RemoveHandler(h *Handler, group int) error {
	c.handlers.mu.Lock()
	defer c.handlers.mu.Unlock()

	list, ok := c.handlers.groups[group]
	if !ok {
		return errors.Errorf("group %d does not exist, handler was not removed", group)
	}
	i := slices.Index(list, h)
	if i < 0 {
		return errors.Errorf("handler is not in group %d", group)
	}
	list = slices.Delete(slices.Clone(list), i, i+1)
	if len(list) == 0 {
		delete(c.handlers.groups, group)
	} else {
		c.handlers.groups[group] = list
	}
	return nil
}

// snapshot returns the handlers ordered by group.
func (g *handlerGroups) snapshot() [][]*Handler {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]int, 0, len(g.groups))
	for k := range g.groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([][]*Handler, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.groups[k])
	}
	return out
}

// dispatcher feeds UpdateEvents to the handlers until it pops nil.
func (c *Client) dispatcher(ctx context.Context) {
	defer c.dispatchWG.Done()
	log := c.Log.WithPrefix("dispatcher")

	for {
		ev, ok := c.events.Pop(ctx)
		if !ok || ev == nil {
			log.Debug("dispatcher stopped")
			return
		}
		c.dispatch(ctx, ev)
	}
}

func (c *Client) dispatch(ctx context.Context, ev *UpdateEvent) {
	for _, group := range c.handlers.snapshot() {
	inGroup:
		for _, h := range group {
			if !h.check(ev) {
				continue
			}

			err := c.runHandler(ctx, h, ev)
			switch {
			case errors.Is(err, ErrStopPropagation):
				return
			case errors.Is(err, ErrContinuePropagation):
				continue
			case err != nil:
				c.Log.WithError(err).Errorf("handler failed on %T", ev.Update)
			}
			break inGroup
		}
	}
}

func (c *Client) runHandler(ctx context.Context, h *Handler, ev *UpdateEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panic: %v", r)
		}
	}()
	return h.Callback(ctx, c, ev)
}
