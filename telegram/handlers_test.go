// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func recorder(calls *[]string, name string, ret error) *Handler {
	return NewHandler(func(context.Context, *Client, *UpdateEvent) error {
		*calls = append(*calls, name)
		return ret
	})
}

func newMessageEvent() *UpdateEvent {
	return &UpdateEvent{Update: &UpdateNewMessage{Message: &MessageObj{ID: 1, PeerID: &PeerUser{UserID: 2}}}}
}

func TestDispatchRunsGroupsInOrder(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.c

	var calls []string
	c.AddHandler(recorder(&calls, "late", nil), 10)
	c.AddHandler(recorder(&calls, "first", nil), -1)
	c.AddHandler(recorder(&calls, "default", nil), DefaultGroup)
	c.AddHandler(recorder(&calls, "default second", nil), DefaultGroup)

	c.dispatch(context.Background(), newMessageEvent())
	assert.Equal(t, []string{"first", "default", "late"}, calls)
}

func TestDispatchFilters(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.c

	var calls []string
	skipped := recorder(&calls, "edits", nil)
	skipped.Filters = append(skipped.Filters, OfType[*UpdateEditMessage])
	matched := recorder(&calls, "messages", nil)
	matched.Filters = append(matched.Filters, OfType[*UpdateNewMessage])
	c.AddHandler(skipped, 0)
	c.AddHandler(matched, 0)

	c.dispatch(context.Background(), newMessageEvent())
	assert.Equal(t, []string{"messages"}, calls)
}

func TestDispatchPropagation(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.c

	var calls []string
	c.AddHandler(recorder(&calls, "continue", ErrContinuePropagation), 0)
	c.AddHandler(recorder(&calls, "stop", ErrStopPropagation), 0)
	c.AddHandler(recorder(&calls, "never", nil), 1)

	c.dispatch(context.Background(), newMessageEvent())
	assert.Equal(t, []string{"continue", "stop"}, calls)
}

func TestDispatchSurvivesFailingHandlers(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.c

	var calls []string
	c.AddHandler(NewHandler(func(context.Context, *Client, *UpdateEvent) error {
		panic("boom")
	}), 0)
	c.AddHandler(recorder(&calls, "after panic", nil), 1)
	c.AddHandler(recorder(&calls, "failing", assert.AnError), 2)
	c.AddHandler(recorder(&calls, "after error", nil), 3)

	c.dispatch(context.Background(), newMessageEvent())
	assert.Equal(t, []string{"after panic", "failing", "after error"}, calls)
}

func TestRemoveHandler(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.c

	var calls []string
	handler, group := c.AddHandler(recorder(&calls, "removed", nil), 3)
	assert.Error(t, c.RemoveHandler(handler, 4))
	assert.Error(t, c.RemoveHandler(recorder(&calls, "other", nil), 3))
	assert.NoError(t, c.RemoveHandler(handler, group))

	c.dispatch(context.Background(), newMessageEvent())
	assert.Empty(t, calls)
}
