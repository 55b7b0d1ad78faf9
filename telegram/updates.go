// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	mtproto "github.com/roseloverx/mtproto"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/utils"
)

const (
	ptsHistoryLimit = 50
	ptsHistoryKeep  = 25
)

// UpdateEvent is one update together with the users and chats it refers
// to, keyed by raw id.
type UpdateEvent struct {
	Update Update
	Users  map[int64]User
	Chats  map[int64]Chat
}

// ChannelSequenceTracker remembers recently seen pts values per channel to
// drop repeated deliveries. It doesn't detect gaps.
type ChannelSequenceTracker struct {
	mu   sync.Mutex
	seen map[int64][]int32
}

func NewChannelSequenceTracker() *ChannelSequenceTracker {
	return &ChannelSequenceTracker{seen: make(map[int64][]int32)}
}

// Record reports whether pts is new for the channel and remembers it. Once
// more than 50 values are remembered the oldest are dropped, keeping 25.
func (t *ChannelSequenceTracker) Record(channelID int64, pts int32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	history := t.seen[channelID]
	for _, p := range history {
		if p == pts {
			return false
		}
	}
	history = append(history, pts)
	if len(history) > ptsHistoryLimit {
		history = append([]int32(nil), history[len(history)-ptsHistoryKeep:]...)
	}
	t.seen[channelID] = history
	return true
}

// Len is the number of pts values remembered for a channel.
func (t *ChannelSequenceTracker) Len(channelID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen[channelID])
}

// updatesWorker turns pushed envelopes into UpdateEvents until it pops the
// nil poison or ctx is done.
func (c *Client) updatesWorker(ctx context.Context, in *utils.Queue[tl.Object]) {
	defer c.wg.Done()
	log := c.Log.WithPrefix("updates")

	for {
		obj, ok := in.Pop(ctx)
		if !ok || obj == nil {
			log.Debug("updates worker stopped")
			return
		}
		if err := c.processEnvelope(ctx, obj); err != nil {
			log.WithError(err).Errorf("processing %T", obj)
		}
	}
}

func (c *Client) processEnvelope(ctx context.Context, obj tl.Object) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	env, ok := obj.(Updates)
	if !ok {
		c.Log.Debugf("ignoring pushed %T", obj)
		return nil
	}

	switch u := env.(type) {
	case *UpdatesObj:
		return c.processCombined(ctx, u.Updates, u.Users, u.Chats)
	case *UpdatesCombined:
		return c.processCombined(ctx, u.Updates, u.Users, u.Chats)
	case *UpdateShortMessage:
		return c.processShortMessage(ctx, u.Pts, u.PtsCount, u.Date)
	case *UpdateShortChatMessage:
		return c.processShortMessage(ctx, u.Pts, u.PtsCount, u.Date)
	case *UpdateShort:
		c.publish(u.Update, nil, nil)
	case *UpdatesTooLong:
		c.Log.Info("updates too long, the server dropped pending updates")
	case *UpdateShortSentMessage:
		// answer to one of our own sends, nothing to dispatch
	default:
		c.Log.Debugf("unhandled updates envelope %T", env)
	}
	return nil
}

func (c *Client) processCombined(ctx context.Context, updates []Update, users []User, chats []Chat) error {
	c.Peers.FetchPeers(joinEntities(users, chats)...)
	userMap, chatMap := entityMaps(users, chats)

	for _, upd := range updates {
		channelID, pts, ptsCount := channelPosition(upd)

		if tooLong, ok := upd.(*UpdateChannelTooLong); ok {
			c.Log.Warnf("channel %d too long, pts %d", tooLong.ChannelID, tooLong.Pts)
		}

		if channelID != 0 && pts != 0 && !c.channelPts.Record(channelID, pts) {
			continue
		}

		if m, ok := upd.(*UpdateNewChannelMessage); ok && channelID != 0 {
			if msgID, ok := messageID(m.Message); ok {
				// the pts is already recorded, so the update goes out without
				// the extra entities rather than not at all
				if err := c.enrichChannelMessage(ctx, channelID, msgID, pts, ptsCount, userMap, chatMap); err != nil {
					c.Log.WithError(err).Warnf("enriching message %d of channel %d", msgID, channelID)
				}
			}
		}

		c.publish(upd, userMap, chatMap)
	}
	return nil
}

// enrichChannelMessage fetches the difference covering exactly one channel
// message, for entities the envelope may lack.
func (c *Client) enrichChannelMessage(ctx context.Context, channelID int64, msgID, pts, ptsCount int32, users map[int64]User, chats map[int64]Chat) error {
	peer, err := c.ResolvePeer(ctx, PeerRef{Kind: PeerKindChannel, ID: channelID}.MarkedID())
	if errors.Is(err, ErrPeerNotFound) {
		c.Log.Debugf("channel %d unknown, not enriching message %d", channelID, msgID)
		return nil
	}
	if err != nil {
		return err
	}
	ch, ok := peer.(*InputPeerChannel)
	if !ok {
		return errors.Errorf("channel %d resolved to %T", channelID, peer)
	}

	diff, err := c.UpdatesGetChannelDifference(ctx, &UpdatesGetChannelDifferenceParams{
		Channel: &InputChannelObj{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash},
		Filter: &ChannelMessagesFilterObj{
			Ranges: []*MessageRange{{MinID: msgID, MaxID: msgID}},
		},
		Pts:   pts - ptsCount,
		Limit: pts,
	})
	if mtproto.MatchError(err, "CHANNEL_PRIVATE", "CHANNEL_INVALID") {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "fetching channel difference")
	}

	if d, ok := diff.(*UpdatesChannelDifferenceObj); ok {
		for _, u := range d.Users {
			if id, ok := userID(u); ok {
				users[id] = u
			}
		}
		for _, ch := range d.Chats {
			if id, ok := chatID(ch); ok {
				chats[id] = ch
			}
		}
	}
	return nil
}

// processShortMessage replaces a short message envelope, which lacks the
// entities, with the first event of the matching difference.
func (c *Client) processShortMessage(ctx context.Context, pts, ptsCount, date int32) error {
	diff, err := c.UpdatesGetDifference(ctx, &UpdatesGetDifferenceParams{
		Pts:  pts - ptsCount,
		Date: date,
		Qts:  -1,
	})
	if err != nil {
		return errors.Wrap(err, "fetching difference")
	}

	var (
		newMessages []Message
		others      []Update
		users       []User
		chats       []Chat
	)
	switch d := diff.(type) {
	case *UpdatesDifferenceObj:
		newMessages, others, users, chats = d.NewMessages, d.OtherUpdates, d.Users, d.Chats
	case *UpdatesDifferenceSlice:
		newMessages, others, users, chats = d.NewMessages, d.OtherUpdates, d.Users, d.Chats
	default:
		return nil
	}

	switch {
	case len(newMessages) > 0:
		userMap, chatMap := entityMaps(users, chats)
		c.publish(&UpdateNewMessage{Message: newMessages[0], Pts: pts, PtsCount: ptsCount}, userMap, chatMap)
	case len(others) > 0:
		c.publish(others[0], nil, nil)
	}
	return nil
}

func (c *Client) publish(u Update, users map[int64]User, chats map[int64]Chat) {
	if users == nil {
		users = map[int64]User{}
	}
	if chats == nil {
		chats = map[int64]Chat{}
	}
	if !c.events.Push(&UpdateEvent{Update: u, Users: users, Chats: chats}) {
		c.Log.Debugf("dispatcher gone, dropping %T", u)
	}
}

// channelPosition extracts the channel and pts of an update, zeros for
// updates outside channels.
func channelPosition(u Update) (channelID int64, pts, ptsCount int32) {
	switch v := u.(type) {
	case *UpdateNewChannelMessage:
		return messageChannel(v.Message), v.Pts, v.PtsCount
	case *UpdateEditChannelMessage:
		return messageChannel(v.Message), v.Pts, v.PtsCount
	case *UpdateDeleteChannelMessages:
		return v.ChannelID, v.Pts, v.PtsCount
	case *UpdateChannelTooLong:
		return v.ChannelID, v.Pts, 0
	}
	return 0, 0, 0
}

func messageChannel(m Message) int64 {
	var peer Peer
	switch v := m.(type) {
	case *MessageObj:
		peer = v.PeerID
	case *MessageService:
		peer = v.PeerID
	case *MessageEmpty:
		peer = v.PeerID
	}
	if ch, ok := peer.(*PeerChannel); ok {
		return ch.ChannelID
	}
	return 0
}

// messageID returns the id of a non-empty message.
func messageID(m Message) (int32, bool) {
	switch v := m.(type) {
	case *MessageObj:
		return v.ID, true
	case *MessageService:
		return v.ID, true
	}
	return 0, false
}

func userID(u User) (int64, bool) {
	switch v := u.(type) {
	case *UserObj:
		return v.ID, true
	case *UserEmpty:
		return v.ID, true
	}
	return 0, false
}

func chatID(c Chat) (int64, bool) {
	switch v := c.(type) {
	case *ChatObj:
		return v.ID, true
	case *ChatForbidden:
		return v.ID, true
	case *ChatEmpty:
		return v.ID, true
	case *Channel:
		return v.ID, true
	case *ChannelForbidden:
		return v.ID, true
	}
	return 0, false
}

func entityMaps(users []User, chats []Chat) (map[int64]User, map[int64]Chat) {
	userMap := make(map[int64]User, len(users))
	for _, u := range users {
		if id, ok := userID(u); ok {
			userMap[id] = u
		}
	}
	chatMap := make(map[int64]Chat, len(chats))
	for _, ch := range chats {
		if id, ok := chatID(ch); ok {
			chatMap[id] = ch
		}
	}
	return userMap, chatMap
}
