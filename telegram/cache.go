// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type PeerKind uint8

const (
	PeerKindUser PeerKind = iota + 1
	PeerKindChat
	PeerKindChannel
)

func (k PeerKind) String() string {
	switch k {
	case PeerKindUser:
		return "user"
	case PeerKindChat:
		return "chat"
	case PeerKindChannel:
		return "channel"
	}
	return "unknown"
}

// PeerRef is the minimum needed to address a peer. ID is the raw id as the
// server knows it; MarkedID is the directory key.
type PeerRef struct {
	Kind       PeerKind
	ID         int64
	AccessHash int64
}

// MarkedID maps the ref into the directory id space: users keep their id,
// basic chats are negated and channels get "-100" prepended.
func (r PeerRef) MarkedID() int64 {
	switch r.Kind {
	case PeerKindChat:
		return -r.ID
	case PeerKindChannel:
		id, _ := strconv.ParseInt("-100"+strconv.FormatInt(r.ID, 10), 10, 64)
		return id
	}
	return r.ID
}

// InputPeer is the ref in the shape methods take.
func (r PeerRef) InputPeer() InputPeer {
	switch r.Kind {
	case PeerKindUser:
		return &InputPeerUser{UserID: r.ID, AccessHash: r.AccessHash}
	case PeerKindChat:
		return &InputPeerChat{ChatID: r.ID}
	case PeerKindChannel:
		return &InputPeerChannel{ChannelID: r.ID, AccessHash: r.AccessHash}
	}
	return &InputPeerEmpty{}
}

// RefFromMarkedID rebuilds a ref from a directory key, as stored in
// sessions.
func RefFromMarkedID(id, accessHash int64) PeerRef {
	if id >= 0 {
		return PeerRef{Kind: PeerKindUser, ID: id, AccessHash: accessHash}
	}
	if raw, ok := channelIDFromMarked(id); ok {
		return PeerRef{Kind: PeerKindChannel, ID: raw, AccessHash: accessHash}
	}
	return PeerRef{Kind: PeerKindChat, ID: -id}
}

func channelIDFromMarked(id int64) (int64, bool) {
	s := strconv.FormatInt(id, 10)
	if !strings.HasPrefix(s, "-100") || len(s) == 4 {
		return 0, false
	}
	raw, err := strconv.ParseInt(s[4:], 10, 64)
	if err != nil {
		return 0, false
	}
	return raw, true
}

// PeerDirectory maps peer ids, usernames and phone numbers to refs. It only
// grows: entries are overwritten by fresher ones, never removed.
type PeerDirectory struct {
	mu         sync.RWMutex
	byID       map[int64]*PeerRef
	byUsername map[string]*PeerRef
	byPhone    map[string]*PeerRef
}

func NewPeerDirectory() *PeerDirectory {
	return &PeerDirectory{
		byID:       make(map[int64]*PeerRef),
		byUsername: make(map[string]*PeerRef),
		byPhone:    make(map[string]*PeerRef),
	}
}

// FetchPeers upserts the given users and chats. Entities that need an
// access hash but carry none are skipped. It reports whether any entity
// was a min constructor.
func (d *PeerDirectory) FetchPeers(entities ...tl.Object) (hasMin bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range entities {
		switch v := e.(type) {
		case *UserObj:
			hasMin = hasMin || v.Min
			if v.AccessHash == 0 {
				continue
			}
			ref := d.put(PeerRef{Kind: PeerKindUser, ID: v.ID, AccessHash: v.AccessHash}, v.Min)
			d.index(ref, v.Username, v.Usernames)
			if v.Phone != "" {
				d.byPhone[v.Phone] = ref
			}

		case *ChatObj:
			d.put(PeerRef{Kind: PeerKindChat, ID: v.ID}, false)

		case *ChatForbidden:
			d.put(PeerRef{Kind: PeerKindChat, ID: v.ID}, false)

		case *Channel:
			hasMin = hasMin || v.Min
			if v.AccessHash == 0 {
				continue
			}
			ref := d.put(PeerRef{Kind: PeerKindChannel, ID: v.ID, AccessHash: v.AccessHash}, v.Min)
			d.index(ref, v.Username, v.Usernames)

		case *ChannelForbidden:
			if v.AccessHash == 0 {
				continue
			}
			d.put(PeerRef{Kind: PeerKindChannel, ID: v.ID, AccessHash: v.AccessHash}, false)
		}
	}
	return hasMin
}

// put stores ref under its marked id. A min entity's hash is only valid in
// the context it came with, so it doesn't replace a known one.
func (d *PeerDirectory) put(ref PeerRef, min bool) *PeerRef {
	key := ref.MarkedID()
	if old, ok := d.byID[key]; ok {
		if min {
			return old
		}
		*old = ref
		return old
	}
	p := &ref
	d.byID[key] = p
	return p
}

func (d *PeerDirectory) index(ref *PeerRef, username string, usernames []*Username) {
	if username != "" {
		d.byUsername[strings.ToLower(username)] = ref
	}
	for _, u := range usernames {
		if u != nil && u.Active && u.Username != "" {
			d.byUsername[strings.ToLower(u.Username)] = ref
		}
	}
}

// Lookup returns the ref stored under a marked id.
func (d *PeerDirectory) Lookup(id int64) (PeerRef, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if ref, ok := d.byID[id]; ok {
		return *ref, true
	}
	return PeerRef{}, false
}

// LookupUsername expects a lowercased name without the leading @.
func (d *PeerDirectory) LookupUsername(username string) (PeerRef, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if ref, ok := d.byUsername[username]; ok {
		return *ref, true
	}
	return PeerRef{}, false
}

func (d *PeerDirectory) LookupPhone(phone string) (PeerRef, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if ref, ok := d.byPhone[phone]; ok {
		return *ref, true
	}
	return PeerRef{}, false
}

func (d *PeerDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

// Export flattens the directory into the maps sessions persist.
func (d *PeerDirectory) Export() (byID map[int64]int64, byUsername, byPhone map[string]int64) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	byID = make(map[int64]int64, len(d.byID))
	for id, ref := range d.byID {
		byID[id] = ref.AccessHash
	}
	byUsername = make(map[string]int64, len(d.byUsername))
	for name, ref := range d.byUsername {
		byUsername[name] = ref.MarkedID()
	}
	byPhone = make(map[string]int64, len(d.byPhone))
	for phone, ref := range d.byPhone {
		byPhone[phone] = ref.MarkedID()
	}
	return byID, byUsername, byPhone
}

// Import loads maps produced by Export. Secondary keys pointing at unknown
// ids are dropped.
func (d *PeerDirectory) Import(byID map[int64]int64, byUsername, byPhone map[string]int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, hash := range byID {
		ref := RefFromMarkedID(id, hash)
		// channels are never stored without a hash, so a hashless -100 key
		// belongs to a basic group like 1005
		if ref.Kind == PeerKindChannel && hash == 0 {
			ref = PeerRef{Kind: PeerKindChat, ID: -id}
		}
		d.byID[id] = &ref
	}
	for name, id := range byUsername {
		if ref, ok := d.byID[id]; ok {
			d.byUsername[name] = ref
		}
	}
	for phone, id := range byPhone {
		if ref, ok := d.byID[id]; ok {
			d.byPhone[phone] = ref
		}
	}
}

// entityHolder is implemented by answers and envelopes that carry users
// and chats.
type entityHolder interface {
	entities() []tl.Object
}

func (u *UpdatesObj) entities() []tl.Object { return joinEntities(u.Users, u.Chats) }

func (u *UpdatesCombined) entities() []tl.Object { return joinEntities(u.Users, u.Chats) }

func (u *UpdatesDifferenceObj) entities() []tl.Object { return joinEntities(u.Users, u.Chats) }

func (u *UpdatesDifferenceSlice) entities() []tl.Object { return joinEntities(u.Users, u.Chats) }

func (u *UpdatesChannelDifferenceObj) entities() []tl.Object { return joinEntities(u.Users, u.Chats) }

func (r *ContactsResolvedPeer) entities() []tl.Object { return joinEntities(r.Users, r.Chats) }

func (m *MessagesChatsObj) entities() []tl.Object { return joinEntities[User](nil, m.Chats) }

func (m *MessagesChatsSlice) entities() []tl.Object { return joinEntities[User](nil, m.Chats) }

func (a *AuthAuthorizationObj) entities() []tl.Object { return []tl.Object{a.User} }

func joinEntities[U, C tl.Object](users []U, chats []C) []tl.Object {
	out := make([]tl.Object, 0, len(users)+len(chats))
	for _, u := range users {
		out = append(out, u)
	}
	for _, c := range chats {
		out = append(out, c)
	}
	return out
}

// collectEntities extracts the users and chats of an answer, if any.
func collectEntities(res any) []tl.Object {
	switch v := res.(type) {
	case entityHolder:
		return v.entities()
	case []User:
		return joinEntities[User, Chat](v, nil)
	case []tl.Object:
		return v
	}
	return nil
}

// ResolvePeer turns a marked id, a username, a phone number or "me" into
// an InputPeer, asking the server when the directory can't answer.
func (c *Client) ResolvePeer(ctx context.Context, peer any) (InputPeer, error) {
	switch v := peer.(type) {
	case int64:
		return c.resolveID(ctx, v)
	case int:
		return c.resolveID(ctx, int64(v))
	case int32:
		return c.resolveID(ctx, int64(v))
	case string:
		return c.resolveString(ctx, v)
	case InputPeer:
		return v, nil
	}
	return nil, errors.Errorf("can't resolve a peer from %T", peer)
}

var peerStripper = strings.NewReplacer("@", "", "+", "", " ", "", "\t", "", "\n", "")

func (c *Client) resolveString(ctx context.Context, s string) (InputPeer, error) {
	switch s {
	case "self", "me":
		return &InputPeerSelf{}, nil
	}

	s = strings.ToLower(peerStripper.Replace(s))
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ref, ok := c.Peers.LookupPhone(s); ok {
			return ref.InputPeer(), nil
		}
		return nil, errors.Wrapf(ErrPeerNotFound, "phone %s", s)
	}

	if ref, ok := c.Peers.LookupUsername(s); ok {
		return ref.InputPeer(), nil
	}
	if _, err := c.ContactsResolveUsername(ctx, s); err != nil {
		return nil, err
	}
	if ref, ok := c.Peers.LookupUsername(s); ok {
		return ref.InputPeer(), nil
	}
	return nil, errors.Wrapf(ErrPeerNotFound, "username %s", s)
}

func (c *Client) resolveID(ctx context.Context, id int64) (InputPeer, error) {
	if ref, ok := c.Peers.Lookup(id); ok {
		return ref.InputPeer(), nil
	}

	var err error
	switch ref := RefFromMarkedID(id, 0); ref.Kind {
	case PeerKindUser:
		_, err = c.UsersGetUsers(ctx, []InputUser{&InputUserObj{UserID: ref.ID}})
	case PeerKindChannel:
		_, err = c.ChannelsGetChannels(ctx, []InputChannel{&InputChannelObj{ChannelID: ref.ID}})
	default:
		_, err = c.MessagesGetChats(ctx, []int64{ref.ID})
	}
	if err != nil {
		c.Log.WithError(err).Debugf("looking up peer %d", id)
	}

	if ref, ok := c.Peers.Lookup(id); ok {
		return ref.InputPeer(), nil
	}
	return nil, errors.Wrapf(ErrPeerNotFound, "id %d", id)
}
