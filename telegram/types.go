// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

// The subset of the API schema the client core speaks. Constructors follow
// layer ApiVersion; anything the core never reads is modelled as tl.Object.

type Peer interface {
	tl.Object
	ImplementsPeer()
}

type PeerUser struct {
	UserID int64
}

func (*PeerUser) CRC() uint32 { return 0x59511722 }

func (*PeerUser) ImplementsPeer() {}

type PeerChat struct {
	ChatID int64
}

func (*PeerChat) CRC() uint32 { return 0x36c6019a }

func (*PeerChat) ImplementsPeer() {}

type PeerChannel struct {
	ChannelID int64
}

func (*PeerChannel) CRC() uint32 { return 0xa2a5371e }

func (*PeerChannel) ImplementsPeer() {}

type InputPeer interface {
	tl.Object
	ImplementsInputPeer()
}

type InputPeerEmpty struct{}

func (*InputPeerEmpty) CRC() uint32 { return 0x7f3b18ea }

func (*InputPeerEmpty) ImplementsInputPeer() {}

type InputPeerSelf struct{}

func (*InputPeerSelf) CRC() uint32 { return 0x7da07ec9 }

func (*InputPeerSelf) ImplementsInputPeer() {}

type InputPeerChat struct {
	ChatID int64
}

func (*InputPeerChat) CRC() uint32 { return 0x35a95cb9 }

func (*InputPeerChat) ImplementsInputPeer() {}

type InputPeerUser struct {
	UserID     int64
	AccessHash int64
}

func (*InputPeerUser) CRC() uint32 { return 0xdde8a54c }

func (*InputPeerUser) ImplementsInputPeer() {}

type InputPeerChannel struct {
	ChannelID  int64
	AccessHash int64
}

func (*InputPeerChannel) CRC() uint32 { return 0x27bcbbfc }

func (*InputPeerChannel) ImplementsInputPeer() {}

type InputUser interface {
	tl.Object
	ImplementsInputUser()
}

type InputUserSelf struct{}

func (*InputUserSelf) CRC() uint32 { return 0xf7c1b13f }

func (*InputUserSelf) ImplementsInputUser() {}

type InputUserObj struct {
	UserID     int64
	AccessHash int64
}

func (*InputUserObj) CRC() uint32 { return 0xf21158c6 }

func (*InputUserObj) ImplementsInputUser() {}

type InputChannel interface {
	tl.Object
	ImplementsInputChannel()
}

type InputChannelEmpty struct{}

func (*InputChannelEmpty) CRC() uint32 { return 0xee8c1e86 }

func (*InputChannelEmpty) ImplementsInputChannel() {}

type InputChannelObj struct {
	ChannelID  int64
	AccessHash int64
}

func (*InputChannelObj) CRC() uint32 { return 0xf35aec28 }

func (*InputChannelObj) ImplementsInputChannel() {}

type User interface {
	tl.Object
	ImplementsUser()
}

type UserEmpty struct {
	ID int64
}

func (*UserEmpty) CRC() uint32 { return 0xd3bc4b7a }

func (*UserEmpty) ImplementsUser() {}

// UserObj shares flag 14 between Bot and BotInfoVersion, and flag 18
// between Restricted and RestrictionReason.
type UserObj struct {
	Self                 bool `tl:"flag:10,encoded_in_bitflags"`
	Contact              bool `tl:"flag:11,encoded_in_bitflags"`
	MutualContact        bool `tl:"flag:12,encoded_in_bitflags"`
	Deleted              bool `tl:"flag:13,encoded_in_bitflags"`
	Bot                  bool `tl:"flag:14,encoded_in_bitflags"`
	BotChatHistory       bool `tl:"flag:15,encoded_in_bitflags"`
	BotNochats           bool `tl:"flag:16,encoded_in_bitflags"`
	Verified             bool `tl:"flag:17,encoded_in_bitflags"`
	Restricted           bool `tl:"flag:18,encoded_in_bitflags"`
	Min                  bool `tl:"flag:20,encoded_in_bitflags"`
	BotInlineGeo         bool `tl:"flag:21,encoded_in_bitflags"`
	Support              bool `tl:"flag:23,encoded_in_bitflags"`
	Scam                 bool `tl:"flag:24,encoded_in_bitflags"`
	ApplyMinPhoto        bool `tl:"flag:25,encoded_in_bitflags"`
	Fake                 bool `tl:"flag:26,encoded_in_bitflags"`
	BotAttachMenu        bool `tl:"flag:27,encoded_in_bitflags"`
	Premium              bool `tl:"flag:28,encoded_in_bitflags"`
	AttachMenuEnabled    bool `tl:"flag:29,encoded_in_bitflags"`
	BotCanEdit           bool `tl:"flag2:1,encoded_in_bitflags"`
	ID                   int64
	AccessHash           int64                `tl:"flag:0"`
	FirstName            string               `tl:"flag:1"`
	LastName             string               `tl:"flag:2"`
	Username             string               `tl:"flag:3"`
	Phone                string               `tl:"flag:4"`
	Photo                tl.Object            `tl:"flag:5"`
	Status               tl.Object            `tl:"flag:6"`
	BotInfoVersion       int32                `tl:"flag:14"`
	RestrictionReason    []*RestrictionReason `tl:"flag:18"`
	BotInlinePlaceholder string               `tl:"flag:19"`
	LangCode             string               `tl:"flag:22"`
	EmojiStatus          tl.Object            `tl:"flag:30"`
	Usernames            []*Username          `tl:"flag2:0"`
}

func (*UserObj) CRC() uint32 { return 0x83314fca }

func (*UserObj) FlagIndex() int { return 19 }

func (*UserObj) ImplementsUser() {}

type RestrictionReason struct {
	Platform string
	Reason   string
	Text     string
}

func (*RestrictionReason) CRC() uint32 { return 0xd072acb4 }

type Username struct {
	Editable bool `tl:"flag:0,encoded_in_bitflags"`
	Active   bool `tl:"flag:1,encoded_in_bitflags"`
	Username string
}

func (*Username) CRC() uint32 { return 0xb4073647 }

func (*Username) FlagIndex() int { return 2 }

type UserProfilePhotoEmpty struct{}

func (*UserProfilePhotoEmpty) CRC() uint32 { return 0x4f11bae1 }

type UserProfilePhotoObj struct {
	HasVideo      bool `tl:"flag:0,encoded_in_bitflags"`
	Personal      bool `tl:"flag:2,encoded_in_bitflags"`
	PhotoID       int64
	StrippedThumb []byte `tl:"flag:1"`
	DcID          int32
}

func (*UserProfilePhotoObj) CRC() uint32 { return 0x82d1f706 }

func (*UserProfilePhotoObj) FlagIndex() int { return 2 }

type UserStatusEmpty struct{}

func (*UserStatusEmpty) CRC() uint32 { return 0x09d05049 }

type UserStatusOnline struct {
	Expires int32
}

func (*UserStatusOnline) CRC() uint32 { return 0xedb93949 }

type UserStatusOffline struct {
	WasOnline int32
}

func (*UserStatusOffline) CRC() uint32 { return 0x008c703f }

type UserStatusRecently struct{}

func (*UserStatusRecently) CRC() uint32 { return 0xe26f42f1 }

type UserStatusLastWeek struct{}

func (*UserStatusLastWeek) CRC() uint32 { return 0x07bf09fc }

type UserStatusLastMonth struct{}

func (*UserStatusLastMonth) CRC() uint32 { return 0x77ebc742 }

type EmojiStatusEmpty struct{}

func (*EmojiStatusEmpty) CRC() uint32 { return 0x2de11aae }

type EmojiStatusObj struct {
	DocumentID int64
}

func (*EmojiStatusObj) CRC() uint32 { return 0x929b619d }

type Chat interface {
	tl.Object
	ImplementsChat()
}

type ChatEmpty struct {
	ID int64
}

func (*ChatEmpty) CRC() uint32 { return 0x29562865 }

func (*ChatEmpty) ImplementsChat() {}

type ChatObj struct {
	Creator             bool `tl:"flag:0,encoded_in_bitflags"`
	Left                bool `tl:"flag:2,encoded_in_bitflags"`
	Deactivated         bool `tl:"flag:5,encoded_in_bitflags"`
	CallActive          bool `tl:"flag:23,encoded_in_bitflags"`
	CallNotEmpty        bool `tl:"flag:24,encoded_in_bitflags"`
	Noforwards          bool `tl:"flag:25,encoded_in_bitflags"`
	ID                  int64
	Title               string
	Photo               tl.Object
	ParticipantsCount   int32
	Date                int32
	Version             int32
	MigratedTo          InputChannel       `tl:"flag:6"`
	AdminRights         *ChatAdminRights   `tl:"flag:14"`
	DefaultBannedRights *ChatBannedRights  `tl:"flag:18"`
}

func (*ChatObj) CRC() uint32 { return 0x41cbf256 }

func (*ChatObj) FlagIndex() int { return 6 }

func (*ChatObj) ImplementsChat() {}

type ChatForbidden struct {
	ID    int64
	Title string
}

func (*ChatForbidden) CRC() uint32 { return 0x6592a1a7 }

func (*ChatForbidden) ImplementsChat() {}

// Channel shares flag 9 between Restricted and RestrictionReason.
type Channel struct {
	Creator             bool `tl:"flag:0,encoded_in_bitflags"`
	Left                bool `tl:"flag:2,encoded_in_bitflags"`
	Broadcast           bool `tl:"flag:5,encoded_in_bitflags"`
	Verified            bool `tl:"flag:7,encoded_in_bitflags"`
	Megagroup           bool `tl:"flag:8,encoded_in_bitflags"`
	Restricted          bool `tl:"flag:9,encoded_in_bitflags"`
	Signatures          bool `tl:"flag:11,encoded_in_bitflags"`
	Min                 bool `tl:"flag:12,encoded_in_bitflags"`
	Scam                bool `tl:"flag:19,encoded_in_bitflags"`
	HasLink             bool `tl:"flag:20,encoded_in_bitflags"`
	HasGeo              bool `tl:"flag:21,encoded_in_bitflags"`
	SlowmodeEnabled     bool `tl:"flag:22,encoded_in_bitflags"`
	CallActive          bool `tl:"flag:23,encoded_in_bitflags"`
	CallNotEmpty        bool `tl:"flag:24,encoded_in_bitflags"`
	Fake                bool `tl:"flag:25,encoded_in_bitflags"`
	Gigagroup           bool `tl:"flag:26,encoded_in_bitflags"`
	Noforwards          bool `tl:"flag:27,encoded_in_bitflags"`
	JoinToSend          bool `tl:"flag:28,encoded_in_bitflags"`
	JoinRequest         bool `tl:"flag:29,encoded_in_bitflags"`
	Forum               bool `tl:"flag:30,encoded_in_bitflags"`
	ID                  int64
	AccessHash          int64 `tl:"flag:13"`
	Title               string
	Username            string `tl:"flag:6"`
	Photo               tl.Object
	Date                int32
	RestrictionReason   []*RestrictionReason `tl:"flag:9"`
	AdminRights         *ChatAdminRights     `tl:"flag:14"`
	BannedRights        *ChatBannedRights    `tl:"flag:15"`
	DefaultBannedRights *ChatBannedRights    `tl:"flag:18"`
	ParticipantsCount   int32                `tl:"flag:17"`
	Usernames           []*Username          `tl:"flag2:0"`
}

func (*Channel) CRC() uint32 { return 0x83259464 }

func (*Channel) FlagIndex() int { return 20 }

func (*Channel) ImplementsChat() {}

type ChannelForbidden struct {
	Broadcast  bool `tl:"flag:5,encoded_in_bitflags"`
	Megagroup  bool `tl:"flag:8,encoded_in_bitflags"`
	ID         int64
	AccessHash int64
	Title      string
	UntilDate  int32 `tl:"flag:16"`
}

func (*ChannelForbidden) CRC() uint32 { return 0x17d493d5 }

func (*ChannelForbidden) FlagIndex() int { return 2 }

func (*ChannelForbidden) ImplementsChat() {}

type ChatPhotoEmpty struct{}

func (*ChatPhotoEmpty) CRC() uint32 { return 0x37c1011c }

type ChatPhotoObj struct {
	HasVideo      bool `tl:"flag:0,encoded_in_bitflags"`
	PhotoID       int64
	StrippedThumb []byte `tl:"flag:1"`
	DcID          int32
}

func (*ChatPhotoObj) CRC() uint32 { return 0x1c6e1c11 }

func (*ChatPhotoObj) FlagIndex() int { return 1 }

// ChatAdminRights keeps the raw rights bitset.
type ChatAdminRights struct {
	Flags uint32
}

func (*ChatAdminRights) CRC() uint32 { return 0x5fb224d5 }

type ChatBannedRights struct {
	Flags     uint32
	UntilDate int32
}

func (*ChatBannedRights) CRC() uint32 { return 0x9f120418 }

type Message interface {
	tl.Object
	ImplementsMessage()
}

type MessageEmpty struct {
	ID     int32
	PeerID Peer `tl:"flag:0"`
}

func (*MessageEmpty) CRC() uint32 { return 0x90a6ca84 }

func (*MessageEmpty) FlagIndex() int { return 0 }

func (*MessageEmpty) ImplementsMessage() {}

// MessageObj shares flag 10 between Views and Forwards.
type MessageObj struct {
	Out               bool `tl:"flag:1,encoded_in_bitflags"`
	Mentioned         bool `tl:"flag:4,encoded_in_bitflags"`
	MediaUnread       bool `tl:"flag:5,encoded_in_bitflags"`
	Silent            bool `tl:"flag:13,encoded_in_bitflags"`
	Post              bool `tl:"flag:14,encoded_in_bitflags"`
	FromScheduled     bool `tl:"flag:18,encoded_in_bitflags"`
	Legacy            bool `tl:"flag:19,encoded_in_bitflags"`
	EditHide          bool `tl:"flag:21,encoded_in_bitflags"`
	Pinned            bool `tl:"flag:24,encoded_in_bitflags"`
	Noforwards        bool `tl:"flag:26,encoded_in_bitflags"`
	ID                int32
	FromID            Peer      `tl:"flag:8"`
	PeerID            Peer
	FwdFrom           tl.Object `tl:"flag:2"`
	ViaBotID          int64     `tl:"flag:11"`
	ReplyTo           tl.Object `tl:"flag:3"`
	Date              int32
	Message           string
	Media             tl.Object            `tl:"flag:9"`
	ReplyMarkup       tl.Object            `tl:"flag:6"`
	Entities          []tl.Object          `tl:"flag:7"`
	Views             int32                `tl:"flag:10"`
	Forwards          int32                `tl:"flag:10"`
	Replies           tl.Object            `tl:"flag:23"`
	EditDate          int32                `tl:"flag:15"`
	PostAuthor        string               `tl:"flag:16"`
	GroupedID         int64                `tl:"flag:17"`
	Reactions         tl.Object            `tl:"flag:20"`
	RestrictionReason []*RestrictionReason `tl:"flag:22"`
	TtlPeriod         int32                `tl:"flag:25"`
}

func (*MessageObj) CRC() uint32 { return 0x38116ee0 }

func (*MessageObj) FlagIndex() int { return 10 }

func (*MessageObj) ImplementsMessage() {}

type MessageService struct {
	Out         bool `tl:"flag:1,encoded_in_bitflags"`
	Mentioned   bool `tl:"flag:4,encoded_in_bitflags"`
	MediaUnread bool `tl:"flag:5,encoded_in_bitflags"`
	Silent      bool `tl:"flag:13,encoded_in_bitflags"`
	Post        bool `tl:"flag:14,encoded_in_bitflags"`
	Legacy      bool `tl:"flag:19,encoded_in_bitflags"`
	ID          int32
	FromID      Peer      `tl:"flag:8"`
	PeerID      Peer
	ReplyTo     tl.Object `tl:"flag:3"`
	Date        int32
	Action      tl.Object
	TtlPeriod   int32 `tl:"flag:25"`
}

func (*MessageService) CRC() uint32 { return 0x2b085862 }

func (*MessageService) FlagIndex() int { return 6 }

func (*MessageService) ImplementsMessage() {}

// Update is one event inside an updates envelope.
type Update interface {
	tl.Object
	ImplementsUpdate()
}

type UpdateNewMessage struct {
	Message  Message
	Pts      int32
	PtsCount int32
}

func (*UpdateNewMessage) CRC() uint32 { return 0x1f2b0afd }

func (*UpdateNewMessage) ImplementsUpdate() {}

type UpdateEditMessage struct {
	Message  Message
	Pts      int32
	PtsCount int32
}

func (*UpdateEditMessage) CRC() uint32 { return 0xe40370a3 }

func (*UpdateEditMessage) ImplementsUpdate() {}

type UpdateDeleteMessages struct {
	Messages []int32
	Pts      int32
	PtsCount int32
}

func (*UpdateDeleteMessages) CRC() uint32 { return 0xa20db0e5 }

func (*UpdateDeleteMessages) ImplementsUpdate() {}

type UpdateNewChannelMessage struct {
	Message  Message
	Pts      int32
	PtsCount int32
}

func (*UpdateNewChannelMessage) CRC() uint32 { return 0x62ba04d9 }

func (*UpdateNewChannelMessage) ImplementsUpdate() {}

type UpdateEditChannelMessage struct {
	Message  Message
	Pts      int32
	PtsCount int32
}

func (*UpdateEditChannelMessage) CRC() uint32 { return 0x1b3f4df7 }

func (*UpdateEditChannelMessage) ImplementsUpdate() {}

type UpdateDeleteChannelMessages struct {
	ChannelID int64
	Messages  []int32
	Pts       int32
	PtsCount  int32
}

func (*UpdateDeleteChannelMessages) CRC() uint32 { return 0xc32d5b12 }

func (*UpdateDeleteChannelMessages) ImplementsUpdate() {}

type UpdateChannelTooLong struct {
	ChannelID int64
	Pts       int32 `tl:"flag:0"`
}

func (*UpdateChannelTooLong) CRC() uint32 { return 0x108d941f }

func (*UpdateChannelTooLong) FlagIndex() int { return 0 }

func (*UpdateChannelTooLong) ImplementsUpdate() {}

// Updates is an envelope pushed by the server or returned by a method.
type Updates interface {
	tl.Object
	ImplementsUpdates()
}

type UpdatesTooLong struct{}

func (*UpdatesTooLong) CRC() uint32 { return 0xe317af7e }

func (*UpdatesTooLong) ImplementsUpdates() {}

type UpdateShortMessage struct {
	Out         bool `tl:"flag:1,encoded_in_bitflags"`
	Mentioned   bool `tl:"flag:4,encoded_in_bitflags"`
	MediaUnread bool `tl:"flag:5,encoded_in_bitflags"`
	Silent      bool `tl:"flag:13,encoded_in_bitflags"`
	ID          int32
	UserID      int64
	Message     string
	Pts         int32
	PtsCount    int32
	Date        int32
	FwdFrom     tl.Object   `tl:"flag:2"`
	ViaBotID    int64       `tl:"flag:11"`
	ReplyTo     tl.Object   `tl:"flag:3"`
	Entities    []tl.Object `tl:"flag:7"`
	TtlPeriod   int32       `tl:"flag:25"`
}

func (*UpdateShortMessage) CRC() uint32 { return 0x313bc7f8 }

func (*UpdateShortMessage) FlagIndex() int { return 4 }

func (*UpdateShortMessage) ImplementsUpdates() {}

type UpdateShortChatMessage struct {
	Out         bool `tl:"flag:1,encoded_in_bitflags"`
	Mentioned   bool `tl:"flag:4,encoded_in_bitflags"`
	MediaUnread bool `tl:"flag:5,encoded_in_bitflags"`
	Silent      bool `tl:"flag:13,encoded_in_bitflags"`
	ID          int32
	FromID      int64
	ChatID      int64
	Message     string
	Pts         int32
	PtsCount    int32
	Date        int32
	FwdFrom     tl.Object   `tl:"flag:2"`
	ViaBotID    int64       `tl:"flag:11"`
	ReplyTo     tl.Object   `tl:"flag:3"`
	Entities    []tl.Object `tl:"flag:7"`
	TtlPeriod   int32       `tl:"flag:25"`
}

func (*UpdateShortChatMessage) CRC() uint32 { return 0x4d6deea5 }

func (*UpdateShortChatMessage) FlagIndex() int { return 4 }

func (*UpdateShortChatMessage) ImplementsUpdates() {}

type UpdateShort struct {
	Update Update
	Date   int32
}

func (*UpdateShort) CRC() uint32 { return 0x78d4dec1 }

func (*UpdateShort) ImplementsUpdates() {}

type UpdatesCombined struct {
	Updates  []Update
	Users    []User
	Chats    []Chat
	Date     int32
	SeqStart int32
	Seq      int32
}

func (*UpdatesCombined) CRC() uint32 { return 0x725b04c3 }

func (*UpdatesCombined) ImplementsUpdates() {}

type UpdatesObj struct {
	Updates []Update
	Users   []User
	Chats   []Chat
	Date    int32
	Seq     int32
}

func (*UpdatesObj) CRC() uint32 { return 0x74ae4240 }

func (*UpdatesObj) ImplementsUpdates() {}

type UpdateShortSentMessage struct {
	Out       bool `tl:"flag:1,encoded_in_bitflags"`
	ID        int32
	Pts       int32
	PtsCount  int32
	Date      int32
	Media     tl.Object   `tl:"flag:9"`
	Entities  []tl.Object `tl:"flag:7"`
	TtlPeriod int32       `tl:"flag:25"`
}

func (*UpdateShortSentMessage) CRC() uint32 { return 0x9015e101 }

func (*UpdateShortSentMessage) FlagIndex() int { return 1 }

func (*UpdateShortSentMessage) ImplementsUpdates() {}

type UpdatesState struct {
	Pts         int32
	Qts         int32
	Date        int32
	Seq         int32
	UnreadCount int32
}

func (*UpdatesState) CRC() uint32 { return 0xa56c2a3e }

type UpdatesDifference interface {
	tl.Object
	ImplementsUpdatesDifference()
}

type UpdatesDifferenceEmpty struct {
	Date int32
	Seq  int32
}

func (*UpdatesDifferenceEmpty) CRC() uint32 { return 0x5d75a138 }

func (*UpdatesDifferenceEmpty) ImplementsUpdatesDifference() {}

type UpdatesDifferenceObj struct {
	NewMessages          []Message
	NewEncryptedMessages []tl.Object
	OtherUpdates         []Update
	Chats                []Chat
	Users                []User
	State                *UpdatesState
}

func (*UpdatesDifferenceObj) CRC() uint32 { return 0x00f49ca0 }

func (*UpdatesDifferenceObj) ImplementsUpdatesDifference() {}

type UpdatesDifferenceSlice struct {
	NewMessages          []Message
	NewEncryptedMessages []tl.Object
	OtherUpdates         []Update
	Chats                []Chat
	Users                []User
	IntermediateState    *UpdatesState
}

func (*UpdatesDifferenceSlice) CRC() uint32 { return 0xa8fb1981 }

func (*UpdatesDifferenceSlice) ImplementsUpdatesDifference() {}

type UpdatesDifferenceTooLong struct {
	Pts int32
}

func (*UpdatesDifferenceTooLong) CRC() uint32 { return 0x4afe8f6d }

func (*UpdatesDifferenceTooLong) ImplementsUpdatesDifference() {}

type UpdatesChannelDifference interface {
	tl.Object
	ImplementsUpdatesChannelDifference()
}

type UpdatesChannelDifferenceEmpty struct {
	Final   bool `tl:"flag:0,encoded_in_bitflags"`
	Pts     int32
	Timeout int32 `tl:"flag:1"`
}

func (*UpdatesChannelDifferenceEmpty) CRC() uint32 { return 0x3e11affb }

func (*UpdatesChannelDifferenceEmpty) FlagIndex() int { return 1 }

func (*UpdatesChannelDifferenceEmpty) ImplementsUpdatesChannelDifference() {}

type UpdatesChannelDifferenceObj struct {
	Final        bool `tl:"flag:0,encoded_in_bitflags"`
	Pts          int32
	Timeout      int32 `tl:"flag:1"`
	NewMessages  []Message
	OtherUpdates []Update
	Chats        []Chat
	Users        []User
}

func (*UpdatesChannelDifferenceObj) CRC() uint32 { return 0x2064674e }

func (*UpdatesChannelDifferenceObj) FlagIndex() int { return 1 }

func (*UpdatesChannelDifferenceObj) ImplementsUpdatesChannelDifference() {}

type ChannelMessagesFilterEmpty struct{}

func (*ChannelMessagesFilterEmpty) CRC() uint32 { return 0x94d42ee7 }

type ChannelMessagesFilterObj struct {
	ExcludeNewMessages bool `tl:"flag:1,encoded_in_bitflags"`
	Ranges             []*MessageRange
}

func (*ChannelMessagesFilterObj) CRC() uint32 { return 0xcd77d957 }

func (*ChannelMessagesFilterObj) FlagIndex() int { return 1 }

type MessageRange struct {
	MinID int32
	MaxID int32
}

func (*MessageRange) CRC() uint32 { return 0x0ae30253 }

type MessagesChats interface {
	tl.Object
	ImplementsMessagesChats()
}

type MessagesChatsObj struct {
	Chats []Chat
}

func (*MessagesChatsObj) CRC() uint32 { return 0x64ff9fd5 }

func (*MessagesChatsObj) ImplementsMessagesChats() {}

type MessagesChatsSlice struct {
	Count int32
	Chats []Chat
}

func (*MessagesChatsSlice) CRC() uint32 { return 0x9cd81144 }

func (*MessagesChatsSlice) ImplementsMessagesChats() {}

type ContactsResolvedPeer struct {
	Peer  Peer
	Chats []Chat
	Users []User
}

func (*ContactsResolvedPeer) CRC() uint32 { return 0x7f077ad9 }

type DcOption struct {
	Ipv6         bool `tl:"flag:0,encoded_in_bitflags"`
	MediaOnly    bool `tl:"flag:1,encoded_in_bitflags"`
	TcpoOnly     bool `tl:"flag:2,encoded_in_bitflags"`
	Cdn          bool `tl:"flag:3,encoded_in_bitflags"`
	Static       bool `tl:"flag:4,encoded_in_bitflags"`
	ThisPortOnly bool `tl:"flag:5,encoded_in_bitflags"`
	ID           int32
	IpAddress    string
	Port         int32
	Secret       []byte `tl:"flag:10"`
}

func (*DcOption) CRC() uint32 { return 0x18b7a10d }

func (*DcOption) FlagIndex() int { return 6 }

// Config is the answer to help.getConfig. Flag 2 covers the three lang
// pack fields.
type Config struct {
	DefaultP2PContacts      bool `tl:"flag:3,encoded_in_bitflags"`
	PreloadFeaturedStickers bool `tl:"flag:4,encoded_in_bitflags"`
	RevokePmInbox           bool `tl:"flag:6,encoded_in_bitflags"`
	BlockedMode             bool `tl:"flag:8,encoded_in_bitflags"`
	ForceTryIpv6            bool `tl:"flag:14,encoded_in_bitflags"`
	Date                    int32
	Expires                 int32
	TestMode                bool
	ThisDc                  int32
	DcOptions               []*DcOption
	DcTxtDomainName         string
	ChatSizeMax             int32
	MegagroupSizeMax        int32
	ForwardedCountMax       int32
	OnlineUpdatePeriodMs    int32
	OfflineBlurTimeoutMs    int32
	OfflineIdleTimeoutMs    int32
	OnlineCloudTimeoutMs    int32
	NotifyCloudDelayMs      int32
	NotifyDefaultDelayMs    int32
	PushChatPeriodMs        int32
	PushChatLimit           int32
	EditTimeLimit           int32
	RevokeTimeLimit         int32
	RevokePmTimeLimit       int32
	RatingEDecay            int32
	StickersRecentLimit     int32
	ChannelsReadMediaPeriod int32
	TmpSessions             int32 `tl:"flag:0"`
	CallReceiveTimeoutMs    int32
	CallRingTimeoutMs       int32
	CallConnectTimeoutMs    int32
	CallPacketTimeoutMs     int32
	MeURLPrefix             string
	AutoupdateURLPrefix     string    `tl:"flag:7"`
	GifSearchUsername       string    `tl:"flag:9"`
	VenueSearchUsername     string    `tl:"flag:10"`
	ImgSearchUsername       string    `tl:"flag:11"`
	StaticMapsProvider      string    `tl:"flag:12"`
	CaptionLengthMax        int32
	MessageLengthMax        int32
	WebfileDcID             int32
	SuggestedLangCode       string    `tl:"flag:2"`
	LangPackVersion         int32     `tl:"flag:2"`
	BaseLangPackVersion     int32     `tl:"flag:2"`
	ReactionsDefault        tl.Object `tl:"flag:15"`
	AutologinToken          string    `tl:"flag:16"`
}

func (*Config) CRC() uint32 { return 0xcc1a241e }

func (*Config) FlagIndex() int { return 5 }

type ReactionEmpty struct{}

func (*ReactionEmpty) CRC() uint32 { return 0x79f5d419 }

type ReactionEmoji struct {
	Emoticon string
}

func (*ReactionEmoji) CRC() uint32 { return 0x1b2286b8 }

type ReactionCustomEmoji struct {
	DocumentID int64
}

func (*ReactionCustomEmoji) CRC() uint32 { return 0x8935fc73 }

func init() {
	tl.RegisterObjects(
		&PeerUser{}, &PeerChat{}, &PeerChannel{},
		&InputPeerEmpty{}, &InputPeerSelf{}, &InputPeerChat{}, &InputPeerUser{}, &InputPeerChannel{},
		&InputUserSelf{}, &InputUserObj{}, &InputChannelEmpty{}, &InputChannelObj{},
		&UserEmpty{}, &UserObj{}, &RestrictionReason{}, &Username{},
		&UserProfilePhotoEmpty{}, &UserProfilePhotoObj{},
		&UserStatusEmpty{}, &UserStatusOnline{}, &UserStatusOffline{}, &UserStatusRecently{},
		&UserStatusLastWeek{}, &UserStatusLastMonth{},
		&EmojiStatusEmpty{}, &EmojiStatusObj{},
		&ChatEmpty{}, &ChatObj{}, &ChatForbidden{}, &Channel{}, &ChannelForbidden{},
		&ChatPhotoEmpty{}, &ChatPhotoObj{}, &ChatAdminRights{}, &ChatBannedRights{},
		&MessageEmpty{}, &MessageObj{}, &MessageService{},
		&UpdateNewMessage{}, &UpdateEditMessage{}, &UpdateDeleteMessages{},
		&UpdateNewChannelMessage{}, &UpdateEditChannelMessage{}, &UpdateDeleteChannelMessages{},
		&UpdateChannelTooLong{},
		&UpdatesTooLong{}, &UpdateShortMessage{}, &UpdateShortChatMessage{}, &UpdateShort{},
		&UpdatesCombined{}, &UpdatesObj{}, &UpdateShortSentMessage{},
		&UpdatesState{}, &UpdatesDifferenceEmpty{}, &UpdatesDifferenceObj{}, &UpdatesDifferenceSlice{},
		&UpdatesDifferenceTooLong{},
		&UpdatesChannelDifferenceEmpty{}, &UpdatesChannelDifferenceObj{},
		&ChannelMessagesFilterEmpty{}, &ChannelMessagesFilterObj{}, &MessageRange{},
		&MessagesChatsObj{}, &MessagesChatsSlice{}, &ContactsResolvedPeer{},
		&DcOption{}, &Config{}, &ReactionEmpty{}, &ReactionEmoji{}, &ReactionCustomEmoji{},
	)
}
