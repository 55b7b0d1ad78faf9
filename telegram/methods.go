// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"reflect"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type AuthSendCodeParams struct {
	PhoneNumber string
	ApiID       int32
	ApiHash     string
	Settings    *CodeSettings
}

func (*AuthSendCodeParams) CRC() uint32 { return 0xa677244f }

type AuthSignInParams struct {
	PhoneNumber       string
	PhoneCodeHash     string
	PhoneCode         string    `tl:"flag:0"`
	EmailVerification tl.Object `tl:"flag:1"`
}

func (*AuthSignInParams) CRC() uint32 { return 0x8d52a951 }

func (*AuthSignInParams) FlagIndex() int { return 0 }

// AuthImportBotAuthorizationParams carries a plain int Flags, which is
// reserved and always zero.
type AuthImportBotAuthorizationParams struct {
	Flags        int32
	ApiID        int32
	ApiHash      string
	BotAuthToken string
}

func (*AuthImportBotAuthorizationParams) CRC() uint32 { return 0x67a3ff2c }

type AuthCheckPasswordParams struct {
	Password tl.Object
}

func (*AuthCheckPasswordParams) CRC() uint32 { return 0xd18b4d16 }

type AccountGetPasswordParams struct{}

func (*AccountGetPasswordParams) CRC() uint32 { return 0x548a30f5 }

type AuthExportAuthorizationParams struct {
	DcID int32
}

func (*AuthExportAuthorizationParams) CRC() uint32 { return 0xe5bfffcd }

type AuthImportAuthorizationParams struct {
	ID    int64
	Bytes []byte
}

func (*AuthImportAuthorizationParams) CRC() uint32 { return 0xa57a7dad }

type AuthLogOutParams struct{}

func (*AuthLogOutParams) CRC() uint32 { return 0x3e72ba19 }

type UsersGetUsersParams struct {
	ID []InputUser
}

func (*UsersGetUsersParams) CRC() uint32 { return 0x0d91a548 }

type ChannelsGetChannelsParams struct {
	ID []InputChannel
}

func (*ChannelsGetChannelsParams) CRC() uint32 { return 0x0a7f6bbb }

type MessagesGetChatsParams struct {
	ID []int64
}

func (*MessagesGetChatsParams) CRC() uint32 { return 0x49e9528f }

type ContactsResolveUsernameParams struct {
	Username string
}

func (*ContactsResolveUsernameParams) CRC() uint32 { return 0xf93ccba3 }

type UpdatesGetStateParams struct{}

func (*UpdatesGetStateParams) CRC() uint32 { return 0xedd4882a }

type UpdatesGetDifferenceParams struct {
	Pts           int32
	PtsTotalLimit int32 `tl:"flag:0"`
	Date          int32
	Qts           int32
}

func (*UpdatesGetDifferenceParams) CRC() uint32 { return 0x25939651 }

func (*UpdatesGetDifferenceParams) FlagIndex() int { return 0 }

type UpdatesGetChannelDifferenceParams struct {
	Force   bool `tl:"flag:0,encoded_in_bitflags"`
	Channel InputChannel
	Filter  tl.Object
	Pts     int32
	Limit   int32
}

func (*UpdatesGetChannelDifferenceParams) CRC() uint32 { return 0x03173d78 }

func (*UpdatesGetChannelDifferenceParams) FlagIndex() int { return 1 }

type UploadSaveFilePartParams struct {
	FileID   int64
	FilePart int32
	Bytes    []byte
}

func (*UploadSaveFilePartParams) CRC() uint32 { return 0xb304a621 }

type UploadSaveBigFilePartParams struct {
	FileID         int64
	FilePart       int32
	FileTotalParts int32
	Bytes          []byte
}

func (*UploadSaveBigFilePartParams) CRC() uint32 { return 0xde7b673d }

type UploadGetFileParams struct {
	Precise      bool `tl:"flag:0,encoded_in_bitflags"`
	CdnSupported bool `tl:"flag:1,encoded_in_bitflags"`
	Location     InputFileLocation
	Offset       int64
	Limit        int32
}

func (*UploadGetFileParams) CRC() uint32 { return 0xbe5335be }

func (*UploadGetFileParams) FlagIndex() int { return 2 }

type UploadGetCdnFileParams struct {
	FileToken []byte
	Offset    int64
	Limit     int32
}

func (*UploadGetCdnFileParams) CRC() uint32 { return 0x395f69da }

type UploadReuploadCdnFileParams struct {
	FileToken    []byte
	RequestToken []byte
}

func (*UploadReuploadCdnFileParams) CRC() uint32 { return 0x9b2754a8 }

type UploadGetCdnFileHashesParams struct {
	FileToken []byte
	Offset    int64
}

func (*UploadGetCdnFileHashesParams) CRC() uint32 { return 0x91dc3f31 }

type HelpGetCdnConfigParams struct{}

func (*HelpGetCdnConfigParams) CRC() uint32 { return 0x52029342 }

// invokeAs sends req through inv and asserts the type of the answer.
func invokeAs[T any](ctx context.Context, inv Invoker, req tl.Object) (T, error) {
	var zero T
	res, err := inv.MakeRequest(ctx, req)
	if err != nil {
		return zero, errors.Wrapf(err, "sending %s", requestName(req))
	}
	out, ok := res.(T)
	if !ok {
		return zero, errors.Errorf("%s: unexpected answer %T", requestName(req), res)
	}
	return out, nil
}

// invokeVector is invokeAs for methods answering with a vector of boxed
// objects.
func invokeVector[T tl.Object](ctx context.Context, inv Invoker, req tl.Object) ([]T, error) {
	res, err := inv.MakeRequest(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s", requestName(req))
	}
	switch v := res.(type) {
	case []T:
		return v, nil
	case []tl.Object:
		out := make([]T, 0, len(v))
		for _, o := range v {
			item, ok := o.(T)
			if !ok {
				return nil, errors.Errorf("%s: unexpected vector item %T", requestName(req), o)
			}
			out = append(out, item)
		}
		return out, nil
	}
	return nil, errors.Errorf("%s: unexpected answer %T", requestName(req), res)
}

func requestName(req tl.Object) string {
	t := reflect.TypeOf(req)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func (c *Client) UsersGetUsers(ctx context.Context, id []InputUser) ([]User, error) {
	return invokeVector[User](ctx, c, &UsersGetUsersParams{ID: id})
}

func (c *Client) ChannelsGetChannels(ctx context.Context, id []InputChannel) (MessagesChats, error) {
	return invokeAs[MessagesChats](ctx, c, &ChannelsGetChannelsParams{ID: id})
}

func (c *Client) MessagesGetChats(ctx context.Context, id []int64) (MessagesChats, error) {
	return invokeAs[MessagesChats](ctx, c, &MessagesGetChatsParams{ID: id})
}

func (c *Client) ContactsResolveUsername(ctx context.Context, username string) (*ContactsResolvedPeer, error) {
	return invokeAs[*ContactsResolvedPeer](ctx, c, &ContactsResolveUsernameParams{Username: username})
}

func (c *Client) UpdatesGetState(ctx context.Context) (*UpdatesState, error) {
	return invokeAs[*UpdatesState](ctx, c, &UpdatesGetStateParams{})
}

func (c *Client) UpdatesGetDifference(ctx context.Context, params *UpdatesGetDifferenceParams) (UpdatesDifference, error) {
	return invokeAs[UpdatesDifference](ctx, c, params)
}

func (c *Client) UpdatesGetChannelDifference(ctx context.Context, params *UpdatesGetChannelDifferenceParams) (UpdatesChannelDifference, error) {
	return invokeAs[UpdatesChannelDifference](ctx, c, params)
}

func (c *Client) AuthExportAuthorization(ctx context.Context, dcID int32) (*AuthExportedAuthorization, error) {
	return invokeAs[*AuthExportedAuthorization](ctx, c, &AuthExportAuthorizationParams{DcID: dcID})
}

func (c *Client) AuthLogOut(ctx context.Context) (*AuthLoggedOut, error) {
	return invokeAs[*AuthLoggedOut](ctx, c, &AuthLogOutParams{})
}

func (c *Client) HelpGetCdnConfig(ctx context.Context) (*CdnConfig, error) {
	return invokeAs[*CdnConfig](ctx, c, &HelpGetCdnConfigParams{})
}

func (c *Client) AccountGetPassword(ctx context.Context) (*AccountPassword, error) {
	return invokeAs[*AccountPassword](ctx, c, &AccountGetPasswordParams{})
}
