// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

//invokeAfterMsg#cb9f372d {X:Type} msg_id:long query:!X = X;
//invokeAfterMsgs#3dc4b4f0 {X:Type} msg_ids:Vector<long> query:!X = X;

type InitConnectionParams struct {
	ApiID          int32     // Application identifier (see. App configuration)
	DeviceModel    string    // Device model
	SystemVersion  string    // Operation system version
	AppVersion     string    // Application version
	SystemLangCode string    // Code for the language used on the device's OS, ISO 639-1 standard
	LangPack       string    // Language pack to use
	LangCode       string    // Code for the language used on the client, ISO 639-1 standard
	Proxy          tl.Object `tl:"flag:0"` // Info about an MTProto proxy
	Params         tl.Object `tl:"flag:1"` // Additional initConnection parameters
	Query          tl.Object // The query itself
}

func (*InitConnectionParams) CRC() uint32 {
	return 0xc1cd5ea9
}

func (*InitConnectionParams) FlagIndex() int {
	return 0
}

type InvokeWithLayerParams struct {
	Layer int32
	Query tl.Object
}

func (*InvokeWithLayerParams) CRC() uint32 {
	return 0xda9b0d0d
}

type InvokeWithoutUpdatesParams struct {
	Query tl.Object
}

func (*InvokeWithoutUpdatesParams) CRC() uint32 {
	return 0xbf9459b7
}

type HelpGetConfigParams struct{}

func (*HelpGetConfigParams) CRC() uint32 {
	return 0xc4f9186b
}

// initConnection wraps query the way the first request of every session
// must be wrapped, and sends it through inv.
func (c *Client) initConnection(ctx context.Context, inv Invoker, query tl.Object) (any, error) {
	return inv.MakeRequest(ctx, &InvokeWithLayerParams{
		Layer: ApiVersion,
		Query: &InitConnectionParams{
			ApiID:          int32(c.cfg.AppID),
			DeviceModel:    c.cfg.DeviceModel,
			SystemVersion:  c.cfg.SystemVersion,
			AppVersion:     c.cfg.AppVersion,
			SystemLangCode: c.cfg.LangCode,
			LangCode:       c.cfg.LangCode,
			Query:          query,
		},
	})
}

// HelpGetConfig asks for the current configuration: data centers, limits
// and timeouts.
func (c *Client) HelpGetConfig(ctx context.Context) (*Config, error) {
	return invokeAs[*Config](ctx, c, &HelpGetConfigParams{})
}
