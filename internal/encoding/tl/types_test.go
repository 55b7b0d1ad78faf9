// Copyright (c) 2024 RoseLoverX

package tl_test

import (
	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type ResPQ struct {
	Nonce        tl.Int128
	ServerNonce  tl.Int128
	Pq           []byte
	Fingerprints []int64
}

func (*ResPQ) CRC() uint32 { return 0x05162463 }

type Rights struct {
	DeleteMessages bool `tl:"flag:3,encoded_in_bitflags"`
	BanUsers       bool `tl:"flag:4,encoded_in_bitflags"`
}

func (*Rights) CRC() uint32 { return 0x5fb224d5 }

func (*Rights) FlagIndex() int { return 0 }

type Chat struct {
	Deactivated bool `tl:"flag:5,encoded_in_bitflags"`
	ID          int64
	Title       string
	Photo       tl.Object `tl:"flag:1"`
	AdminRights *Rights   `tl:"flag:14"`
	Version     int32
	Migrated    bool `tl:"flag2:0,encoded_in_bitflags"`
	Until       int32 `tl:"flag2:3"`
}

func (*Chat) CRC() uint32 { return 0x41cbf256 }

func (*Chat) FlagIndex() int { return 0 }

type ChatsHolder struct {
	Chats []tl.Object
	Extra any
}

func (*ChatsHolder) CRC() uint32 { return 0x64ff9fd5 }

type Pair struct {
	Key   string
	Value float64
}

func (*Pair) CRC() uint32 { return 0x1f4a3b2c }

func init() {
	tl.RegisterObjects(&ResPQ{}, &Rights{}, &Chat{}, &ChatsHolder{}, &Pair{})
}
