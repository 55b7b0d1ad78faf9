// Copyright (c) 2024 RoseLoverX

package tl_test

import (
	"encoding/hex"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

func hexed(t *testing.T, in string) []byte {
	t.Helper()
	res, err := hex.DecodeString(strings.ReplaceAll(in, " ", ""))
	require.NoError(t, err)
	return res
}

func TestMarshalResPQ(t *testing.T) {
	var nonce, serverNonce tl.Int128
	for i := range nonce {
		nonce[i] = byte(i)
		serverNonce[i] = byte(0xf0 + i%16)
	}

	obj := &ResPQ{
		Nonce:        nonce,
		ServerNonce:  serverNonce,
		Pq:           []byte{0x17, 0xed, 0x48, 0x94, 0x1a, 0x08, 0xf9, 0x81},
		Fingerprints: []int64{-4344800451088585951},
	}

	data, err := tl.Marshal(obj)
	require.NoError(t, err)

	want := hexed(t, "63241605"+
		"000102030405060708090a0b0c0d0e0f"+
		"f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff"+
		"0817ed48941a08f981000000"+
		"15c4b51c01000000216be86c022bb4c3")
	assert.Equal(t, want, data)

	res := &ResPQ{}
	require.NoError(t, tl.Decode(data, res))
	assert.Equal(t, obj, res)

	unknown, err := tl.DecodeUnknownObject(data)
	require.NoError(t, err)
	assert.Equal(t, obj, unknown)
}

func TestFlagsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		obj  *Chat
	}{
		{
			name: "no optional fields",
			obj:  &Chat{ID: 1, Title: "a", Version: 2},
		},
		{
			name: "both bitsets",
			obj: &Chat{
				Deactivated: true,
				ID:          123,
				Title:       "abcdef",
				Photo:       &Pair{Key: "pikcha.png", Value: 1.5},
				AdminRights: &Rights{DeleteMessages: true, BanUsers: true},
				Version:     1,
				Migrated:    true,
				Until:       99,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tl.Marshal(tt.obj)
			require.NoError(t, err)

			res := &Chat{}
			require.NoError(t, tl.Decode(data, res))
			assert.Equal(t, tt.obj, res)
		})
	}
}

func TestFlagsLayout(t *testing.T) {
	data, err := tl.Marshal(&Chat{Deactivated: true, ID: 7, Title: "", Until: 1})
	require.NoError(t, err)

	// crc, flags, flags2, id, empty string, version, until
	want := hexed(t, "56f2cb41"+"20000000"+"08000000"+"0700000000000000"+"00000000"+"00000000"+"01000000")
	assert.Equal(t, want, data)
}

func TestVectorOfObjectsInInterface(t *testing.T) {
	obj := &ChatsHolder{
		Chats: []tl.Object{&Chat{ID: 1, Title: "x"}, &Pair{Key: "k"}},
		Extra: true,
	}

	data, err := tl.Marshal(obj)
	require.NoError(t, err)

	res := &ChatsHolder{}
	require.NoError(t, tl.Decode(data, res))
	assert.Equal(t, obj, res)
}

func TestBareVectorNeedsExpectedType(t *testing.T) {
	data, err := tl.Marshal([]int64{1, 2, 3})
	require.NoError(t, err)

	_, err = tl.DecodeUnknownObject(data)
	var explicit *tl.ErrMustParseSlicesExplicitly
	assert.ErrorAs(t, err, &explicit)

	obj, err := tl.DecodeUnknownObject(data, reflect.TypeOf([]int64{}))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, tl.UnwrapNativeTypes(obj))
}

func TestUnknownCrc(t *testing.T) {
	_, err := tl.DecodeUnknownObject(hexed(t, "efbeadde00000000"))
	var notFound *tl.ErrRegisteredObjectNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint32(0xdeadbeef), notFound.Crc)
}

func TestWrongCrc(t *testing.T) {
	data, err := tl.Marshal(&Pair{Key: "a"})
	require.NoError(t, err)

	err = tl.Decode(data, &ResPQ{})
	var invalid *tl.ErrInvalidCrc
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, uint32(0x1f4a3b2c), invalid.Got)
}

func TestPutMessagePadding(t *testing.T) {
	tests := []struct {
		size    int
		encoded int
	}{
		{0, 4},
		{1, 4},
		{3, 4},
		{4, 8},
		{253, 256},
		{254, 260},
		{1000, 1004},
	}

	for _, tt := range tests {
		data, err := tl.Marshal(make([]byte, tt.size))
		require.NoError(t, err)
		assert.Len(t, data, tt.encoded, "size %d", tt.size)

		var back []byte
		require.NoError(t, tl.Decode(data, &back))
		assert.Len(t, back, tt.size)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data, err := tl.Marshal(&Pair{Key: "some key", Value: 2})
	require.NoError(t, err)

	err = tl.Decode(data[:len(data)-3], &Pair{})
	assert.Error(t, err)
}
