// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIDRoundTrip(t *testing.T) {
	for _, fid := range []*FileID{
		{Type: MediaDocument, DcID: 2, ID: 5647382910, AccessHash: -8123456789},
		{Type: MediaVoice, DcID: 4, ID: 1, AccessHash: 0},
		{Type: MediaPhoto, DcID: 1, ID: 99, AccessHash: 7, VolumeID: 200300, Secret: -17, LocalID: 42},
		{Type: MediaChatPhoto, DcID: 5, VolumeID: 1, LocalID: 3},
	} {
		encoded := EncodeFileID(fid)
		assert.NotContains(t, encoded, "=")

		decoded, err := DecodeFileID(encoded)
		require.NoError(t, err, fid.Type.String())
		assert.Equal(t, fid, decoded)
	}
}

func TestFileIDCompressesZeroRuns(t *testing.T) {
	fid := &FileID{Type: MediaVoice, DcID: 4, ID: 1}
	packed, err := base64.RawURLEncoding.DecodeString(EncodeFileID(fid))
	require.NoError(t, err)
	assert.Less(t, len(packed), compactFileIDLen)
}

func TestDecodeFileIDInvalid(t *testing.T) {
	raw := func(n int, typ uint32) string {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = 0xff
		}
		binary.LittleEndian.PutUint32(buf, typ)
		return base64.RawURLEncoding.EncodeToString(rleEncode(buf))
	}

	for name, s := range map[string]string{
		"not base64":      "!!!",
		"too short":       raw(10, uint32(MediaDocument)),
		"between layouts": raw(30, uint32(MediaDocument)),
		"too long":        raw(60, uint32(MediaDocument)),
		"unknown type":    raw(compactFileIDLen, 7),
		"truncated run":   base64.RawURLEncoding.EncodeToString([]byte{1, 2, 0}),
		"empty run":       base64.RawURLEncoding.EncodeToString([]byte{1, 0, 0}),
	} {
		_, err := DecodeFileID(s)
		assert.True(t, errors.Is(err, ErrFileIDInvalid), "%s: got %v", name, err)
	}
}

func TestRLESplitsLongRuns(t *testing.T) {
	assert.Equal(t, []byte{7, 0, 255, 0, 45, 9}, rleEncode(append(append([]byte{7}, make([]byte, 300)...), 9)))
}

func TestFileIDLocation(t *testing.T) {
	photo := &FileID{Type: MediaPhoto, DcID: 2, VolumeID: 10, Secret: 11, LocalID: 12}
	loc, ok := photo.Location().(*InputFileLocationObj)
	require.True(t, ok)
	assert.Equal(t, int64(10), loc.VolumeID)
	assert.Equal(t, int32(12), loc.LocalID)
	assert.Equal(t, int64(11), loc.Secret)

	doc := &FileID{Type: MediaDocument, DcID: 2, ID: 5, AccessHash: 6}
	docLoc, ok := doc.Location().(*InputDocumentFileLocation)
	require.True(t, ok)
	assert.Equal(t, int64(5), docLoc.ID)
	assert.Equal(t, int64(6), docLoc.AccessHash)
	assert.NotNil(t, docLoc.FileReference)
}

func TestMediaTypeString(t *testing.T) {
	assert.Equal(t, "video_note", MediaVideoNote.String())
	assert.Equal(t, "MediaType(7)", MediaType(7).String())
}
