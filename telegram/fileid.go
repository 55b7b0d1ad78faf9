// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"encoding/base64"
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
)

type MediaType int32

const (
	MediaThumbnail MediaType = 0
	MediaChatPhoto MediaType = 1
	MediaPhoto     MediaType = 2
	MediaVoice     MediaType = 3
	MediaVideo     MediaType = 4
	MediaDocument  MediaType = 5
	MediaSticker   MediaType = 8
	MediaAudio     MediaType = 9
	MediaGif       MediaType = 10
	MediaVideoNote MediaType = 13
)

var mediaTypeNames = map[MediaType]string{
	MediaThumbnail: "thumbnail",
	MediaChatPhoto: "chat_photo",
	MediaPhoto:     "photo",
	MediaVoice:     "voice",
	MediaVideo:     "video",
	MediaDocument:  "document",
	MediaSticker:   "sticker",
	MediaAudio:     "audio",
	MediaGif:       "gif",
	MediaVideoNote: "video_note",
}

func (t MediaType) String() string {
	if name, ok := mediaTypeNames[t]; ok {
		return name
	}
	return "MediaType(" + strconv.Itoa(int(t)) + ")"
}

func (t MediaType) valid() bool {
	_, ok := mediaTypeNames[t]
	return ok
}

// photoLike media are addressed by volume rather than by id.
func (t MediaType) photoLike() bool {
	return t == MediaThumbnail || t == MediaChatPhoto || t == MediaPhoto
}

const (
	compactFileIDLen  = 4 + 4 + 8 + 8
	extendedFileIDLen = compactFileIDLen + 8 + 8 + 4
)

// FileID is a decoded file reference. The volume fields are only set for
// photo-like media stored by volume.
type FileID struct {
	Type       MediaType
	DcID       int32
	ID         int64
	AccessHash int64
	VolumeID   int64
	Secret     int64
	LocalID    int32
}

func (f *FileID) extended() bool {
	return f.VolumeID != 0 || f.Secret != 0 || f.LocalID != 0
}

// Location is where upload.getFile reads the file from.
func (f *FileID) Location() InputFileLocation {
	if f.Type.photoLike() && f.extended() {
		return &InputFileLocationObj{
			VolumeID:      f.VolumeID,
			LocalID:       f.LocalID,
			Secret:        f.Secret,
			FileReference: []byte{},
		}
	}
	return &InputDocumentFileLocation{
		ID:            f.ID,
		AccessHash:    f.AccessHash,
		FileReference: []byte{},
	}
}

// EncodeFileID packs f little-endian, compresses runs of zero bytes and
// returns it as unpadded url-safe base64.
func EncodeFileID(f *FileID) string {
	size := compactFileIDLen
	if f.extended() {
		size = extendedFileIDLen
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(f.Type))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(f.DcID))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.ID))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.AccessHash))
	if f.extended() {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(f.VolumeID))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(f.Secret))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(f.LocalID))
	}
	return base64.RawURLEncoding.EncodeToString(rleEncode(buf))
}

// DecodeFileID is the inverse of EncodeFileID. Anything that doesn't
// unpack to a known layout and media type is ErrFileIDInvalid.
func DecodeFileID(s string) (*FileID, error) {
	packed, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrFileIDInvalid, err.Error())
	}
	data, err := rleDecode(packed)
	if err != nil {
		return nil, err
	}

	var f FileID
	switch {
	case len(data) > compactFileIDLen:
		if len(data) != extendedFileIDLen {
			return nil, errors.Wrapf(ErrFileIDInvalid, "unpacked to %d bytes", len(data))
		}
		f.VolumeID = int64(binary.LittleEndian.Uint64(data[24:32]))
		f.Secret = int64(binary.LittleEndian.Uint64(data[32:40]))
		f.LocalID = int32(binary.LittleEndian.Uint32(data[40:44]))
	case len(data) != compactFileIDLen:
		return nil, errors.Wrapf(ErrFileIDInvalid, "unpacked to %d bytes", len(data))
	}
	f.Type = MediaType(binary.LittleEndian.Uint32(data[0:4]))
	f.DcID = int32(binary.LittleEndian.Uint32(data[4:8]))
	f.ID = int64(binary.LittleEndian.Uint64(data[8:16]))
	f.AccessHash = int64(binary.LittleEndian.Uint64(data[16:24]))

	if !f.Type.valid() {
		return nil, errors.Wrapf(ErrFileIDInvalid, "unknown media type %d", f.Type)
	}
	return &f, nil
}

// rleEncode replaces every run of zero bytes with a zero and the run
// length.
func rleEncode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	run := 0
	flush := func() {
		for run > 0 {
			n := min(run, 255)
			out = append(out, 0, byte(n))
			run -= n
		}
	}
	for _, b := range data {
		if b == 0 {
			run++
			continue
		}
		flush()
		out = append(out, b)
	}
	flush()
	return out
}

func rleDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, extendedFileIDLen)
	for i := 0; i < len(data); i++ {
		if data[i] != 0 {
			out = append(out, data[i])
			continue
		}
		i++
		if i == len(data) || data[i] == 0 {
			return nil, errors.Wrap(ErrFileIDInvalid, "truncated zero run")
		}
		for n := 0; n < int(data[i]); n++ {
			out = append(out, 0)
		}
		if len(out) > extendedFileIDLen {
			return nil, errors.Wrap(ErrFileIDInvalid, "too long")
		}
	}
	return out, nil
}
