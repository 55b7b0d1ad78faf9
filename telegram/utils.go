// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"encoding/binary"
	"strings"

	"github.com/roseloverx/mtproto/internal/utils"
)

type mimeTypeManager struct {
	byExt  map[string]string
	byMime map[string]string
}

// addMime registers ext for mime. The first extension registered for a
// mime type is the one Ext returns.
func (m *mimeTypeManager) addMime(ext, mime string) {
	m.byExt[ext] = mime
	if _, ok := m.byMime[mime]; !ok {
		m.byMime[mime] = ext
	}
}

// Ext returns the file extension, dot included, for mime or "" if the type
// is unknown. Parameters such as "; codecs=opus" are ignored.
func (m *mimeTypeManager) Ext(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	return m.byMime[strings.ToLower(strings.TrimSpace(mime))]
}

var mimeTypes = &mimeTypeManager{
	byExt:  make(map[string]string),
	byMime: make(map[string]string),
}

func init() {
	mimeTypes.addMime(".jpg", "image/jpeg")
	mimeTypes.addMime(".jpeg", "image/jpeg")
	mimeTypes.addMime(".png", "image/png")
	mimeTypes.addMime(".webp", "image/webp")
	mimeTypes.addMime(".gif", "image/gif")
	mimeTypes.addMime(".bmp", "image/bmp")
	mimeTypes.addMime(".tiff", "image/tiff")

	mimeTypes.addMime(".mp4", "video/mp4")
	mimeTypes.addMime(".mov", "video/quicktime")
	mimeTypes.addMime(".mkv", "video/x-matroska")
	mimeTypes.addMime(".webm", "video/webm")
	mimeTypes.addMime(".3gp", "video/3gpp")

	mimeTypes.addMime(".mp3", "audio/mpeg")
	mimeTypes.addMime(".m4a", "audio/m4a")
	mimeTypes.addMime(".aac", "audio/aac")
	mimeTypes.addMime(".ogg", "audio/ogg")
	mimeTypes.addMime(".flac", "audio/x-flac")
	mimeTypes.addMime(".opus", "audio/opus")
	mimeTypes.addMime(".wav", "audio/wav")

	mimeTypes.addMime(".pdf", "application/pdf")
	mimeTypes.addMime(".zip", "application/zip")
	mimeTypes.addMime(".tgs", "application/x-tgsticker")
}

// randomLong returns a random non-negative int64, used for upload file ids
// and download names.
func randomLong() int64 {
	return int64(binary.LittleEndian.Uint64(utils.RandomBytes(8)) >> 1)
}
