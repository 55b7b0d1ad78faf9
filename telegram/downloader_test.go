// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mtproto "github.com/roseloverx/mtproto"
	ige "github.com/roseloverx/mtproto/internal/aes_ige"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/utils"
)

const cdnHashPart = 128 * 1024

func documentID(dcID int32) string {
	return EncodeFileID(&FileID{Type: MediaDocument, DcID: dcID, ID: 5, AccessHash: 6})
}

func slice(data []byte, offset int64, limit int32) []byte {
	if offset >= int64(len(data)) {
		return []byte{}
	}
	return data[offset:min(offset+int64(limit), int64(len(data)))]
}

// serveFile answers file requests sent to data center dcID with data.
func serveFile(dcID int, data []byte) answerFunc {
	return func(s *fakeSender, req tl.Object) (any, error) {
		r, ok := req.(*UploadGetFileParams)
		if !ok {
			return nil, nil
		}
		if s.DcID() != dcID {
			return nil, rpcError("FILE_MIGRATE_X", dcID)
		}
		return &UploadFileObj{Bytes: slice(data, r.Offset, r.Limit)}, nil
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadMedia(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	data := utils.RandomBytes(downloadChunkSize + 100)
	h.setAnswer(serveFile(2, data))

	var reports [][2]int64
	dest := filepath.Join(t.TempDir(), "name.bin")
	path, err := c.DownloadMedia(testContext(t), documentID(2), &DownloadOptions{
		FileName: dest,
		Size:     int64(len(data)),
		Progress: func(current, total int64) error {
			reports = append(reports, [2]int64{current, total})
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	size := int64(len(data))
	assert.Equal(t, [][2]int64{{downloadChunkSize, size}, {size, size}}, reports)
	assert.Equal(t, 3, count[*UploadGetFileParams](h))
	assertEmptyDir(t, c.scratchDir)

	keys, _ := h.createdKeys()
	assert.Equal(t, []int{1, 2}, keys)
	assert.Equal(t, 1, count[*AuthImportAuthorizationParams](h))
	assert.Equal(t, 1, c.media.len())
}

func TestDownloadReusesMediaSession(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	h.setAnswer(serveFile(2, []byte("small")))

	for i := 0; i < 2; i++ {
		_, err := c.DownloadMedia(testContext(t), documentID(2), &DownloadOptions{FileName: filepath.Join(t.TempDir(), "f")})
		require.NoError(t, err)
	}
	assert.Len(t, h.allSessions(), 2)
}

func TestDownloadFollowsFileMigrate(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	h.setAnswer(serveFile(3, []byte("moved file")))

	path, err := c.DownloadMedia(testContext(t), documentID(2), &DownloadOptions{FileName: filepath.Join(t.TempDir(), "moved")})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "moved file", string(got))

	keys, _ := h.createdKeys()
	assert.Equal(t, []int{1, 2, 3}, keys)
}

// cdnServer plays an origin data center redirecting to CDN DC 203, which
// first asks for a reupload and then serves the encrypted file.
type cdnServer struct {
	data       []byte
	key, iv    []byte
	token      []byte
	reuploaded bool
	reupload   error
	corrupt    bool
	dropHashes int
}

func newCdnServer(data []byte) *cdnServer {
	return &cdnServer{
		data:  data,
		key:   utils.RandomBytes(32),
		iv:    utils.RandomBytes(16),
		token: []byte("token"),
	}
}

func (srv *cdnServer) answer(s *fakeSender, req tl.Object) (any, error) {
	switch r := req.(type) {
	case *UploadGetFileParams:
		return &UploadFileCdnRedirect{DcID: 203, FileToken: srv.token, EncryptionKey: srv.key, EncryptionIv: srv.iv}, nil
	case *UploadGetCdnFileParams:
		if s.DcID() != 203 {
			return nil, errors.New("cdn request sent to the origin")
		}
		if !srv.reuploaded {
			return &UploadCdnFileReuploadNeeded{RequestToken: []byte("again")}, nil
		}
		chunk := slice(srv.data, r.Offset, r.Limit)
		enc, err := ige.CTR256Encrypt(chunk, srv.key, srv.iv, r.Offset)
		if err != nil {
			return nil, err
		}
		return &UploadCdnFileObj{Bytes: enc}, nil
	case *UploadReuploadCdnFileParams:
		if srv.reupload != nil {
			return nil, srv.reupload
		}
		srv.reuploaded = true
		return true, nil
	case *UploadGetCdnFileHashesParams:
		var hashes []tl.Object
		chunk := slice(srv.data, r.Offset, downloadChunkSize)
		for off := 0; off < len(chunk); off += cdnHashPart {
			sum := sha256.Sum256(chunk[off:min(off+cdnHashPart, len(chunk))])
			if srv.corrupt {
				sum[0] ^= 0xff
			}
			hashes = append(hashes, &FileHash{Offset: r.Offset + int64(off), Limit: cdnHashPart, Hash: sum[:]})
		}
		return hashes[:max(len(hashes)-srv.dropHashes, 0)], nil
	}
	return nil, nil
}

func TestDownloadFromCdn(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	srv := newCdnServer(utils.RandomBytes(downloadChunkSize + 4096))
	h.setAnswer(srv.answer)

	path, err := c.DownloadMedia(testContext(t), documentID(2), &DownloadOptions{FileName: filepath.Join(t.TempDir(), "cdn.bin")})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(srv.data, got))

	assert.Equal(t, 1, count[*UploadReuploadCdnFileParams](h))
	assert.Equal(t, 3, count[*UploadGetCdnFileParams](h))
	assert.Equal(t, 2, count[*UploadGetCdnFileHashesParams](h))

	keys, cdnKeys := h.createdKeys()
	assert.Equal(t, []int{1, 2}, keys)
	assert.Equal(t, []int{203}, cdnKeys)
}

func TestDownloadFromCdnRejectsCorruptChunk(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	srv := newCdnServer(utils.RandomBytes(4096))
	srv.corrupt = true
	h.setAnswer(srv.answer)

	dest := filepath.Join(t.TempDir(), "corrupt.bin")
	path, err := c.DownloadMedia(testContext(t), documentID(2), &DownloadOptions{FileName: dest})
	assert.Empty(t, path)

	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity), "got %v", err)
	assert.Equal(t, int64(0), integrity.Offset)

	assertEmptyDir(t, c.scratchDir)
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestVerifyChunkRequiresFullCoverage(t *testing.T) {
	chunk := utils.RandomBytes(3 * cdnHashPart)
	const offset = int64(4 * cdnHashPart)
	hash := func(i int) *FileHash {
		part := chunk[i*cdnHashPart : (i+1)*cdnHashPart]
		sum := sha256.Sum256(part)
		return &FileHash{Offset: offset + int64(i*cdnHashPart), Limit: cdnHashPart, Hash: sum[:]}
	}

	tests := []struct {
		name   string
		hashes []*FileHash
		gap    int64
	}{
		{"none", nil, offset},
		{"middle missing", []*FileHash{hash(0), hash(2)}, offset + cdnHashPart},
		{"last missing", []*FileHash{hash(1), hash(0)}, offset + 2*cdnHashPart},
		{"first missing", []*FileHash{hash(1), hash(2)}, offset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var integrity *IntegrityError
			err := verifyChunk(chunk, offset, tt.hashes)
			require.True(t, errors.As(err, &integrity), "got %v", err)
			assert.Equal(t, tt.gap, integrity.Offset)
		})
	}

	assert.NoError(t, verifyChunk(chunk, offset, []*FileHash{hash(2), nil, hash(0), hash(1)}))
	tail := sha256.Sum256(chunk[:10])
	last := &FileHash{Offset: offset, Limit: cdnHashPart, Hash: tail[:]}
	assert.NoError(t, verifyChunk(chunk[:10], offset, []*FileHash{last}), "the last hash may reach past the file end")
}

func TestDownloadFromCdnRejectsUnhashedChunk(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	srv := newCdnServer(utils.RandomBytes(2 * cdnHashPart))
	srv.dropHashes = 1
	h.setAnswer(srv.answer)

	dest := filepath.Join(t.TempDir(), "unhashed.bin")
	path, err := c.DownloadMedia(testContext(t), documentID(2), &DownloadOptions{FileName: dest})
	assert.Empty(t, path)

	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity), "got %v", err)
	assert.Equal(t, int64(cdnHashPart), integrity.Offset)
	assertEmptyDir(t, c.scratchDir)
}

func TestDownloadFromCdnVolumeGone(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	srv := newCdnServer(utils.RandomBytes(4096))
	srv.reupload = rpcError("VOLUME_LOC_NOT_FOUND", nil)
	h.setAnswer(srv.answer)

	dest := filepath.Join(t.TempDir(), "gone.bin")
	path, err := c.DownloadMedia(testContext(t), documentID(2), &DownloadOptions{FileName: dest})
	assert.NoError(t, err)
	assert.Empty(t, path)

	assertEmptyDir(t, c.scratchDir)
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadStopTransmission(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	h.setAnswer(serveFile(1, utils.RandomBytes(3*downloadChunkSize)))

	dest := filepath.Join(t.TempDir(), "stopped.bin")
	path, err := c.DownloadMedia(testContext(t), documentID(1), &DownloadOptions{
		FileName: dest,
		Progress: func(int64, int64) error { return c.StopTransmission() },
	})
	assert.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, 1, count[*UploadGetFileParams](h))
	assertEmptyDir(t, c.scratchDir)

	keys, _ := h.createdKeys()
	assert.Equal(t, []int{1}, keys, "home data center downloads reuse the account key")
}

func TestDownloadMediaGeneratesName(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	h.setAnswer(serveFile(1, []byte("%PDF")))

	dir := t.TempDir()
	path, err := c.DownloadMedia(testContext(t), documentID(1), &DownloadOptions{
		FileName: dir + string(filepath.Separator),
		MimeType: "application/pdf",
		Date:     time.Date(2024, 3, 9, 8, 7, 6, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "document_2024-03-09_08-07-06_"), name)
	assert.Equal(t, ".pdf", filepath.Ext(name))
}

func TestDownloadMediaErrors(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.c

	_, err := c.DownloadMedia(testContext(t), "%%%", nil)
	assert.True(t, errors.Is(err, ErrFileIDInvalid), "got %v", err)

	_, err = c.DownloadMedia(testContext(t), documentID(1), nil)
	var stateErr *mtproto.InvalidStateError
	assert.True(t, errors.As(err, &stateErr), "got %v", err)
}

func TestMediaExt(t *testing.T) {
	tests := []struct {
		typ  MediaType
		mime string
		ext  string
	}{
		{MediaVoice, "audio/mpeg", ".ogg"},
		{MediaVideo, "", ".mp4"},
		{MediaVideo, "video/webm", ".webm"},
		{MediaVideoNote, "Video/MP4; codecs=avc1", ".mp4"},
		{MediaDocument, "", ".unknown"},
		{MediaDocument, "application/zip", ".zip"},
		{MediaSticker, "application/x-tgsticker", ".webp"},
		{MediaAudio, "", ".mp3"},
		{MediaAudio, "audio/ogg", ".ogg"},
		{MediaPhoto, "image/png", ".jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ext, mediaExt(tt.typ, tt.mime), "%s %q", tt.typ, tt.mime)
	}
}
