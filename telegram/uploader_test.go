// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mtproto "github.com/roseloverx/mtproto"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// sizedFile creates a sparse file of the given size.
func sizedFile(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "big.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

// partSink accepts file parts and keeps them by index.
type partSink struct {
	mu    sync.Mutex
	parts map[int32][]byte
	total int32
}

func (p *partSink) answer(_ *fakeSender, req tl.Object) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch r := req.(type) {
	case *UploadSaveFilePartParams:
		p.parts[r.FilePart] = r.Bytes
		return true, nil
	case *UploadSaveBigFilePartParams:
		p.parts[r.FilePart] = r.Bytes
		p.total = r.FileTotalParts
		return true, nil
	}
	return nil, nil
}

func newPartSink() *partSink {
	return &partSink{parts: make(map[int32][]byte)}
}

func TestSaveFileRejectsEmptyFile(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	_, err := c.SaveFile(testContext(t), writeFile(t, "empty", nil), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 B")
	assert.Len(t, h.allSessions(), 1, "no upload session is opened")
}

func TestSaveFileRejectsOversizedFile(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()

	_, err := c.SaveFile(testContext(t), sizedFile(t, maxUploadSize+1), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1500 MiB")
	assert.Len(t, h.allSessions(), 1, "no upload session is opened")
	assert.Zero(t, count[*UploadSaveBigFilePartParams](h))
}

func TestSaveSmallFile(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	sink := newPartSink()
	h.setAnswer(sink.answer)

	data := bytes.Repeat([]byte("0123456789"), 60000)
	path := writeFile(t, "notes.txt", data)

	var reports [][2]int64
	in, err := c.SaveFile(testContext(t), path, &UploadOptions{
		Progress: func(current, total int64) error {
			reports = append(reports, [2]int64{current, total})
			return nil
		},
	})
	require.NoError(t, err)

	file, ok := in.(*InputFileObj)
	require.True(t, ok, "got %T", in)
	assert.Equal(t, int32(2), file.Parts)
	assert.Equal(t, "notes.txt", file.Name)
	sum := md5.Sum(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), file.Md5Checksum)

	require.Len(t, sink.parts, 2)
	assert.Equal(t, data, append(sink.parts[0], sink.parts[1]...))
	assert.Len(t, sink.parts[0], uploadPartSize)

	assert.Equal(t, [][2]int64{{uploadPartSize, 600000}, {600000, 600000}}, reports)

	sessions := h.allSessions()
	require.Len(t, sessions, 2, "one upload session next to the main one")
	assert.Equal(t, mtproto.StateStopped, sessions[1].State())
	keys, _ := h.createdKeys()
	assert.Equal(t, []int{1}, keys, "home data center uploads reuse the account key")
}

func TestSaveBigFileUsesThreeSessions(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	sink := newPartSink()
	h.setAnswer(sink.answer)

	size := int64(bigFileThreshold + 1)
	in, err := c.SaveFile(testContext(t), sizedFile(t, size), &UploadOptions{FileName: "video.mp4"})
	require.NoError(t, err)

	big, ok := in.(*InputFileBig)
	require.True(t, ok, "got %T", in)
	assert.Equal(t, int32(21), big.Parts)
	assert.Equal(t, "video.mp4", big.Name)

	assert.Len(t, sink.parts, 21)
	assert.Equal(t, int32(21), sink.total)
	assert.Len(t, sink.parts[20], 1)

	sessions := h.allSessions()
	require.Len(t, sessions, 4)
	used := 0
	for _, s := range sessions[1:] {
		assert.Equal(t, mtproto.StateStopped, s.State())
		if len(s.sent()) > 1 {
			used++
		}
	}
	assert.Positive(t, used)
	assert.Zero(t, count[*UploadSaveFilePartParams](h))
}

func TestSaveFileResumesOnePart(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	sink := newPartSink()
	h.setAnswer(sink.answer)

	data := bytes.Repeat([]byte{7}, 3*uploadPartSize+10)
	in, err := c.SaveFile(testContext(t), writeFile(t, "resume.bin", data), &UploadOptions{
		Resume:   true,
		FileID:   99,
		FilePart: 3,
	})
	require.NoError(t, err)
	assert.Nil(t, in)

	require.Equal(t, 1, count[*UploadSaveFilePartParams](h))
	assert.Len(t, sink.parts[3], 10)

	_, err = c.SaveFile(testContext(t), writeFile(t, "resume.bin", data), &UploadOptions{Resume: true, FileID: 99, FilePart: 4})
	assert.Error(t, err)
}

func TestSaveFileStopTransmission(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	h.setAnswer(newPartSink().answer)

	data := bytes.Repeat([]byte{1}, 3*uploadPartSize)
	in, err := c.SaveFile(testContext(t), writeFile(t, "stop.bin", data), &UploadOptions{
		Progress: func(current, _ int64) error {
			if current >= uploadPartSize {
				return c.StopTransmission()
			}
			return nil
		},
	})
	assert.NoError(t, err)
	assert.Nil(t, in)
	assert.LessOrEqual(t, count[*UploadSaveFilePartParams](h), 1)
}

func TestSaveFileCountsFailedParts(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	h.setAnswer(func(_ *fakeSender, req tl.Object) (any, error) {
		if r, ok := req.(*UploadSaveFilePartParams); ok {
			if r.FilePart == 1 {
				return nil, rpcError("FILE_PART_INVALID", nil)
			}
			return true, nil
		}
		return nil, nil
	})

	data := bytes.Repeat([]byte{1}, 3*uploadPartSize)
	_, err := c.SaveFile(testContext(t), writeFile(t, "fail.bin", data), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 parts failed")
	assert.Equal(t, 3, count[*UploadSaveFilePartParams](h), "the other parts are still sent")
}

func TestSaveFileMissing(t *testing.T) {
	h := newHarness(t, botConfig())
	c := h.start()
	_, err := c.SaveFile(testContext(t), filepath.Join(t.TempDir(), "missing"), nil)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}
