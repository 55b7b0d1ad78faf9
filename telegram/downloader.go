// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	mtproto "github.com/roseloverx/mtproto"
	ige "github.com/roseloverx/mtproto/internal/aes_ige"
)

// GetFile downloads the file at loc from data center dcID into a scratch
// file and returns its path. size is only used for progress reports and
// may be 0. A stopped transfer, and a CDN file the origin can no longer
// reupload, return "" with a nil error. On any failure the scratch file is
// removed.
func (c *Client) GetFile(ctx context.Context, dcID int, loc InputFileLocation, size int64, progress ProgressFunc) (path string, err error) {
	s, err := c.media.get(ctx, dcID, false)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(c.scratchDir, "download-"+uuid.NewString()+".part"), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", errors.Wrap(err, "creating scratch file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			path, err = "", errors.Wrap(cerr, "closing scratch file")
		}
		if path == "" {
			os.Remove(f.Name())
		}
	}()

	d := &download{c: c, origin: s, out: f, size: size, progress: progress}
	complete, err := d.fetch(ctx, loc)
	switch {
	case errors.Is(err, ErrStopTransmission):
		c.Log.Infof("download stopped at offset %d", d.offset)
		return "", nil
	case err != nil:
		return "", err
	case !complete:
		return "", nil
	}
	return f.Name(), nil
}

type download struct {
	c        *Client
	origin   sender
	out      io.Writer
	offset   int64
	size     int64
	progress ProgressFunc
}

// fetch reads chunks until an empty one. It reports false when the file
// is gone for good.
func (d *download) fetch(ctx context.Context, loc InputFileLocation) (bool, error) {
	for {
		res, err := invokeAs[UploadFile](ctx, d.origin, &UploadGetFileParams{
			CdnSupported: true,
			Location:     loc,
			Offset:       d.offset,
			Limit:        downloadChunkSize,
		})
		if dc, ok := mtproto.AsFileMigrate(err); ok {
			d.c.Log.Debugf("file lives on DC %d", dc)
			if d.origin, err = d.c.media.get(ctx, dc, false); err != nil {
				return false, err
			}
			continue
		}
		if err != nil {
			return false, err
		}

		switch r := res.(type) {
		case *UploadFileObj:
			if len(r.Bytes) == 0 {
				return true, nil
			}
			if err := d.write(r.Bytes); err != nil {
				return false, err
			}
		case *UploadFileCdnRedirect:
			return d.fetchCdn(ctx, r)
		default:
			return false, errors.Errorf("unexpected file answer %T", res)
		}
	}
}

// fetchCdn continues the download from the CDN data center r points at.
// Every chunk is decrypted and checked against the hashes the origin
// announces for it.
func (d *download) fetchCdn(ctx context.Context, r *UploadFileCdnRedirect) (bool, error) {
	cdn, err := d.c.media.get(ctx, int(r.DcID), true)
	if err != nil {
		return false, err
	}

	for {
		res, err := invokeAs[UploadCdnFile](ctx, cdn, &UploadGetCdnFileParams{
			FileToken: r.FileToken,
			Offset:    d.offset,
			Limit:     downloadChunkSize,
		})
		if err != nil {
			return false, err
		}

		switch v := res.(type) {
		case *UploadCdnFileReuploadNeeded:
			_, err := d.origin.MakeRequest(ctx, &UploadReuploadCdnFileParams{
				FileToken:    r.FileToken,
				RequestToken: v.RequestToken,
			})
			if mtproto.MatchError(err, "VOLUME_LOC_NOT_FOUND") {
				d.c.Log.Warnf("cdn file at offset %d is no longer available", d.offset)
				return false, nil
			}
			if err != nil {
				return false, errors.Wrap(err, "requesting cdn reupload")
			}
		case *UploadCdnFileObj:
			if len(v.Bytes) == 0 {
				return true, nil
			}
			chunk, err := ige.CTR256Decrypt(v.Bytes, r.EncryptionKey, r.EncryptionIv, d.offset)
			if err != nil {
				return false, errors.Wrap(err, "decrypting cdn chunk")
			}
			hashes, err := invokeVector[*FileHash](ctx, d.origin, &UploadGetCdnFileHashesParams{
				FileToken: r.FileToken,
				Offset:    d.offset,
			})
			if err != nil {
				return false, err
			}
			if err := verifyChunk(chunk, d.offset, hashes); err != nil {
				return false, err
			}
			if err := d.write(chunk); err != nil {
				return false, err
			}
			if len(v.Bytes) < downloadChunkSize {
				return true, nil
			}
		default:
			return false, errors.Errorf("unexpected cdn answer %T", res)
		}
	}
}

func (d *download) write(chunk []byte) error {
	if _, err := d.out.Write(chunk); err != nil {
		return errors.Wrap(err, "writing chunk")
	}
	d.offset += downloadChunkSize
	if d.progress == nil {
		return nil
	}
	current := d.offset
	if d.size > 0 {
		current = min(current, d.size)
	}
	return d.progress(current, d.size)
}

// verifyChunk checks chunk, which starts at offset in the file, against
// the announced hashes. Every byte of the chunk must be covered by a hash.
func verifyChunk(chunk []byte, offset int64, hashes []*FileHash) error {
	sorted := slices.DeleteFunc(slices.Clone(hashes), func(h *FileHash) bool { return h == nil })
	slices.SortFunc(sorted, func(a, b *FileHash) int { return cmp.Compare(a.Offset, b.Offset) })

	end := offset + int64(len(chunk))
	covered := offset
	for _, h := range sorted {
		if h.Offset < offset || h.Offset >= end || h.Limit <= 0 {
			continue
		}
		if h.Offset > covered {
			break
		}
		stop := min(h.Offset+int64(h.Limit), end)
		sum := sha256.Sum256(chunk[h.Offset-offset : stop-offset])
		if !bytes.Equal(sum[:], h.Hash) {
			return &IntegrityError{Offset: h.Offset}
		}
		covered = max(covered, stop)
	}
	if covered < end {
		return &IntegrityError{Offset: covered}
	}
	return nil
}
