// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

// ProgressFunc is told the bytes transferred so far and the total after
// every part. Returning ErrStopTransmission aborts the transfer quietly.
type ProgressFunc func(current, total int64) error

// StopTransmission returns the error a progress callback returns to abort
// the transfer it reports on.
func (c *Client) StopTransmission() error {
	return ErrStopTransmission
}

type UploadOptions struct {
	// FileName is the name the server gets, the base name of the path
	// when empty.
	FileName string
	Progress ProgressFunc

	// Resume re-sends only part FilePart of upload FileID, after the server
	// reported it missing.
	Resume   bool
	FileID   int64
	FilePart int32
}

// SaveFile uploads the file at path in 512 KiB parts and returns the
// InputFile referencing it. Files over 10 MiB go through 3 sessions with
// 4 workers each. A stopped transfer and a resumed part return nil, nil.
func (c *Client) SaveFile(ctx context.Context, path string, opts *UploadOptions) (InputFile, error) {
	if opts == nil {
		opts = &UploadOptions{}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "reading file size")
	}
	size := info.Size()
	switch {
	case size == 0:
		return nil, errors.New("file size equals to 0 B")
	case size > maxUploadSize:
		return nil, errors.New("files bigger than 1500 MiB can't be uploaded")
	}

	up := &upload{
		c:          c,
		file:       f,
		size:       size,
		totalParts: int32((size + uploadPartSize - 1) / uploadPartSize),
		big:        size > bigFileThreshold,
		progress:   opts.Progress,
	}
	if opts.Resume {
		up.fileID = opts.FileID
	} else {
		up.fileID = randomLong()
		if !up.big {
			up.md5 = md5.New()
		}
	}

	name := opts.FileName
	if name == "" {
		name = filepath.Base(path)
	}

	sessions, workers := 1, 1
	if up.big {
		sessions, workers = 3, 4
	}

	err = up.run(ctx, sessions, workers, func(parts chan<- tl.Object) error {
		if opts.Resume {
			return up.sendPart(ctx, parts, opts.FilePart)
		}
		return up.sendAll(ctx, parts)
	})
	switch {
	case errors.Is(err, ErrStopTransmission):
		c.Log.Infof("upload of %s stopped", name)
		return nil, nil
	case err != nil:
		return nil, err
	case opts.Resume:
		return nil, nil
	}

	if up.big {
		return &InputFileBig{ID: up.fileID, Parts: up.totalParts, Name: name}, nil
	}
	return &InputFileObj{
		ID:          up.fileID,
		Parts:       up.totalParts,
		Name:        name,
		Md5Checksum: hex.EncodeToString(up.md5.Sum(nil)),
	}, nil
}

type upload struct {
	c          *Client
	file       *os.File
	size       int64
	totalParts int32
	big        bool
	fileID     int64
	md5        hash.Hash
	progress   ProgressFunc
	failed     atomic.Int32
}

// run opens the session pool, starts the workers and feeds them through a
// bounded queue with produce.
func (u *upload) run(ctx context.Context, sessions, workers int, produce func(chan<- tl.Object) error) error {
	log := u.c.Log.WithPrefix("transfer")
	dcID := u.c.DcID()

	pool := make([]sender, sessions)
	defer func() {
		for _, s := range pool {
			if s == nil {
				continue
			}
			if err := s.Stop(); err != nil {
				log.WithError(err).Debug("stopping upload session")
			}
		}
	}()

	open, openCtx := errgroup.WithContext(ctx)
	for i := range pool {
		i := i
		open.Go(func() error {
			s, err := u.c.openSession(openCtx, dcID, false)
			pool[i] = s
			return err
		})
	}
	if err := open.Wait(); err != nil {
		return errors.Wrap(err, "opening upload sessions")
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	parts := make(chan tl.Object, uploadQueueDepth)
	g, gctx := errgroup.WithContext(workCtx)
	for _, s := range pool {
		s := s
		for w := 0; w < workers; w++ {
			g.Go(func() error { return u.worker(gctx, s, parts) })
		}
	}

	prodErr := produce(parts)
	close(parts)
	if prodErr != nil {
		cancel()
	}
	waitErr := g.Wait()

	switch {
	case prodErr != nil:
		return prodErr
	case waitErr != nil:
		return waitErr
	}
	if n := u.failed.Load(); n > 0 {
		return errors.Errorf("%d of %d parts failed to upload", n, u.totalParts)
	}
	return nil
}

// worker sends parts until the queue is closed. A failed part is logged and
// counted, the worker carries on.
func (u *upload) worker(ctx context.Context, s sender, parts <-chan tl.Object) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-parts:
			if !ok {
				return nil
			}
			if _, err := s.MakeRequest(ctx, req); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				u.failed.Add(1)
				u.c.Log.WithError(err).Errorf("uploading part of file %d", u.fileID)
			}
		}
	}
}

func (u *upload) sendAll(ctx context.Context, parts chan<- tl.Object) error {
	var sent int64
	for part := int32(0); part < u.totalParts; part++ {
		chunk := make([]byte, uploadPartSize)
		n, err := io.ReadFull(u.file, chunk)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.Wrapf(err, "reading part %d", part)
		}
		chunk = chunk[:n]
		if u.md5 != nil {
			u.md5.Write(chunk)
		}

		if err := u.enqueue(ctx, parts, part, chunk); err != nil {
			return err
		}

		sent += int64(n)
		if u.progress != nil {
			if err := u.progress(min(sent, u.size), u.size); err != nil {
				return err
			}
		}
	}
	return nil
}

// sendPart reads and enqueues a single part, nothing else of the file.
func (u *upload) sendPart(ctx context.Context, parts chan<- tl.Object, part int32) error {
	if part < 0 || part >= u.totalParts {
		return errors.Errorf("part %d out of range, the file has %d", part, u.totalParts)
	}
	chunk := make([]byte, uploadPartSize)
	n, err := u.file.ReadAt(chunk, int64(part)*uploadPartSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "reading part %d", part)
	}
	return u.enqueue(ctx, parts, part, chunk[:n])
}

func (u *upload) enqueue(ctx context.Context, parts chan<- tl.Object, part int32, chunk []byte) error {
	var req tl.Object
	if u.big {
		req = &UploadSaveBigFilePartParams{
			FileID:         u.fileID,
			FilePart:       part,
			FileTotalParts: u.totalParts,
			Bytes:          chunk,
		}
	} else {
		req = &UploadSaveFilePartParams{
			FileID:   u.fileID,
			FilePart: part,
			Bytes:    chunk,
		}
	}

	select {
	case parts <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
