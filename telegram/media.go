// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	mtproto "github.com/roseloverx/mtproto"
)

type DownloadOptions struct {
	// FileName is the destination. A name without a directory goes to
	// "downloads", a directory without a name gets a generated name.
	FileName string
	// Size of the file, for progress reports only.
	Size int64
	// MimeType picks the extension of a generated name.
	MimeType string
	// Date is stamped into a generated name, now when zero.
	Date     time.Time
	Progress ProgressFunc
}

type downloadJob struct {
	ctx      context.Context
	fileID   *FileID
	dir      string
	name     string
	size     int64
	progress ProgressFunc
	done     chan downloadResult
}

type downloadResult struct {
	path string
	err  error
}

// DownloadMedia downloads the file behind fileID through the download
// workers and returns the absolute path it was saved to. A stopped
// transfer returns "" and a nil error.
func (c *Client) DownloadMedia(ctx context.Context, fileID string, opts *DownloadOptions) (string, error) {
	if opts == nil {
		opts = &DownloadOptions{}
	}
	fid, err := DecodeFileID(fileID)
	if err != nil {
		return "", err
	}
	if !c.running.Load() {
		return "", &mtproto.InvalidStateError{Op: "download media", State: mtproto.StateStopped}
	}

	dir, name := filepath.Split(opts.FileName)
	if dir == "" {
		dir = defaultDownloadDir
	}
	if name == "" {
		name = generatedFileName(fid.Type, opts.MimeType, opts.Date)
	}

	job := &downloadJob{
		ctx:      ctx,
		fileID:   fid,
		dir:      dir,
		name:     name,
		size:     opts.Size,
		progress: opts.Progress,
		done:     make(chan downloadResult, 1),
	}
	if !c.downloads.Push(job) {
		return "", &mtproto.InvalidStateError{Op: "download media", State: mtproto.StateStopping}
	}

	select {
	case res := <-job.done:
		return res.path, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// generatedFileName is <type>_<date>_<random><ext>, the extension guessed
// from the media type and mime type.
func generatedFileName(t MediaType, mime string, date time.Time) string {
	if date.IsZero() {
		date = time.Now()
	}
	return fmt.Sprintf("%s_%s_%d%s", t, date.Format("2006-01-02_15-04-05"), randomLong(), mediaExt(t, mime))
}

func mediaExt(t MediaType, mime string) string {
	guessed := mimeTypes.Ext(mime)
	or := func(fallback string) string {
		if guessed != "" {
			return guessed
		}
		return fallback
	}

	switch t {
	case MediaVoice:
		return ".ogg"
	case MediaVideo, MediaGif, MediaVideoNote:
		return or(".mp4")
	case MediaDocument:
		return or(".unknown")
	case MediaSticker:
		return ".webp"
	case MediaAudio:
		return or(".mp3")
	}
	return ".jpg"
}

func (c *Client) downloadWorker(ctx context.Context) {
	defer c.downloadWG.Done()

	for {
		job, ok := c.downloads.Pop(ctx)
		if !ok || job == nil {
			return
		}
		path, err := c.runDownload(job)
		job.done <- downloadResult{path: path, err: err}
	}
}

func (c *Client) runDownload(job *downloadJob) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("download of %s panicked: %v", job.name, r)
			c.Log.Error(err)
		}
	}()

	scratch, err := c.GetFile(job.ctx, int(job.fileID.DcID), job.fileID.Location(), job.size, job.progress)
	if err != nil {
		c.Log.WithError(err).Errorf("downloading %s", job.name)
		return "", err
	}
	if scratch == "" {
		return "", nil
	}

	if err := os.MkdirAll(job.dir, 0o755); err != nil {
		os.Remove(scratch)
		return "", errors.Wrap(err, "creating download directory")
	}
	final, err := filepath.Abs(filepath.Join(job.dir, job.name))
	if err != nil {
		os.Remove(scratch)
		return "", errors.Wrap(err, "resolving download path")
	}
	if err := moveFile(scratch, final); err != nil {
		os.Remove(scratch)
		return "", err
	}
	c.Log.Debugf("downloaded %s", final)
	return final, nil
}

// moveFile renames src to dst, copying when they are on different
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening downloaded file")
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "creating destination file")
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return errors.Wrap(err, "copying downloaded file")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "closing destination file")
	}
	return os.Remove(src)
}
