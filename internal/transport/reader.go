// Copyright (c) 2024 RoseLoverX

package transport

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Reader fills whole buffers from r and gives up as soon as its context is
// done, closing r to unblock a pending read.
type Reader struct {
	r      io.Reader
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

func NewReader(ctx context.Context, r io.Reader) *Reader {
	ctx, cancel := context.WithCancel(ctx)
	c := &Reader{
		r:      r,
		ctx:    ctx,
		cancel: cancel,
	}

	go func() {
		<-c.ctx.Done()
		c.interrupt()
	}()

	return c
}

func (c *Reader) interrupt() {
	c.closeOnce.Do(func() {
		switch nc := c.r.(type) {
		case net.Conn:
			_ = nc.SetReadDeadline(time.Now())
			nc.Close()
		case io.Closer:
			nc.Close()
		}
	})
}

func (c *Reader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(c.r, p)
	if err != nil {
		if ctxErr := c.ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
		return n, err
	}
	return n, nil
}

// Close stops the reader; further reads fail with context.Canceled.
func (c *Reader) Close() error {
	if c.ctx.Err() != nil {
		return errors.New("reader is closed")
	}
	c.cancel()
	c.interrupt()
	return nil
}
