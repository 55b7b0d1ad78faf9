// Copyright (c) 2024 RoseLoverX

package transport

import (
	"context"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type tcpConn struct {
	reader  *Reader
	conn    net.Conn
	timeout time.Duration
}

type TCPConnConfig struct {
	Ctx     context.Context
	Host    string
	IpV6    bool
	Timeout time.Duration
	// Proxy is a socks5:// or http:// URL, nil for a direct connection
	Proxy *url.URL
}

func NewTCP(cfg TCPConnConfig) (Conn, error) {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}

	var (
		conn net.Conn
		err  error
	)
	if cfg.Proxy != nil && cfg.Proxy.Host != "" {
		conn, err = dialProxy(cfg.Ctx, cfg.Proxy, cfg.Host)
	} else {
		conn, err = dialDirect(cfg)
	}
	if err != nil {
		return nil, err
	}

	return WrapConn(cfg.Ctx, conn, cfg.Timeout), nil
}

func dialDirect(cfg TCPConnConfig) (net.Conn, error) {
	network := "tcp4"
	if cfg.IpV6 && strings.HasPrefix(cfg.Host, "[") {
		network = "tcp6"
	}

	d := net.Dialer{Timeout: DefaultTimeout, KeepAlive: 15 * time.Second}
	conn, err := d.DialContext(cfg.Ctx, network, cfg.Host)
	// retry once after a timeout
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		select {
		case <-time.After(2 * time.Second):
		case <-cfg.Ctx.Done():
			return nil, cfg.Ctx.Err()
		}
		conn, err = d.DialContext(cfg.Ctx, network, cfg.Host)
	}
	if err != nil {
		return nil, errors.Wrap(err, "dialing tcp")
	}

	return conn, nil
}

// WrapConn turns an established connection into a Conn whose reads stop when
// ctx is done. timeout, if positive, bounds every read.
func WrapConn(ctx context.Context, conn net.Conn, timeout time.Duration) Conn {
	return &tcpConn{
		reader:  NewReader(ctx, conn),
		conn:    conn,
		timeout: timeout,
	}
}

func (t *tcpConn) Close() error {
	t.reader.Close()
	return t.conn.Close()
}

func (t *tcpConn) Write(b []byte) (int, error) {
	return t.conn.Write(b)
}

func (t *tcpConn) Read(b []byte) (int, error) {
	if t.timeout > 0 {
		err := t.conn.SetReadDeadline(time.Now().Add(t.timeout))
		if err != nil {
			return 0, errors.Wrap(err, "setting read deadline")
		}
	}

	n, err := t.reader.Read(b)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return n, errors.Wrap(err, "required to reconnect!")
		}
		switch err {
		case io.EOF, io.ErrUnexpectedEOF, io.ErrClosedPipe, net.ErrClosed, context.Canceled:
			return n, err
		default:
			return n, errors.Wrap(err, "unexpected error")
		}
	}
	return n, nil
}
