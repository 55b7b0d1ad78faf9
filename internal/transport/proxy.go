// Copyright (c) 2024 RoseLoverX

package transport

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/proxy"
)

const DefaultTimeout = 5 * time.Second

func init() {
	proxy.RegisterDialerType("http", newHTTPDialer)
}

// dialProxy connects to address through the proxy described by u. socks5
// and http (CONNECT) schemes are understood.
func dialProxy(ctx context.Context, u *url.URL, address string) (net.Conn, error) {
	dialer, err := proxy.FromURL(u, &net.Dialer{Timeout: DefaultTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "proxy %s", u.Redacted())
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", address)
	}
	return dialer.Dial("tcp", address)
}

type httpDialer struct {
	proxyAddr string
	auth      string
	forward   proxy.Dialer
}

func newHTTPDialer(u *url.URL, forward proxy.Dialer) (proxy.Dialer, error) {
	d := &httpDialer{proxyAddr: u.Host, forward: forward}
	if u.User != nil && u.User.Username() != "" {
		password, _ := u.User.Password()
		d.auth = basicAuth(u.User.Username(), password)
	}
	return d, nil
}

func (d *httpDialer) Dial(network, addr string) (net.Conn, error) {
	conn, err := d.forward.Dial(network, d.proxyAddr)
	if err != nil {
		return nil, err
	}

	req := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n", addr, addr)
	if d.auth != "" {
		req += "Proxy-Authorization: Basic " + d.auth + "\r\n"
	}
	if _, err := conn.Write([]byte(req + "\r\n")); err != nil {
		conn.Close()
		return nil, err
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, &http.Request{Method: http.MethodConnect})
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "reading CONNECT response")
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("HTTP connect failed: %s", resp.Status)
	}
	if br.Buffered() > 0 {
		return &bufferedConn{Conn: conn, r: br}, nil
	}

	return conn, nil
}

// bufferedConn drains bytes read past the CONNECT response first.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(b []byte) (int, error) {
	return c.r.Read(b)
}

func basicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
