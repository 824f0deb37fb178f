// Package client implements the lineserve wire protocol for callers that
// need to issue lookup queries: dial, send one line, read one line.
package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/lineserve/lineserve/internal/protocol"
)

// ErrServer is returned by Exists when the server answered with an explicit
// error line instead of a lookup result.
var ErrServer = errors.New("server error")

// Options configures a Client.
type Options struct {
	Address    string        // host:port of the lookup server
	UseTLS     bool          // wrap the connection in TLS
	ServerName string        // TLS server name; defaults to the dialed host
	Insecure   bool          // skip TLS certificate verification (self-signed setups)
	Timeout    time.Duration // dial + exchange deadline; zero means no deadline
}

// Client issues one-shot lookup queries. It is safe for concurrent use; each
// query opens its own connection, matching the one-query-per-connection
// protocol.
type Client struct {
	opts Options
}

func New(opts Options) *Client {
	return &Client{opts: opts}
}

// Query sends one query line and returns the server's raw response line
// with the terminator stripped.
func (c *Client) Query(ctx context.Context, query string) (string, error) {
	d := net.Dialer{Timeout: c.opts.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.opts.Address)
	if err != nil {
		return "", fmt.Errorf("failed to dial %s: %w", c.opts.Address, err)
	}
	defer conn.Close()

	if c.opts.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.opts.Timeout))
	}

	if c.opts.UseTLS {
		serverName := c.opts.ServerName
		if serverName == "" {
			serverName, _, _ = net.SplitHostPort(c.opts.Address)
		}
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: c.opts.Insecure,
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return "", fmt.Errorf("tls handshake with %s failed: %w", c.opts.Address, err)
		}
		conn = tlsConn
	}

	if _, err := conn.Write([]byte(query + "\n")); err != nil {
		return "", fmt.Errorf("failed to send query: %w", err)
	}

	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp == "" {
		return "", fmt.Errorf("connection closed without a response")
	}
	return protocol.TrimLine(resp), nil
}

// Exists reports whether the query matches a full line on the server.
// A server-side error line is surfaced as ErrServer with the reason.
func (c *Client) Exists(ctx context.Context, query string) (bool, error) {
	resp, err := c.Query(ctx, query)
	if err != nil {
		return false, err
	}
	switch {
	case resp == protocol.Exists:
		return true, nil
	case resp == protocol.NotFound:
		return false, nil
	case protocol.IsError(resp):
		return false, fmt.Errorf("%w: %s", ErrServer, resp)
	default:
		return false, fmt.Errorf("unexpected response: %q", resp)
	}
}
