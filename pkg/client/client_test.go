package client

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineserve/lineserve/internal/protocol"
)

// stubServer answers every connection with a fixed response line.
func stubServer(t *testing.T, response string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				_, _ = bufio.NewReader(conn).ReadString('\n')
				_, _ = conn.Write([]byte(response + "\n"))
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestQuery_ReturnsTrimmedResponse(t *testing.T) {
	addr := stubServer(t, protocol.Exists)

	c := New(Options{Address: addr, Timeout: 2 * time.Second})
	resp, err := c.Query(context.Background(), "some line")
	require.NoError(t, err)
	assert.Equal(t, protocol.Exists, resp)
}

func TestExists(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
		wantErr  error
	}{
		{name: "match", response: protocol.Exists, want: true},
		{name: "no match", response: protocol.NotFound, want: false},
		{name: "server error", response: protocol.ErrorPrefix + "file unavailable", wantErr: ErrServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := stubServer(t, tt.response)

			c := New(Options{Address: addr, Timeout: 2 * time.Second})
			got, err := c.Exists(context.Background(), "query")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExists_UnexpectedResponse(t *testing.T) {
	addr := stubServer(t, "GARBAGE")

	c := New(Options{Address: addr, Timeout: 2 * time.Second})
	_, err := c.Exists(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response")
}

func TestQuery_DialFailure(t *testing.T) {
	// A closed listener's port refuses connections.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := New(Options{Address: addr, Timeout: time.Second})
	_, err = c.Query(context.Background(), "query")
	require.Error(t, err)
}

func TestQuery_ConnectionClosedWithoutResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	c := New(Options{Address: ln.Addr().String(), Timeout: 2 * time.Second})
	_, err = c.Query(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a response")
}

func TestQuery_UnterminatedResponseStillReturned(t *testing.T) {
	// A server that closes after writing a partial line still delivers it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				_, _ = bufio.NewReader(conn).ReadString('\n')
				_, _ = conn.Write([]byte(protocol.NotFound))
			}(conn)
		}
	}()

	c := New(Options{Address: ln.Addr().String(), Timeout: 2 * time.Second})
	resp, err := c.Query(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, protocol.NotFound, resp)
}
