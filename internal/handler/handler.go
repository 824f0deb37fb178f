// Package handler drives a single accepted connection from handshake to
// close: one query in, one response out.
package handler

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/lineserve/lineserve/internal/config"
	"github.com/lineserve/lineserve/internal/core"
	"github.com/lineserve/lineserve/internal/logger"
	"github.com/lineserve/lineserve/internal/protocol"
	"github.com/lineserve/lineserve/internal/search"
)

// QueryHandler implements core.ConnectionHandler. Each connection gets a
// fresh configuration snapshot, an optional TLS upgrade, a deadline-bounded
// query read, one search, and one response line. The connection is closed on
// every exit path; no error here ever reaches the accept loop or another
// connection.
type QueryHandler struct {
	Config   config.Provider
	Searcher search.Searcher
	TLS      core.TLSProvider // consulted only when the snapshot enables TLS
}

// HandleConnection implements core.ConnectionHandler.
// It takes full ownership of the connection lifecycle.
func (h *QueryHandler) HandleConnection(conn net.Conn) {
	defer conn.Close()
	start := time.Now()
	ctx := context.Background()

	snap, err := h.Config.Current(ctx, false)
	if err != nil {
		logger.Error("No usable configuration for connection", "remote_addr", conn.RemoteAddr(), "error", err)
		writeLine(conn, protocol.ErrorPrefix+"server configuration unavailable")
		return
	}

	// One deadline covers handshake, read, and response so a stalled or
	// protocol-incompatible client cannot hang the handler.
	if snap.ReadTimeout > 0 {
		_ = conn.SetDeadline(start.Add(snap.ReadTimeout))
	}

	if snap.TLS.Enabled {
		tlsConn, err := h.upgrade(ctx, conn, snap)
		if err != nil {
			logger.Warn("TLS handshake failed", "remote_addr", conn.RemoteAddr(), "error", err)
			return
		}
		conn = tlsConn
	}

	query, err := h.readQuery(conn, snap)
	if err != nil {
		h.reject(conn, err, start)
		return
	}

	// Re-resolve so the search observes the latest accepted configuration
	// when reread_on_query is on.
	snap, err = h.Config.Current(ctx, true)
	if err != nil {
		writeLine(conn, protocol.ErrorPrefix+"server configuration unavailable")
		logger.Error("Config resolution failed", "remote_addr", conn.RemoteAddr(), "error", err)
		return
	}

	found, err := h.Searcher.Search(ctx, snap.SearchFile, query)
	if err != nil {
		writeLine(conn, protocol.ErrorPrefix+"search failed")
		logger.Error("Search failed",
			"remote_addr", conn.RemoteAddr(),
			"error", err,
			"latency", time.Since(start))
		return
	}

	resp, outcome := protocol.NotFound, "not_found"
	if found {
		resp, outcome = protocol.Exists, "found"
	}
	writeLine(conn, resp)

	latency := time.Since(start)
	logger.Info("Query completed", "outcome", outcome, "latency", latency, "remote_addr", conn.RemoteAddr())
	logger.Debug("Search query", "query", query, "result", resp, "latency", latency)
}

// upgrade wraps the raw socket using the certificate from the provider and
// the snapshot's protocol version policy.
func (h *QueryHandler) upgrade(ctx context.Context, conn net.Conn, snap config.Snapshot) (net.Conn, error) {
	if h.TLS == nil {
		return nil, errors.New("tls enabled but no certificate provider configured")
	}
	cert, err := h.TLS.GetCertificate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	tlsConn := tls.Server(conn, &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   snap.TLS.MinTLSVersion(),
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}

	state := tlsConn.ConnectionState()
	logger.Debug("TLS handshake complete",
		"protocol", tls.VersionName(state.Version),
		"cipher_suite", tls.CipherSuiteName(state.CipherSuite),
		"remote_addr", conn.RemoteAddr())
	return tlsConn, nil
}

// readQuery reads one newline-terminated line of at most MaxQueryBytes.
// EOF after a non-empty partial line is accepted as a complete query since
// some clients close the write side instead of sending a terminator.
func (h *QueryHandler) readQuery(conn net.Conn, snap config.Snapshot) (string, error) {
	maxBytes := snap.MaxQueryBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxQueryBytes
	}

	// +2 leaves room for CRLF on a maximum-length query.
	r := bufio.NewReaderSize(conn, maxBytes+2)
	line, err := r.ReadSlice('\n')
	switch {
	case err == nil:
	case errors.Is(err, bufio.ErrBufferFull):
		return "", core.ErrQueryTooLong
	case errors.Is(err, io.EOF) && len(line) > 0:
		// unterminated final line
	case errors.Is(err, io.EOF):
		return "", core.ErrConnectionClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return "", core.ErrReadTimeout
	default:
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return "", core.ErrReadTimeout
		}
		return "", fmt.Errorf("%w: %v", core.ErrConnectionClosed, err)
	}

	query := protocol.TrimLine(string(line))
	if len(query) > maxBytes {
		return "", core.ErrQueryTooLong
	}
	return query, nil
}

// reject handles read-stage failures. Malformed input gets an explicit
// rejection line; a timed-out or vanished peer just gets closed.
func (h *QueryHandler) reject(conn net.Conn, err error, start time.Time) {
	switch {
	case errors.Is(err, core.ErrQueryTooLong):
		writeLine(conn, protocol.ErrorPrefix+"query too long")
		logger.Warn("Rejected malformed query", "remote_addr", conn.RemoteAddr(), "error", err, "latency", time.Since(start))
	case errors.Is(err, core.ErrReadTimeout):
		logger.Warn("Read timed out", "remote_addr", conn.RemoteAddr(), "latency", time.Since(start))
	default:
		logger.Debug("Connection closed before query", "remote_addr", conn.RemoteAddr(), "error", err)
	}
}

// writeLine is best-effort: a peer that vanished before the response is not
// an error worth surfacing beyond debug logs.
func writeLine(conn net.Conn, line string) {
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		logger.Debug("Failed to write response", "remote_addr", conn.RemoteAddr(), "error", err)
	}
}
