package core

import "errors"

// Per-connection and per-query error classes. All of them stay contained in
// the owning connection handler; the only fatal failure in the system is a
// bind error at startup, which is returned from app.Run as a plain wrapped
// net error.
var (
	// ErrReadTimeout means no complete query line arrived within the
	// configured read timeout.
	ErrReadTimeout = errors.New("timed out waiting for query")

	// ErrConnectionClosed means the peer disconnected before sending any
	// query bytes.
	ErrConnectionClosed = errors.New("connection closed before query")

	// ErrQueryTooLong means the query line exceeded the configured bound.
	ErrQueryTooLong = errors.New("query exceeds maximum length")

	// ErrFileAccess means the search file could not be opened or read.
	ErrFileAccess = errors.New("search file inaccessible")

	// ErrConfig means no usable configuration snapshot could be produced.
	ErrConfig = errors.New("configuration unavailable")
)
