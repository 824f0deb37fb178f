// Package protocol defines the line-oriented wire protocol shared by the
// server and the client: one newline-terminated query per connection,
// answered by exactly one newline-terminated response.
package protocol

import "strings"

// Response lines. Error responses carry ErrorPrefix followed by a reason.
const (
	Exists      = "STRING EXISTS"
	NotFound    = "STRING NOT FOUND"
	ErrorPrefix = "ERROR: "
)

// TrimLine strips the line terminator: a trailing \n and at most one
// immediately preceding \r. All other characters, including trailing
// whitespace, are preserved.
func TrimLine(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// IsError reports whether a response line signals a server-side failure.
func IsError(resp string) bool {
	return strings.HasPrefix(resp, ErrorPrefix)
}
