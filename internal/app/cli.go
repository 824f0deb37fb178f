package app

import (
	"time"

	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Path to config file")
	flags.StringP("host", "H", "", "Bind host")
	flags.IntP("port", "p", 0, "Bind port")
	flags.StringP("search-file", "f", "", "Path to the line-per-entry search file")
	flags.Bool("reread-on-query", true, "Re-resolve configuration on every query")
	flags.Duration("read-timeout", time.Duration(0), "Per-connection query read timeout")
	flags.Int("max-query-bytes", 0, "Maximum query line length in bytes")
	flags.Int("health-port", 0, "Health endpoint port (0 disables)")
	flags.Bool("tls-enabled", false, "Serve TLS-wrapped TCP")
	flags.String("tls-mode", "", "Certificate source: file, kubernetes, or memory")
	flags.String("tls-cert-file", "", "TLS certificate PEM file")
	flags.String("tls-key-file", "", "TLS private key PEM file")
	flags.String("tls-secret-name", "", "Kubernetes TLS secret name")
	flags.String("tls-namespace", "", "Kubernetes namespace of the TLS secret")
	flags.String("tls-kubeconfig", "", "Kubeconfig path for the kubernetes TLS mode")
	flags.String("tls-min-version", "", "Minimum TLS protocol version: 1.2 or 1.3")
	flags.String("log-level", "", "Log level: debug, info, warn, or error")
	flags.String("log-file", "", "Rotating log file path (empty logs to stderr)")
}
