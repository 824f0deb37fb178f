package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"
)

// TLSMode selects the certificate source.
type TLSMode string

const (
	TLSModeFile       TLSMode = "file"
	TLSModeKubernetes TLSMode = "kubernetes"
	TLSModeMemory     TLSMode = "memory"
)

// Defaults for protocol bounds.
const (
	DefaultMaxQueryBytes = 1024
	DefaultReadTimeout   = 10 * time.Second
)

// TLSSettings configures the encrypted transport.
type TLSSettings struct {
	Enabled    bool    `mapstructure:"enabled"`
	Mode       TLSMode `mapstructure:"mode"`
	CertFile   string  `mapstructure:"cert_file"`
	KeyFile    string  `mapstructure:"key_file"`
	SecretName string  `mapstructure:"secret_name"`
	Namespace  string  `mapstructure:"namespace"`
	Kubeconfig string  `mapstructure:"kubeconfig"`
	Context    string  `mapstructure:"context"`
	MinVersion string  `mapstructure:"min_version"` // "1.2" or "1.3"
}

// LogSettings configures the logging sink.
type LogSettings struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Snapshot is an immutable point-in-time view of the server configuration.
// A snapshot handed to a connection handler is never mutated afterwards;
// reloads construct a fresh value.
type Snapshot struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	SearchFile    string        `mapstructure:"search_file"`
	RereadOnQuery bool          `mapstructure:"reread_on_query"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	MaxQueryBytes int           `mapstructure:"max_query_bytes"`
	HealthPort    int           `mapstructure:"health_port"` // 0 disables the health server
	TLS           TLSSettings   `mapstructure:"tls"`
	Log           LogSettings   `mapstructure:"log"`
}

// Addr returns the bind address in host:port form.
func (s Snapshot) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MinTLSVersion maps the configured policy string to a crypto/tls constant.
// Unrecognized values fall back to TLS 1.2.
func (t TLSSettings) MinTLSVersion() uint16 {
	switch t.MinVersion {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

// Validate ensures the snapshot is coherent. A search file path is always
// required; TLS settings are checked only when TLS is enabled.
func (s Snapshot) Validate() error {
	if s.SearchFile == "" {
		return errors.New("search_file must be set")
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port out of range: %d", s.Port)
	}
	if s.MaxQueryBytes <= 0 {
		return fmt.Errorf("max_query_bytes must be positive, got %d", s.MaxQueryBytes)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %s", s.ReadTimeout)
	}

	if s.TLS.Enabled {
		switch s.TLS.Mode {
		case TLSModeFile:
			if s.TLS.CertFile == "" || s.TLS.KeyFile == "" {
				return errors.New("tls.cert_file and tls.key_file must be set when tls.mode is 'file'")
			}
		case TLSModeKubernetes:
			if s.TLS.SecretName == "" {
				return errors.New("tls.secret_name must be set when tls.mode is 'kubernetes'")
			}
		case TLSModeMemory:
			// valid; certificate is stored at runtime
		default:
			return fmt.Errorf("unknown tls.mode: %s", s.TLS.Mode)
		}
		switch s.TLS.MinVersion {
		case "", "1.2", "1.3":
			// valid
		default:
			return fmt.Errorf("tls.min_version must be '1.2' or '1.3', got: %s", s.TLS.MinVersion)
		}
	}

	return nil
}
