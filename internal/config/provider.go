package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lineserve/lineserve/internal/core"
	"github.com/lineserve/lineserve/internal/logger"
)

// Provider yields the current configuration snapshot. When forceReload is
// true and the snapshot enables reread_on_query, the backing source is
// re-resolved; otherwise a cached snapshot may be returned.
type Provider interface {
	Current(ctx context.Context, forceReload bool) (Snapshot, error)
}

// FileProvider resolves snapshots from a config file, LINESERVE_* environment
// variables, and optional CLI flag overrides (flags > env > file > defaults).
// A failed reload falls back to the last-known-good snapshot.
type FileProvider struct {
	v *viper.Viper

	mu   sync.RWMutex
	last Snapshot
}

// NewFileProvider builds a provider and performs the initial load. An
// unreadable or invalid configuration is fatal here, at startup; later
// reload failures are recoverable per query.
func NewFileProvider(flags *pflag.FlagSet) (*FileProvider, error) {
	v := viper.New()

	// Default values
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 44445)
	v.SetDefault("search_file", "")
	v.SetDefault("reread_on_query", true)
	v.SetDefault("read_timeout", DefaultReadTimeout)
	v.SetDefault("max_query_bytes", DefaultMaxQueryBytes)
	v.SetDefault("health_port", 0)

	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.mode", string(TLSModeFile))
	v.SetDefault("tls.namespace", "default")
	v.SetDefault("tls.min_version", "1.2")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)

	// Environment variables
	v.SetEnvPrefix("LINESERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("tls.enabled", "LINESERVE_TLS_ENABLED")
	_ = v.BindEnv("tls.mode", "LINESERVE_TLS_MODE")
	_ = v.BindEnv("tls.cert_file", "LINESERVE_TLS_CERT_FILE")
	_ = v.BindEnv("tls.key_file", "LINESERVE_TLS_KEY_FILE")
	_ = v.BindEnv("tls.secret_name", "LINESERVE_TLS_SECRET_NAME")
	_ = v.BindEnv("tls.namespace", "LINESERVE_TLS_NAMESPACE")
	_ = v.BindEnv("tls.kubeconfig", "LINESERVE_TLS_KUBECONFIG")
	_ = v.BindEnv("tls.min_version", "LINESERVE_TLS_MIN_VERSION")
	_ = v.BindEnv("log.level", "LINESERVE_LOG_LEVEL")
	_ = v.BindEnv("log.file", "LINESERVE_LOG_FILE")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("host", flags.Lookup("host"))
		_ = v.BindPFlag("port", flags.Lookup("port"))
		_ = v.BindPFlag("search_file", flags.Lookup("search-file"))
		_ = v.BindPFlag("reread_on_query", flags.Lookup("reread-on-query"))
		_ = v.BindPFlag("read_timeout", flags.Lookup("read-timeout"))
		_ = v.BindPFlag("max_query_bytes", flags.Lookup("max-query-bytes"))
		_ = v.BindPFlag("health_port", flags.Lookup("health-port"))
		_ = v.BindPFlag("tls.enabled", flags.Lookup("tls-enabled"))
		_ = v.BindPFlag("tls.mode", flags.Lookup("tls-mode"))
		_ = v.BindPFlag("tls.cert_file", flags.Lookup("tls-cert-file"))
		_ = v.BindPFlag("tls.key_file", flags.Lookup("tls-key-file"))
		_ = v.BindPFlag("tls.secret_name", flags.Lookup("tls-secret-name"))
		_ = v.BindPFlag("tls.namespace", flags.Lookup("tls-namespace"))
		_ = v.BindPFlag("tls.kubeconfig", flags.Lookup("tls-kubeconfig"))
		_ = v.BindPFlag("tls.min_version", flags.Lookup("tls-min-version"))
		_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
		_ = v.BindPFlag("log.file", flags.Lookup("log-file"))

		if cf := flags.Lookup("config"); cf != nil && cf.Value.String() != "" {
			v.SetConfigFile(cf.Value.String())
		}
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("lineserve")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/lineserve")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; flags and env may carry everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config: %v", core.ErrConfig, err)
		}
	}

	p := &FileProvider{v: v}
	snap, err := p.resolve()
	if err != nil {
		return nil, err
	}
	p.last = snap
	return p, nil
}

// Current returns a configuration snapshot. With forceReload and
// reread_on_query enabled, the backing file is re-read; if that fails the
// last-known-good snapshot is returned and the failure is logged.
func (p *FileProvider) Current(ctx context.Context, forceReload bool) (Snapshot, error) {
	p.mu.RLock()
	cached := p.last
	p.mu.RUnlock()

	if !forceReload || !cached.RereadOnQuery {
		return cached, nil
	}

	// Viper is not safe for concurrent use, so the whole re-read runs under
	// the write lock; callers serialized behind a reload pick up its result.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Warn("Config reload failed, using last-known-good snapshot", "error", err)
			return p.last, nil
		}
	}

	snap, err := p.resolve()
	if err != nil {
		logger.Warn("Config reload produced invalid settings, using last-known-good snapshot", "error", err)
		return p.last, nil
	}

	p.last = snap
	return snap, nil
}

func (p *FileProvider) resolve() (Snapshot, error) {
	var snap Snapshot
	if err := p.v.Unmarshal(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: failed to parse config: %v", core.ErrConfig, err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", core.ErrConfig, err)
	}
	return snap, nil
}

// StaticProvider serves a fixed snapshot. Used by tests and embedders.
type StaticProvider struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStaticProvider returns a provider that always yields snap.
func NewStaticProvider(snap Snapshot) *StaticProvider {
	return &StaticProvider{snap: snap}
}

func (p *StaticProvider) Current(ctx context.Context, forceReload bool) (Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap, nil
}

// Set replaces the served snapshot. Handlers that already hold the previous
// snapshot keep observing it unchanged.
func (p *StaticProvider) Set(snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = snap
}
