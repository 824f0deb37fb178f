package app

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/pflag"

	"github.com/lineserve/lineserve/internal/api"
	"github.com/lineserve/lineserve/internal/config"
	"github.com/lineserve/lineserve/internal/core"
	"github.com/lineserve/lineserve/internal/factory"
	"github.com/lineserve/lineserve/internal/handler"
	"github.com/lineserve/lineserve/internal/logger"
	"github.com/lineserve/lineserve/internal/search"
)

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadConfig func(*pflag.FlagSet) (*config.FileProvider, error)
	NewTLS     func(context.Context, config.TLSSettings) (core.TLSProvider, error)
	Listen     func(addr string) (net.Listener, error)
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadConfig: config.NewFileProvider,
		NewTLS: func(ctx context.Context, s config.TLSSettings) (core.TLSProvider, error) {
			return factory.NewTLSFactory(s).Create(ctx)
		},
		Listen: func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
	}
}

// Run executes the server with production dependencies. It blocks until ctx
// is cancelled or the listener fails.
func Run(ctx context.Context, flags *pflag.FlagSet, version string) error {
	return RunWithDeps(ctx, DefaultRunParams(), flags, version)
}

// RunWithDeps loads configuration, wires the stack, binds the listener, and
// serves. A bind failure is the only fatal error class past startup
// validation; it is returned to the caller, not retried.
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	provider, err := params.LoadConfig(flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	snap, err := provider.Current(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to resolve configuration: %w", err)
	}

	closeLogs, err := logger.Setup(logger.Options{
		Level:      snap.Log.Level,
		File:       snap.Log.File,
		MaxSizeMB:  snap.Log.MaxSizeMB,
		MaxBackups: snap.Log.MaxBackups,
		MaxAgeDays: snap.Log.MaxAgeDays,
		Compress:   snap.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closeLogs() }()

	logger.Info("Starting lineserve",
		"version", version,
		"addr", snap.Addr(),
		"search_file", snap.SearchFile,
		"reread_on_query", snap.RereadOnQuery,
		"tls_enabled", snap.TLS.Enabled)

	var tlsProvider core.TLSProvider
	if snap.TLS.Enabled {
		tlsProvider, err = params.NewTLS(ctx, snap.TLS)
		if err != nil {
			return fmt.Errorf("failed to create TLS provider: %w", err)
		}
		// Fail fast on an unloadable certificate instead of surprising the
		// first client. Memory mode is exempt: its cert arrives at runtime.
		if snap.TLS.Mode != config.TLSModeMemory {
			if _, err := tlsProvider.GetCertificate(ctx); err != nil {
				return fmt.Errorf("failed to load TLS certificate: %w", err)
			}
		}
		logger.Info("TLS enabled and configured", "mode", snap.TLS.Mode, "min_version", snap.TLS.MinVersion)
	} else {
		logger.Warn("TLS is disabled - connections will not be encrypted")
	}

	var health *api.HealthServer
	if snap.HealthPort > 0 {
		health = api.NewHealthServer(fmt.Sprintf(":%d", snap.HealthPort))
		health.Start()
		defer func() { _ = health.Stop(context.Background()) }()
	}

	ln, err := params.Listen(snap.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", snap.Addr(), err)
	}

	server := &core.Server{
		Listener: ln,
		Handler: &handler.QueryHandler{
			Config:   provider,
			Searcher: &search.FileScanner{},
			TLS:      tlsProvider,
		},
	}

	if health != nil {
		health.SetReady(true)
	}
	logger.Info("Server listening", "addr", ln.Addr().String(), "tls", snap.TLS.Enabled)

	go func() {
		<-ctx.Done()
		_ = server.Shutdown()
	}()

	return server.Serve()
}
