// Package factory selects concrete implementations from configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/lineserve/lineserve/internal/config"
	"github.com/lineserve/lineserve/internal/core"
	"github.com/lineserve/lineserve/internal/logger"
	"github.com/lineserve/lineserve/internal/storage/filesystem"
	"github.com/lineserve/lineserve/internal/storage/kubernetes"
	"github.com/lineserve/lineserve/internal/storage/memory"
)

// TLSFactory creates TLS providers based on configuration
type TLSFactory struct {
	settings config.TLSSettings
}

// NewTLSFactory creates a new TLS factory
func NewTLSFactory(settings config.TLSSettings) *TLSFactory {
	return &TLSFactory{settings: settings}
}

// Create creates a TLS provider based on the configured mode.
func (f *TLSFactory) Create(ctx context.Context) (core.TLSProvider, error) {
	switch f.settings.Mode {
	case config.TLSModeFile:
		logger.Info("Creating file-based TLS provider",
			"cert", f.settings.CertFile,
			"key", f.settings.KeyFile)
		return filesystem.NewTLSProvider(f.settings.CertFile, f.settings.KeyFile), nil

	case config.TLSModeKubernetes:
		logger.Info("Creating Kubernetes TLS provider",
			"namespace", f.settings.Namespace,
			"secret", f.settings.SecretName)
		clientset, err := kubernetes.NewClientset(f.settings.Kubeconfig, f.settings.Context)
		if err != nil {
			return nil, fmt.Errorf("kubernetes TLS mode: %w", err)
		}
		return kubernetes.NewTLSProvider(clientset, f.settings.Namespace, f.settings.SecretName), nil

	case config.TLSModeMemory:
		logger.Info("Creating memory TLS provider")
		return memory.NewTLSProvider(), nil

	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", f.settings.Mode)
	}
}
