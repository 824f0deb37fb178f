package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"

	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/lineserve/lineserve/internal/logger"
)

// NewClientset builds a Kubernetes client from an explicit kubeconfig path,
// falling back to $HOME/.kube/config and finally to in-cluster configuration.
func NewClientset(kubeconfig, kubeContext string) (*k8s.Clientset, error) {
	if kubeconfig == "" {
		if home, err := os.UserHomeDir(); err == nil {
			if candidate := filepath.Join(home, ".kube", "config"); fileExists(candidate) {
				kubeconfig = candidate
			}
		}
	}

	configOverrides := &clientcmd.ConfigOverrides{}
	if kubeContext != "" {
		configOverrides.CurrentContext = kubeContext
		logger.Info("Using specific Kubernetes context", "context", kubeContext)
	}

	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
			configOverrides,
		).ClientConfig()
		if err != nil {
			logger.Warn("Failed to load kubeconfig, will try in-cluster config", "error", err)
		}
	}

	if cfg == nil {
		logger.Info("Attempting in-cluster Kubernetes configuration")
		cfg, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to build kubernetes config (tried kubeconfig and in-cluster): %w", err)
		}
	}

	clientset, err := k8s.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return clientset, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
