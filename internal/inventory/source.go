package inventory

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/errors"
	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// InClusterName is the context name reported when the dashboard runs inside
// a cluster without a kubeconfig.
const InClusterName = "in-cluster"

// Source enumerates cluster contexts and opens providers for them.
type Source interface {
	// Clusters lists every known context, sorted by name.
	Clusters() ([]model.ClusterInfo, error)
	// Resolve maps a requested context name to a concrete one. An empty
	// name selects the active context.
	Resolve(name string) (string, error)
	// NewProvider opens a provider for a resolved context name.
	NewProvider(name string) (Provider, error)
}

// KubeconfigOptions configures a KubeconfigSource.
type KubeconfigOptions struct {
	// Kubeconfig is an explicit kubeconfig path. Empty uses the client-go
	// default loading rules ($KUBECONFIG, then ~/.kube/config).
	Kubeconfig string
	// DefaultContext overrides the kubeconfig current-context.
	DefaultContext string
	Timeout        time.Duration
	UsageMetrics   bool
}

// KubeconfigSource reads contexts from kubeconfig files and falls back to the
// in-cluster service account when no context is configured.
type KubeconfigSource struct {
	opts      KubeconfigOptions
	rules     *clientcmd.ClientConfigLoadingRules
	inCluster func() (*rest.Config, error)
}

// NewKubeconfigSource creates a source from opts.
func NewKubeconfigSource(opts KubeconfigOptions) *KubeconfigSource {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		rules.ExplicitPath = opts.Kubeconfig
	}
	return &KubeconfigSource{
		opts:      opts,
		rules:     rules,
		inCluster: rest.InClusterConfig,
	}
}

// contexts returns the sorted context names and the active one.
func (s *KubeconfigSource) contexts() ([]string, string, error) {
	raw, err := s.rules.Load()
	if err != nil {
		return nil, "", fmt.Errorf("load kubeconfig: %w", err)
	}

	names := make([]string, 0, len(raw.Contexts))
	for name := range raw.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	active := raw.CurrentContext
	if s.opts.DefaultContext != "" {
		active = s.opts.DefaultContext
	}
	return names, active, nil
}

// Clusters implements Source.
func (s *KubeconfigSource) Clusters() ([]model.ClusterInfo, error) {
	names, active, err := s.contexts()
	if err != nil {
		return nil, errors.ConnectionConfig("", err)
	}

	if len(names) == 0 {
		if _, err := s.inCluster(); err != nil {
			return nil, errors.ConnectionConfig("", fmt.Errorf("no kubeconfig contexts and not running in a cluster: %w", err))
		}
		return []model.ClusterInfo{{Name: InClusterName, IsActive: true}}, nil
	}

	out := make([]model.ClusterInfo, 0, len(names))
	for _, name := range names {
		out = append(out, model.ClusterInfo{Name: name, IsActive: name == active})
	}
	return out, nil
}

// Resolve implements Source.
func (s *KubeconfigSource) Resolve(name string) (string, error) {
	names, active, err := s.contexts()
	if err != nil {
		return "", errors.ConnectionConfig(name, err)
	}

	if len(names) == 0 {
		if name == "" || name == InClusterName {
			if _, err := s.inCluster(); err != nil {
				return "", errors.ConnectionConfig(name, err)
			}
			return InClusterName, nil
		}
		return "", errors.UnknownCluster(name)
	}

	if name == "" {
		if active == "" {
			return "", errors.ConnectionConfig("", fmt.Errorf("kubeconfig has no current-context"))
		}
		name = active
	}
	i := sort.SearchStrings(names, name)
	if i == len(names) || names[i] != name {
		return "", errors.UnknownCluster(name)
	}
	return name, nil
}

// NewProvider implements Source.
func (s *KubeconfigSource) NewProvider(name string) (Provider, error) {
	restCfg, err := s.restConfig(name)
	if err != nil {
		return nil, errors.ConnectionConfig(name, err)
	}
	restCfg.Timeout = s.opts.Timeout

	client, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, errors.ConnectionConfig(name, fmt.Errorf("create client: %w", err))
	}

	var usage MetricsAPI
	if s.opts.UsageMetrics {
		usage = s.metricsAPI(name, client, restCfg)
	}
	return NewKubeProvider(client, usage, s.opts.Timeout), nil
}

func (s *KubeconfigSource) restConfig(name string) (*rest.Config, error) {
	if name == InClusterName {
		return s.inCluster()
	}
	cc := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(s.rules, &clientcmd.ConfigOverrides{CurrentContext: name})
	return cc.ClientConfig()
}

// metricsAPI returns nil when metrics-server is absent or unreachable.
func (s *KubeconfigSource) metricsAPI(name string, client kubernetes.Interface, restCfg *rest.Config) MetricsAPI {
	ok, err := HasMetricsAPI(client.Discovery())
	if err != nil {
		slog.Warn("metrics API discovery failed", "cluster", name, "error", err)
		return nil
	}
	if !ok {
		slog.Info("metrics.k8s.io not served, live usage disabled", "cluster", name)
		return nil
	}
	mc, err := metricsclient.NewForConfig(restCfg)
	if err != nil {
		slog.Warn("create metrics client", "cluster", name, "error", err)
		return nil
	}
	return NewMetricsAPI(mc.MetricsV1beta1())
}
