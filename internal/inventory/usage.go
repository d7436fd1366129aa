package inventory

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsv1beta1client "k8s.io/metrics/pkg/client/clientset/versioned/typed/metrics/v1beta1"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/snapshot"
)

// apiGroupMetrics is the API group served by metrics-server.
const apiGroupMetrics = "metrics.k8s.io"

// MetricsAPI abstracts the metrics-server API for testability.
type MetricsAPI interface {
	ListNodeMetrics(ctx context.Context) ([]metricsv1beta1.NodeMetrics, error)
}

// metricsAPIClient wraps the real metrics client to implement MetricsAPI.
type metricsAPIClient struct {
	client metricsv1beta1client.MetricsV1beta1Interface
}

// NewMetricsAPI wraps a metrics.k8s.io client.
func NewMetricsAPI(client metricsv1beta1client.MetricsV1beta1Interface) MetricsAPI {
	return &metricsAPIClient{client: client}
}

func (c *metricsAPIClient) ListNodeMetrics(ctx context.Context) ([]metricsv1beta1.NodeMetrics, error) {
	list, err := c.client.NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// HasMetricsAPI reports whether the metrics.k8s.io group is registered.
func HasMetricsAPI(discoveryClient discovery.DiscoveryInterface) (bool, error) {
	groups, err := discoveryClient.ServerGroups()
	if err != nil {
		return false, fmt.Errorf("discovery: failed to list server groups: %w", err)
	}

	for _, g := range groups.Groups {
		if g.Name == apiGroupMetrics {
			return true, nil
		}
	}
	return false, nil
}

// nodeUsage reads live CPU (millicores) and memory (bytes) per node.
func nodeUsage(ctx context.Context, api MetricsAPI) (map[string]snapshot.NodeUsage, error) {
	list, err := api.ListNodeMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list node metrics: %w", err)
	}

	out := make(map[string]snapshot.NodeUsage, len(list))
	for i := range list {
		nm := &list[i]
		cpu := nm.Usage[corev1.ResourceCPU]
		mem := nm.Usage[corev1.ResourceMemory]
		out[nm.Name] = snapshot.NodeUsage{
			CPUMillicores: cpu.MilliValue(),
			MemoryBytes:   mem.Value(),
		}
	}
	return out, nil
}
