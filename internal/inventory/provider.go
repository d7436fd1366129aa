// Package inventory fetches raw cluster inventory (nodes, pods and optional
// live usage) and manages one connection per cluster context.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/snapshot"
)

// listPageSize bounds a single List call; continue tokens fetch the rest.
const listPageSize = 500

// Inventory is one full, consistent-enough read of a cluster.
type Inventory struct {
	Nodes []corev1.Node
	Pods  []corev1.Pod
	// NodeUsage is keyed by node name. Nil when usage metrics are disabled
	// or metrics-server could not be reached.
	NodeUsage map[string]snapshot.NodeUsage
	// UsageErr is set when usage was requested but could not be read.
	UsageErr error
}

// Provider reads the current inventory of one cluster.
type Provider interface {
	Fetch(ctx context.Context) (*Inventory, error)
}

// KubeProvider reads inventory through the Kubernetes API.
type KubeProvider struct {
	client  kubernetes.Interface
	usage   MetricsAPI
	timeout time.Duration
}

// NewKubeProvider creates a provider over client. usage may be nil to skip
// metrics-server. A zero timeout leaves the caller's deadline alone.
func NewKubeProvider(client kubernetes.Interface, usage MetricsAPI, timeout time.Duration) *KubeProvider {
	return &KubeProvider{client: client, usage: usage, timeout: timeout}
}

// Fetch lists all nodes and all pods across namespaces concurrently. Either
// list failing fails the fetch. Usage is best effort and never fails it.
func (p *KubeProvider) Fetch(ctx context.Context) (*Inventory, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	inv := &Inventory{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		nodes, err := p.listNodes(gctx)
		if err != nil {
			return fmt.Errorf("list nodes: %w", err)
		}
		inv.Nodes = nodes
		return nil
	})
	g.Go(func() error {
		pods, err := p.listPods(gctx)
		if err != nil {
			return fmt.Errorf("list pods: %w", err)
		}
		inv.Pods = pods
		return nil
	})

	if p.usage != nil {
		g.Go(func() error {
			usage, err := nodeUsage(gctx, p.usage)
			if err != nil {
				slog.Warn("node usage unavailable", "error", err)
				inv.UsageErr = err
				return nil
			}
			inv.NodeUsage = usage
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (p *KubeProvider) listNodes(ctx context.Context) ([]corev1.Node, error) {
	var out []corev1.Node
	opts := metav1.ListOptions{Limit: listPageSize}
	for {
		list, err := p.client.CoreV1().Nodes().List(ctx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, list.Items...)
		if list.Continue == "" {
			return out, nil
		}
		opts.Continue = list.Continue
	}
}

func (p *KubeProvider) listPods(ctx context.Context) ([]corev1.Pod, error) {
	var out []corev1.Pod
	opts := metav1.ListOptions{Limit: listPageSize}
	for {
		list, err := p.client.CoreV1().Pods(metav1.NamespaceAll).List(ctx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, list.Items...)
		if list.Continue == "" {
			return out, nil
		}
		opts.Continue = list.Continue
	}
}
