// Package dashboard runs the aggregation pipeline for one request: fetch a
// fresh inventory, join pods to nodes and roll the result up into a summary.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/convert"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/errors"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/inventory"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/observability"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/snapshot"
	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// Clients hands out inventory providers per cluster context.
// *inventory.Registry satisfies it.
type Clients interface {
	Clusters() ([]model.ClusterInfo, error)
	Get(name string) (string, inventory.Provider, error)
}

// Service exposes the three dashboard operations. Every call recomputes
// from a fresh inventory; nothing is cached between calls.
type Service struct {
	clients Clients
	conv    *convert.Converter
	metrics *observability.Metrics
	errs    *errors.ErrorCollector
}

// NewService wires the service. metrics and errs may be nil.
func NewService(clients Clients, conv *convert.Converter, metrics *observability.Metrics, errs *errors.ErrorCollector) *Service {
	return &Service{
		clients: clients,
		conv:    conv,
		metrics: metrics,
		errs:    errs,
	}
}

// ListClusters returns the known contexts and the name of the active one
// ("" when none is marked active).
func (s *Service) ListClusters(_ context.Context) ([]model.ClusterInfo, string, error) {
	clusters, err := s.clients.Clusters()
	if err != nil {
		s.report("", err)
		return nil, "", err
	}
	active := ""
	for _, c := range clusters {
		if c.IsActive {
			active = c.Name
			break
		}
	}
	return clusters, active, nil
}

// GetNodesWithPods returns every node of cluster, in inventory order, with
// its pods attached. An empty cluster name selects the active context.
func (s *Service) GetNodesWithPods(ctx context.Context, cluster string) ([]model.NodeDetail, error) {
	_, set, err := s.load(ctx, cluster)
	if err != nil {
		return nil, err
	}
	if set.Nodes == nil {
		return []model.NodeDetail{}, nil
	}
	return set.Nodes, nil
}

// GetClusterSummary returns the cluster-wide rollup for cluster.
func (s *Service) GetClusterSummary(ctx context.Context, cluster string) (model.ClusterSummary, error) {
	name, set, err := s.load(ctx, cluster)
	if err != nil {
		return model.ClusterSummary{}, err
	}
	summary := snapshot.ComputeSummary(set)
	s.recordSummary(name, &summary)
	return summary, nil
}

// IsReady reports whether the active context resolves and has no active
// error.
func (s *Service) IsReady() bool {
	name, _, err := s.clients.Get("")
	if err != nil {
		return false
	}
	return s.errs == nil || !s.errs.HasActive(name)
}

// load fetches and joins the inventory of cluster. Failures come back as
// typed *errors.Error values.
func (s *Service) load(ctx context.Context, cluster string) (string, *snapshot.NodeSet, error) {
	name, provider, err := s.clients.Get(cluster)
	if err != nil {
		s.report(cluster, err)
		return "", nil, err
	}

	start := time.Now()
	inv, err := provider.Fetch(ctx)
	if s.metrics != nil {
		s.metrics.InventoryFetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return name, nil, s.report(name, errors.Fetch(name, err))
	}
	if s.metrics != nil {
		s.metrics.InventoryObjects.WithLabelValues(name, "nodes").Set(float64(len(inv.Nodes)))
		s.metrics.InventoryObjects.WithLabelValues(name, "pods").Set(float64(len(inv.Pods)))
		if inv.UsageErr != nil {
			s.metrics.UsageFetchErrors.WithLabelValues(name).Inc()
		}
	}

	start = time.Now()
	set, err := snapshot.BuildNodes(s.conv, inv.Nodes, inv.Pods)
	if err != nil {
		return name, nil, s.report(name, errors.QuantityParse(name, err))
	}
	snapshot.MergeNodeUsage(set.Nodes, inv.NodeUsage)
	if s.metrics != nil {
		s.metrics.AggregationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}

	if s.errs != nil {
		s.errs.ResolveComponent(name)
	}
	slog.Debug("inventory aggregated", "cluster", name, "snapshot", set.String())
	return name, set, nil
}

// report logs err, counts it and, unless it is a caller mistake, records it
// as active for component. It returns err unchanged.
func (s *Service) report(component string, err error) error {
	code := errors.CodeOf(err)
	if code == errors.ErrUnknownCluster {
		slog.Debug("unknown cluster requested", "cluster", component)
		return err
	}

	slog.Error("dashboard request failed", "cluster", component, "code", code, "error", err)
	if s.metrics != nil {
		s.metrics.InventoryFetchErrors.WithLabelValues(component, string(code)).Inc()
	}
	if e, ok := errors.As(err); ok && s.errs != nil {
		s.errs.Report(*e)
	}
	return err
}

func (s *Service) recordSummary(cluster string, sum *model.ClusterSummary) {
	if s.metrics == nil {
		return
	}
	for resource, stat := range map[string]*model.ResourceStat{
		"cpu":    &sum.CPU,
		"memory": &sum.Memory,
		"gpu":    &sum.GPU,
		"pods":   &sum.Pods,
	} {
		s.metrics.ClusterAllocatable.WithLabelValues(cluster, resource).Set(float64(stat.Allocatable))
		s.metrics.ClusterUsed.WithLabelValues(cluster, resource).Set(float64(stat.Used))
		s.metrics.ClusterUtilization.WithLabelValues(cluster, resource).Set(stat.UtilizationPercent)
	}
	for _, g := range sum.GPUByType {
		s.metrics.GPUTypeUsed.WithLabelValues(cluster, g.GPUType).Set(float64(g.Used))
	}
}
