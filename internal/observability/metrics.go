package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metrics for dashboard self-monitoring.
// It uses a custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Inventory metrics
	InventoryFetchDuration *prometheus.HistogramVec
	InventoryFetchErrors   *prometheus.CounterVec
	InventoryObjects       *prometheus.GaugeVec
	UsageFetchErrors       *prometheus.CounterVec

	// Aggregation metrics
	AggregationDuration *prometheus.HistogramVec

	// Cluster figures from the latest summary, per cluster and resource.
	ClusterAllocatable *prometheus.GaugeVec
	ClusterUsed        *prometheus.GaugeVec
	ClusterUtilization *prometheus.GaugeVec
	GPUTypeUsed        *prometheus.GaugeVec

	// Registry metrics
	ClientRegistrySize  prometheus.Gauge
	ClientRegistryEvent *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all Prometheus metrics
// registered on a custom registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_dashboard_http_requests_total",
			Help: "Total number of API requests.",
		}, []string{"route", "code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kubeadapt_dashboard_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		InventoryFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kubeadapt_dashboard_inventory_fetch_duration_seconds",
			Help:    "Duration of node and pod inventory fetches in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"cluster"}),
		InventoryFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_dashboard_inventory_fetch_errors_total",
			Help: "Total number of failed inventory fetches.",
		}, []string{"cluster", "code"}),
		InventoryObjects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kubeadapt_dashboard_inventory_objects",
			Help: "Number of objects returned by the latest inventory fetch.",
		}, []string{"cluster", "resource"}),
		UsageFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_dashboard_usage_fetch_errors_total",
			Help: "Total number of failed metrics-server usage fetches.",
		}, []string{"cluster"}),

		AggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kubeadapt_dashboard_aggregation_duration_seconds",
			Help:    "Duration of node/pod aggregation in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"cluster"}),

		ClusterAllocatable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kubeadapt_dashboard_cluster_allocatable",
			Help: "Allocatable amount per resource in the latest summary (millicores, bytes, GPUs).",
		}, []string{"cluster", "resource"}),
		ClusterUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kubeadapt_dashboard_cluster_requested",
			Help: "Requested amount per resource in the latest summary (millicores, bytes, GPUs).",
		}, []string{"cluster", "resource"}),
		ClusterUtilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kubeadapt_dashboard_cluster_utilization_percent",
			Help: "Requested/allocatable percentage per resource in the latest summary.",
		}, []string{"cluster", "resource"}),
		GPUTypeUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kubeadapt_dashboard_gpu_type_requested",
			Help: "Requested GPUs per GPU type in the latest summary.",
		}, []string{"cluster", "gpu_type"}),

		ClientRegistrySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kubeadapt_dashboard_client_registry_size",
			Help: "Number of live cluster connections in the registry.",
		}),
		ClientRegistryEvent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_dashboard_client_registry_events_total",
			Help: "Connection registry events (hit, miss, evict, purge).",
		}, []string{"event"}),
	}

	// Register all metrics with the custom registry.
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.InventoryFetchDuration,
		m.InventoryFetchErrors,
		m.InventoryObjects,
		m.UsageFetchErrors,
		m.AggregationDuration,
		m.ClusterAllocatable,
		m.ClusterUsed,
		m.ClusterUtilization,
		m.GPUTypeUsed,
		m.ClientRegistrySize,
		m.ClientRegistryEvent,
	)

	return m
}

// WithRuntimeCollectors adds the Go runtime and process collectors to the
// registry. Kept separate so unit tests can assert on an exact metric set.
func (m *Metrics) WithRuntimeCollectors() *Metrics {
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
