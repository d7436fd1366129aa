package model

// Unit labels reported on ResourceStat.
const (
	UnitMillicores = "millicores"
	UnitBytes      = "bytes"
	UnitGPUs       = "GPUs"
	UnitPods       = "pods"
)

// ResourceStat is the cluster-wide rollup of one resource dimension.
// Available is Allocatable-Used and may be negative under overcommit.
type ResourceStat struct {
	Total              int64   `json:"total"`
	Allocatable        int64   `json:"allocatable"`
	Used               int64   `json:"used"`
	Available          int64   `json:"available"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Unit               string  `json:"unit"`
	TotalDisplay       string  `json:"total_display"`
	UsedDisplay        string  `json:"used_display"`
	AvailableDisplay   string  `json:"available_display"`
}

// GpuTypeStat is the GPU rollup for the nodes sharing one GPU type.
type GpuTypeStat struct {
	GPUType            string  `json:"gpu_type"`
	Total              int64   `json:"total"`
	Allocatable        int64   `json:"allocatable"`
	Used               int64   `json:"used"`
	Available          int64   `json:"available"`
	UtilizationPercent float64 `json:"utilization_percent"`
	NodeCount          int     `json:"node_count"`
}

// ClusterSummary is the top-level cluster report.
//
// Pods is degenerate: Allocatable, Used and Total all carry the number of
// pods attached to nodes and Available is always zero. EphemeralStorage is
// reserved and always zero-valued.
type ClusterSummary struct {
	CPU              ResourceStat  `json:"cpu"`
	Memory           ResourceStat  `json:"memory"`
	GPU              ResourceStat  `json:"gpu"`
	Pods             ResourceStat  `json:"pods"`
	EphemeralStorage ResourceStat  `json:"ephemeral_storage"`
	NodeCount        int           `json:"node_count"`
	ReadyNodeCount   int           `json:"ready_node_count"`
	GPUByType        []GpuTypeStat `json:"gpu_by_type"`

	// Pods without a node assignment, and pods bound to a node that is not in
	// the node list. Neither is part of Pods.
	UnscheduledPodCount int `json:"unscheduled_pod_count"`
	OrphanedPodCount    int `json:"orphaned_pod_count"`
}

// ClusterInfo names one available cluster context.
type ClusterInfo struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}
