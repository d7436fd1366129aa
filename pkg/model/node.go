package model

// GPUTypeNone is reported when no GPU type label is present on a node.
const GPUTypeNone = "N/A"

// NodeDetail represents one node's capacity, allocatable headroom and the
// usage attributed to it by the pods scheduled there.
//
// The *Used* fields are sums of pod requests, never limits.
type NodeDetail struct {
	Name    string `json:"name"`
	GPUType string `json:"gpu_type"`

	GPUTotal       int64 `json:"gpu_total"`
	GPUAllocatable int64 `json:"gpu_allocatable"`
	GPUUsed        int64 `json:"gpu_used"`

	CPUTotalMillicores       int64 `json:"cpu_total_millicores"`
	CPUAllocatableMillicores int64 `json:"cpu_allocatable_millicores"`
	CPUUsedMillicores        int64 `json:"cpu_used_millicores"`

	MemoryTotalBytes       int64 `json:"memory_total_bytes"`
	MemoryAllocatableBytes int64 `json:"memory_allocatable_bytes"`
	MemoryUsedBytes        int64 `json:"memory_used_bytes"`

	// Live usage from metrics-server. Only set when usage metrics are enabled
	// and the metrics API answered.
	CPUUsageMillicores *int64 `json:"cpu_usage_millicores,omitempty"`
	MemoryUsageBytes   *int64 `json:"memory_usage_bytes,omitempty"`

	Labels          map[string]string `json:"labels"`
	Pods            []PodDetail       `json:"pods"`
	ConditionsReady bool              `json:"conditions_ready"`
	OS              string            `json:"os"`
	Arch            string            `json:"arch"`
	KubeletVersion  string            `json:"kubelet_version"`
}
