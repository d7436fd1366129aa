package model

// Pod phases. PhaseUnknown is also used when the API reports no phase.
const (
	PhaseRunning   = "Running"
	PhasePending   = "Pending"
	PhaseSucceeded = "Succeeded"
	PhaseFailed    = "Failed"
	PhaseUnknown   = "Unknown"
)

// OwnerNone is the owner kind reported for pods without owner references.
const OwnerNone = "None"

// PodDetail is one pod's resource footprint and identity.
// Request and limit figures are summed over every container in the pod spec.
type PodDetail struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	NodeName  string `json:"node_name,omitempty"`
	OwnerKind string `json:"owner_kind"`
	OwnerName string `json:"owner_name"`
	Phase     string `json:"phase"`

	GPURequest           int64 `json:"gpu_request"`
	GPULimit             int64 `json:"gpu_limit"`
	CPURequestMillicores int64 `json:"cpu_request_millicores"`
	CPULimitMillicores   int64 `json:"cpu_limit_millicores"`
	MemoryRequestBytes   int64 `json:"memory_request_bytes"`
	MemoryLimitBytes     int64 `json:"memory_limit_bytes"`

	Containers []ContainerStatus `json:"containers"`
	CreatedAt  *string           `json:"created_at"`
	IP         *string           `json:"ip"`
	QoSClass   *string           `json:"qos_class"`
	Labels     map[string]string `json:"labels"`
}
