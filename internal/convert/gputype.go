package convert

import "github.com/kubeadapt/kubeadapt-dashboard/pkg/model"

// DefaultGPUResource is the extended resource name counted as GPUs.
const DefaultGPUResource = "nvidia.com/gpu"

// DefaultGPUTypeLabels is the ordered list of node labels consulted for the
// GPU hardware type. Earlier entries win.
var DefaultGPUTypeLabels = []string{
	"nvidia.com/gpu.product",
	"nvidia.com/gpu.machine",
	"accelerator",
	"gpu-type",
	"node.kubernetes.io/instance-type",
}

// GPUTypeResolver maps node labels to a GPU type by walking an ordered
// label-key list; the first key present wins.
type GPUTypeResolver struct {
	labels []string
}

// NewGPUTypeResolver creates a resolver over the given label keys. An empty
// list falls back to DefaultGPUTypeLabels.
func NewGPUTypeResolver(labels []string) *GPUTypeResolver {
	if len(labels) == 0 {
		labels = DefaultGPUTypeLabels
	}
	return &GPUTypeResolver{labels: append([]string(nil), labels...)}
}

// Resolve returns the value of the first configured label present on the
// node, or model.GPUTypeNone.
func (r *GPUTypeResolver) Resolve(labels map[string]string) string {
	for _, key := range r.labels {
		if v, ok := labels[key]; ok {
			return v
		}
	}
	return model.GPUTypeNone
}

// Labels returns a copy of the configured label keys in lookup order.
func (r *GPUTypeResolver) Labels() []string {
	return append([]string(nil), r.labels...)
}
