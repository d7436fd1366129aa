package convert

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// Converter turns raw inventory records into dashboard models.
// It is stateless apart from its configuration and safe for concurrent use.
type Converter struct {
	gpuResource corev1.ResourceName
	gpuTypes    *GPUTypeResolver
}

// NewConverter creates a Converter counting gpuResource as GPUs and
// resolving GPU types with gpuTypes. Empty/nil arguments use the defaults.
func NewConverter(gpuResource string, gpuTypes *GPUTypeResolver) *Converter {
	if gpuResource == "" {
		gpuResource = DefaultGPUResource
	}
	if gpuTypes == nil {
		gpuTypes = NewGPUTypeResolver(nil)
	}
	return &Converter{
		gpuResource: corev1.ResourceName(gpuResource),
		gpuTypes:    gpuTypes,
	}
}

// PodToDetail converts a Kubernetes Pod into a model.PodDetail.
// Pure function of the pod: request/limit sums come from the container spec
// and do not depend on container status.
func (c *Converter) PodToDetail(pod *corev1.Pod) (model.PodDetail, error) {
	d := model.PodDetail{
		Name:       pod.Name,
		Namespace:  pod.Namespace,
		NodeName:   pod.Spec.NodeName,
		OwnerKind:  model.OwnerNone,
		OwnerName:  pod.Name,
		Phase:      string(pod.Status.Phase),
		Containers: containerStatuses(pod.Status.ContainerStatuses),
		Labels:     copyLabels(pod.Labels),
	}
	if d.Phase == "" {
		d.Phase = model.PhaseUnknown
	}

	// Owner: immediate ownerReferences[0] only.
	if len(pod.OwnerReferences) > 0 {
		d.OwnerKind = pod.OwnerReferences[0].Kind
		d.OwnerName = pod.OwnerReferences[0].Name
	}

	if err := c.deriveFromContainers(pod.Spec.Containers, &d); err != nil {
		return model.PodDetail{}, fmt.Errorf("pod %s/%s: %w", pod.Namespace, pod.Name, err)
	}

	if !pod.CreationTimestamp.IsZero() {
		d.CreatedAt = ptr.To(model.FormatTime(pod.CreationTimestamp.Time))
	}
	if pod.Status.PodIP != "" {
		d.IP = ptr.To(pod.Status.PodIP)
	}
	if pod.Status.QOSClass != "" {
		d.QoSClass = ptr.To(string(pod.Status.QOSClass))
	}

	return d, nil
}

// deriveFromContainers sums GPU, CPU and memory requests and limits over the
// containers of a pod spec. Absent requests/limits count as zero.
func (c *Converter) deriveFromContainers(containers []corev1.Container, d *model.PodDetail) error {
	for i := range containers {
		ctr := &containers[i]
		req := ctr.Resources.Requests
		lim := ctr.Resources.Limits

		err := accumulate([]resourceFigure{
			{&d.GPURequest, countValue, req, c.gpuResource},
			{&d.GPULimit, countValue, lim, c.gpuResource},
			{&d.CPURequestMillicores, cpuMillicores, req, corev1.ResourceCPU},
			{&d.CPULimitMillicores, cpuMillicores, lim, corev1.ResourceCPU},
			{&d.MemoryRequestBytes, byteValue, req, corev1.ResourceMemory},
			{&d.MemoryLimitBytes, byteValue, lim, corev1.ResourceMemory},
		})
		if err != nil {
			return fmt.Errorf("container %q: %w", ctr.Name, err)
		}
	}
	return nil
}

// containerStatuses converts the runtime status list. The result is never nil.
func containerStatuses(statuses []corev1.ContainerStatus) []model.ContainerStatus {
	out := make([]model.ContainerStatus, len(statuses))
	for i := range statuses {
		out[i] = containerStatus(&statuses[i])
	}
	return out
}

// containerStatus converts one status record. The state variant is chosen by
// which of Running/Waiting/Terminated is populated, in that order.
func containerStatus(cs *corev1.ContainerStatus) model.ContainerStatus {
	out := model.ContainerStatus{
		Name:         cs.Name,
		Ready:        cs.Ready,
		RestartCount: cs.RestartCount,
		Image:        cs.Image,
		State:        model.Unknown{},
	}

	switch s := cs.State; {
	case s.Running != nil:
		r := model.Running{}
		if !s.Running.StartedAt.IsZero() {
			r.StartedAt = ptr.To(s.Running.StartedAt.Time)
		}
		out.State = r
	case s.Waiting != nil:
		out.State = model.Waiting{
			Reason:  s.Waiting.Reason,
			Message: s.Waiting.Message,
		}
	case s.Terminated != nil:
		out.State = model.Terminated{
			Reason:   s.Terminated.Reason,
			Message:  s.Terminated.Message,
			ExitCode: s.Terminated.ExitCode,
		}
	}

	return out
}
