package convert

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// NodeToDetail converts a Kubernetes Node into a model.NodeDetail and
// attaches the given pods. Used figures are the sum of the pods' requests.
func (c *Converter) NodeToDetail(node *corev1.Node, pods []model.PodDetail) (model.NodeDetail, error) {
	labels := copyLabels(node.Labels)
	capacity := node.Status.Capacity
	allocatable := node.Status.Allocatable

	if pods == nil {
		pods = []model.PodDetail{}
	}

	d := model.NodeDetail{
		Name:            node.Name,
		GPUType:         c.gpuTypes.Resolve(labels),
		Labels:          labels,
		Pods:            pods,
		ConditionsReady: nodeReady(node.Status.Conditions),
		OS:              node.Status.NodeInfo.OSImage,
		Arch:            labels["kubernetes.io/arch"],
		KubeletVersion:  node.Status.NodeInfo.KubeletVersion,
	}
	if d.Arch == "" {
		d.Arch = node.Status.NodeInfo.Architecture
	}

	err := accumulate([]resourceFigure{
		{&d.GPUTotal, countValue, capacity, c.gpuResource},
		{&d.GPUAllocatable, countValue, allocatable, c.gpuResource},
		{&d.CPUTotalMillicores, cpuMillicores, capacity, corev1.ResourceCPU},
		{&d.CPUAllocatableMillicores, cpuMillicores, allocatable, corev1.ResourceCPU},
		{&d.MemoryTotalBytes, byteValue, capacity, corev1.ResourceMemory},
		{&d.MemoryAllocatableBytes, byteValue, allocatable, corev1.ResourceMemory},
	})
	if err != nil {
		return model.NodeDetail{}, fmt.Errorf("node %s: %w", node.Name, err)
	}

	// Usage is attributed from requests, never limits.
	for i := range pods {
		d.GPUUsed += pods[i].GPURequest
		d.CPUUsedMillicores += pods[i].CPURequestMillicores
		d.MemoryUsedBytes += pods[i].MemoryRequestBytes
	}

	return d, nil
}

// nodeReady returns true if any Ready condition has status True.
func nodeReady(conditions []corev1.NodeCondition) bool {
	for _, c := range conditions {
		if c.Type == corev1.NodeReady && c.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
