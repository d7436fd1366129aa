package snapshot

import (
	"sort"
	"strconv"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/quantity"
	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// ComputeSummary rolls a node set up into cluster-wide statistics. It is a
// full recomputation with no state carried between calls.
func ComputeSummary(set *NodeSet) model.ClusterSummary {
	var (
		cpuTotal, cpuAlloc, cpuUsed int64
		memTotal, memAlloc, memUsed int64
		gpuTotal, gpuAlloc, gpuUsed int64
		ready                       int
	)

	byType := make(map[string]*model.GpuTypeStat)
	for i := range set.Nodes {
		n := &set.Nodes[i]
		cpuTotal += n.CPUTotalMillicores
		cpuAlloc += n.CPUAllocatableMillicores
		cpuUsed += n.CPUUsedMillicores
		memTotal += n.MemoryTotalBytes
		memAlloc += n.MemoryAllocatableBytes
		memUsed += n.MemoryUsedBytes
		gpuTotal += n.GPUTotal
		gpuAlloc += n.GPUAllocatable
		gpuUsed += n.GPUUsed
		if n.ConditionsReady {
			ready++
		}

		if n.GPUTotal <= 0 {
			continue
		}
		st, ok := byType[n.GPUType]
		if !ok {
			st = &model.GpuTypeStat{GPUType: n.GPUType}
			byType[n.GPUType] = st
		}
		st.Total += n.GPUTotal
		st.Allocatable += n.GPUAllocatable
		st.Used += n.GPUUsed
		st.NodeCount++
	}

	pods := int64(set.PodCount())

	return model.ClusterSummary{
		CPU:    NewResourceStat(cpuTotal, cpuAlloc, cpuUsed, model.UnitMillicores, quantity.FormatCores),
		Memory: NewResourceStat(memTotal, memAlloc, memUsed, model.UnitBytes, quantity.BytesToHuman),
		GPU:    NewResourceStat(gpuTotal, gpuAlloc, gpuUsed, model.UnitGPUs, formatCount),
		// Pod capacity is not tracked: the attached pod count fills every
		// figure and nothing is available.
		Pods: model.ResourceStat{
			Total:            pods,
			Allocatable:      pods,
			Used:             pods,
			Unit:             model.UnitPods,
			TotalDisplay:     formatCount(pods),
			UsedDisplay:      formatCount(pods),
			AvailableDisplay: formatCount(0),
		},
		NodeCount:           len(set.Nodes),
		ReadyNodeCount:      ready,
		GPUByType:           gpuByType(byType),
		UnscheduledPodCount: len(set.Unscheduled),
		OrphanedPodCount:    len(set.Orphaned),
	}
}

// NewResourceStat builds a ResourceStat. Available is allocatable-used and is
// not clamped; display renders the total, used and available figures.
func NewResourceStat(total, allocatable, used int64, unit string, display func(int64) string) model.ResourceStat {
	available := allocatable - used
	return model.ResourceStat{
		Total:              total,
		Allocatable:        allocatable,
		Used:               used,
		Available:          available,
		UtilizationPercent: Utilization(used, allocatable),
		Unit:               unit,
		TotalDisplay:       display(total),
		UsedDisplay:        display(used),
		AvailableDisplay:   display(available),
	}
}

// Utilization returns used/allocatable as a percentage rounded to one
// decimal, or 0 when allocatable is zero.
func Utilization(used, allocatable int64) float64 {
	if allocatable == 0 {
		return 0
	}
	return quantity.Round1(float64(used) / float64(allocatable) * 100)
}

func gpuByType(byType map[string]*model.GpuTypeStat) []model.GpuTypeStat {
	out := make([]model.GpuTypeStat, 0, len(byType))
	for _, st := range byType {
		st.Available = st.Allocatable - st.Used
		st.UtilizationPercent = Utilization(st.Used, st.Allocatable)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GPUType < out[j].GPUType })
	return out
}

func formatCount(v int64) string {
	return strconv.FormatInt(v, 10)
}
