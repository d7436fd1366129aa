package snapshot

import (
	"fmt"
	"log/slog"
	"sort"

	corev1 "k8s.io/api/core/v1"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/convert"
	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// NodeUsage is live node usage as reported by metrics-server.
type NodeUsage struct {
	CPUMillicores int64
	MemoryBytes   int64
}

// NodeSet is the result of joining nodes with their pods.
type NodeSet struct {
	// Nodes in inventory order, each carrying the pods bound to it.
	Nodes []model.NodeDetail
	// Unscheduled holds pods with no node assignment. They are never attached
	// to a node.
	Unscheduled []model.PodDetail
	// Orphaned holds pods bound to a node name missing from the node list.
	Orphaned []model.PodDetail
}

// BuildNodes converts every pod, groups the results by node assignment and
// converts every node with its group attached. The first quantity that fails
// to parse aborts the build.
func BuildNodes(c *convert.Converter, nodes []corev1.Node, pods []corev1.Pod) (*NodeSet, error) {
	set := &NodeSet{Nodes: make([]model.NodeDetail, 0, len(nodes))}
	byNode := make(map[string][]model.PodDetail, len(nodes))
	for i := range pods {
		d, err := c.PodToDetail(&pods[i])
		if err != nil {
			return nil, err
		}
		if d.NodeName == "" {
			set.Unscheduled = append(set.Unscheduled, d)
			continue
		}
		byNode[d.NodeName] = append(byNode[d.NodeName], d)
	}

	for i := range nodes {
		name := nodes[i].Name
		d, err := c.NodeToDetail(&nodes[i], byNode[name])
		if err != nil {
			return nil, err
		}
		set.Nodes = append(set.Nodes, d)
		delete(byNode, name)
	}

	// Whatever is left is bound to a node we did not see.
	orphanNodes := make([]string, 0, len(byNode))
	for nodeName := range byNode {
		orphanNodes = append(orphanNodes, nodeName)
	}
	sort.Strings(orphanNodes)
	for _, nodeName := range orphanNodes {
		slog.Warn("pods bound to unknown node",
			"node", nodeName,
			"pods", len(byNode[nodeName]),
		)
		set.Orphaned = append(set.Orphaned, byNode[nodeName]...)
	}

	return set, nil
}

// MergeNodeUsage sets CPU and memory usage on nodes from metrics-server data.
// Nodes without a sample keep nil usage.
func MergeNodeUsage(nodes []model.NodeDetail, usage map[string]NodeUsage) {
	if len(usage) == 0 {
		return
	}
	for i := range nodes {
		if u, ok := usage[nodes[i].Name]; ok {
			cpu := u.CPUMillicores
			mem := u.MemoryBytes
			nodes[i].CPUUsageMillicores = &cpu
			nodes[i].MemoryUsageBytes = &mem
		}
	}
}

// PodCount returns the number of pods attached to nodes.
func (s *NodeSet) PodCount() int {
	n := 0
	for i := range s.Nodes {
		n += len(s.Nodes[i].Pods)
	}
	return n
}

// String is used in debug logs.
func (s *NodeSet) String() string {
	return fmt.Sprintf("nodes=%d pods=%d unscheduled=%d orphaned=%d",
		len(s.Nodes), s.PodCount(), len(s.Unscheduled), len(s.Orphaned))
}
