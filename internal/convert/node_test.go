package convert

import (
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// makeNode returns a fully populated A100 GPU node.
func makeNode() *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name: "gpu-node-a100-01",
			Labels: map[string]string{
				"kubernetes.io/arch":               "amd64",
				"nvidia.com/gpu.product":           "NVIDIA-A100-SXM4-80GB",
				"node.kubernetes.io/instance-type": "p4d.24xlarge",
				"topology.kubernetes.io/zone":      "us-east-1a",
			},
		},
		Status: corev1.NodeStatus{
			Capacity: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("96"),
				corev1.ResourceMemory: resource.MustParse("1Ti"),
				"nvidia.com/gpu":      resource.MustParse("8"),
			},
			Allocatable: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("95500m"),
				corev1.ResourceMemory: resource.MustParse("1000Gi"),
				"nvidia.com/gpu":      resource.MustParse("8"),
			},
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeMemoryPressure, Status: corev1.ConditionFalse},
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue, Reason: "KubeletReady"},
			},
			NodeInfo: corev1.NodeSystemInfo{
				OSImage:        "Ubuntu 22.04.4 LTS",
				Architecture:   "amd64",
				KubeletVersion: "v1.29.3",
			},
		},
	}
}

func TestNodeToDetail_BasicNode(t *testing.T) {
	c := NewConverter("", nil)
	got, err := c.NodeToDetail(makeNode(), nil)
	if err != nil {
		t.Fatalf("NodeToDetail() error = %v", err)
	}

	assertEqual(t, "Name", got.Name, "gpu-node-a100-01")
	assertEqual(t, "GPUType", got.GPUType, "NVIDIA-A100-SXM4-80GB")
	assertEqual(t, "OS", got.OS, "Ubuntu 22.04.4 LTS")
	assertEqual(t, "Arch", got.Arch, "amd64")
	assertEqual(t, "KubeletVersion", got.KubeletVersion, "v1.29.3")

	assertInt64(t, "GPUTotal", got.GPUTotal, 8)
	assertInt64(t, "GPUAllocatable", got.GPUAllocatable, 8)
	assertInt64(t, "CPUTotalMillicores", got.CPUTotalMillicores, 96000)
	assertInt64(t, "CPUAllocatableMillicores", got.CPUAllocatableMillicores, 95500)
	assertInt64(t, "MemoryTotalBytes", got.MemoryTotalBytes, 1<<40)
	assertInt64(t, "MemoryAllocatableBytes", got.MemoryAllocatableBytes, 1000<<30)

	if !got.ConditionsReady {
		t.Error("ConditionsReady = false, want true")
	}
	if got.Pods == nil || len(got.Pods) != 0 {
		t.Errorf("Pods = %v, want empty non-nil slice", got.Pods)
	}
	if got.CPUUsageMillicores != nil || got.MemoryUsageBytes != nil {
		t.Error("usage fields should stay nil")
	}
}

func TestNodeToDetail_UsedIsSumOfRequests(t *testing.T) {
	pods := []model.PodDetail{
		{Name: "a", GPURequest: 2, GPULimit: 4, CPURequestMillicores: 500, CPULimitMillicores: 2000, MemoryRequestBytes: 1 << 30, MemoryLimitBytes: 4 << 30},
		{Name: "b", GPURequest: 1, GPULimit: 1, CPURequestMillicores: 250, CPULimitMillicores: 250, MemoryRequestBytes: 512 << 20, MemoryLimitBytes: 512 << 20},
	}

	got, err := NewConverter("", nil).NodeToDetail(makeNode(), pods)
	if err != nil {
		t.Fatalf("NodeToDetail() error = %v", err)
	}

	assertInt64(t, "GPUUsed", got.GPUUsed, 3)
	assertInt64(t, "CPUUsedMillicores", got.CPUUsedMillicores, 750)
	assertInt64(t, "MemoryUsedBytes", got.MemoryUsedBytes, (1<<30)+(512<<20))
	assertInt(t, "len(Pods)", len(got.Pods), 2)
}

func TestNodeToDetail_EmptyStatus(t *testing.T) {
	node := &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "bare"}}

	got, err := NewConverter("", nil).NodeToDetail(node, nil)
	if err != nil {
		t.Fatalf("NodeToDetail() error = %v", err)
	}

	assertEqual(t, "GPUType", got.GPUType, model.GPUTypeNone)
	assertInt64(t, "GPUTotal", got.GPUTotal, 0)
	assertInt64(t, "CPUTotalMillicores", got.CPUTotalMillicores, 0)
	assertInt64(t, "MemoryTotalBytes", got.MemoryTotalBytes, 0)
	if got.ConditionsReady {
		t.Error("node without conditions should not be ready")
	}
	if got.Labels == nil {
		t.Error("Labels should be an empty map, not nil")
	}
}

func TestNodeToDetail_ArchFallsBackToNodeInfo(t *testing.T) {
	node := makeNode()
	delete(node.Labels, "kubernetes.io/arch")
	node.Status.NodeInfo.Architecture = "arm64"

	got, err := NewConverter("", nil).NodeToDetail(node, nil)
	if err != nil {
		t.Fatalf("NodeToDetail() error = %v", err)
	}
	assertEqual(t, "Arch", got.Arch, "arm64")
}

func TestNodeToDetail_CustomGPUResource(t *testing.T) {
	node := makeNode()
	node.Status.Capacity["amd.com/gpu"] = resource.MustParse("4")
	node.Status.Allocatable["amd.com/gpu"] = resource.MustParse("3")

	got, err := NewConverter("amd.com/gpu", nil).NodeToDetail(node, nil)
	if err != nil {
		t.Fatalf("NodeToDetail() error = %v", err)
	}
	assertInt64(t, "GPUTotal", got.GPUTotal, 4)
	assertInt64(t, "GPUAllocatable", got.GPUAllocatable, 3)
}

func TestNodeToDetail_FractionalGPUIsError(t *testing.T) {
	node := makeNode()
	node.Status.Capacity["nvidia.com/gpu"] = resource.MustParse("500m")

	_, err := NewConverter("", nil).NodeToDetail(node, nil)
	if err == nil {
		t.Fatal("expected error for fractional GPU capacity")
	}
	if !strings.Contains(err.Error(), "gpu-node-a100-01") {
		t.Errorf("error %q should name the node", err)
	}
}

func TestNodeReady(t *testing.T) {
	tests := []struct {
		name       string
		conditions []corev1.NodeCondition
		want       bool
	}{
		{"none", nil, false},
		{"ready true", []corev1.NodeCondition{{Type: corev1.NodeReady, Status: corev1.ConditionTrue}}, true},
		{"ready false", []corev1.NodeCondition{{Type: corev1.NodeReady, Status: corev1.ConditionFalse}}, false},
		{"ready unknown", []corev1.NodeCondition{{Type: corev1.NodeReady, Status: corev1.ConditionUnknown}}, false},
		{"other true only", []corev1.NodeCondition{{Type: corev1.NodeDiskPressure, Status: corev1.ConditionTrue}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeReady(tt.conditions); got != tt.want {
				t.Errorf("nodeReady() = %v, want %v", got, tt.want)
			}
		})
	}
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertInt64(t *testing.T, field string, got, want int64) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertInt(t *testing.T, field string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}
