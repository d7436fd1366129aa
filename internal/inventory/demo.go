package inventory

import (
	"context"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	"k8s.io/utils/ptr"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/errors"
	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

const (
	gib = int64(1) << 30
	tib = int64(1) << 40

	demoActive   = "prod-us-east-1"
	demoGPULabel = "nvidia.com/gpu.product"
	demoImage    = "nvidia/cuda:12.4-runtime"
)

var (
	demoCreated = time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	demoStarted = time.Date(2026, 2, 26, 1, 0, 0, 0, time.UTC)
)

type demoPod struct {
	name, namespace  string
	ownerKind, owner string
	gpus             int64
	cpuReq, cpuLim   int64 // millicores
	memReq, memLim   int64 // bytes
	phase            corev1.PodPhase
	waiting          string
	restarts         int32
	labels           map[string]string
	unscheduled      bool
	sidecar          bool
}

type demoNode struct {
	name, gpuType, zone string
	gpus                int64
	cpu, cpuAlloc       int64 // millicores
	mem, memAlloc       int64 // bytes
	os, kubelet         string
	// usage is what a metrics-server would report, as a fraction of allocatable.
	usage float64
	pods  []demoPod
}

// demoClusters mirrors a small multi-cluster GPU fleet.
var demoClusters = map[string][]demoNode{
	"prod-us-east-1": {
		{
			name: "gpu-node-a100-01", gpuType: "NVIDIA-A100-SXM4-80GB", zone: "us-east-1a",
			gpus: 8, cpu: 128000, cpuAlloc: 126000, mem: tib, memAlloc: 1008 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.55,
			pods: []demoPod{
				trainPod("llm-train-a100-0", "llm-train-a100", 2),
				trainPod("llm-train-a100-1", "llm-train-a100", 2),
				{name: "embedding-svc-7f8b9-xk2p1", namespace: "ml-serving", ownerKind: "ReplicaSet", owner: "embedding-svc-7f8b9",
					gpus: 1, cpuReq: 8000, cpuLim: 16000, memReq: 64 * gib, memLim: 128 * gib,
					labels: map[string]string{"app": "embedding-svc", "team": "search"}},
				{name: "rerank-svc-5c6d7-q9w2e", namespace: "ml-serving", ownerKind: "ReplicaSet", owner: "rerank-svc-5c6d7",
					gpus: 1, cpuReq: 4000, cpuLim: 8000, memReq: 32 * gib, memLim: 64 * gib,
					labels: map[string]string{"app": "rerank-svc", "team": "search"}},
			},
		},
		{
			name: "gpu-node-a100-02", gpuType: "NVIDIA-A100-SXM4-80GB", zone: "us-east-1b",
			gpus: 8, cpu: 128000, cpuAlloc: 126000, mem: tib, memAlloc: 1008 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.4,
			pods: []demoPod{
				trainPod("llm-train-a100-2", "llm-train-a100", 2),
				{name: "jupyter-alice", namespace: "research",
					gpus: 1, cpuReq: 2000, cpuLim: 4000, memReq: 16 * gib, memLim: 32 * gib,
					labels: map[string]string{"app": "jupyter", "user": "alice"}},
			},
		},
		{
			name: "gpu-node-h100-01", gpuType: "NVIDIA-H100-SXM5-80GB", zone: "us-east-1a",
			gpus: 8, cpu: 192000, cpuAlloc: 190000, mem: 2 * tib, memAlloc: 2016 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.8,
			pods: []demoPod{
				{name: "llm-pretrain-h100-0", namespace: "ml-training", ownerKind: "Job", owner: "llm-pretrain-h100",
					gpus: 8, cpuReq: 96000, cpuLim: 160000, memReq: 1024 * gib, memLim: 1536 * gib,
					labels: map[string]string{"app": "llm-pretrain", "team": "ml-platform"}},
			},
		},
		{
			name: "gpu-node-h100-02", gpuType: "NVIDIA-H100-SXM5-80GB", zone: "us-east-1b",
			gpus: 8, cpu: 192000, cpuAlloc: 190000, mem: 2 * tib, memAlloc: 2016 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.3,
			pods: []demoPod{
				{name: "vllm-serve-6b8c9-m4n5p", namespace: "ml-serving", ownerKind: "ReplicaSet", owner: "vllm-serve-6b8c9",
					gpus: 4, cpuReq: 32000, cpuLim: 64000, memReq: 256 * gib, memLim: 512 * gib,
					labels: map[string]string{"app": "vllm-serve", "team": "inference"}},
				{name: "vllm-serve-6b8c9-r7t8y", namespace: "ml-serving", ownerKind: "ReplicaSet", owner: "vllm-serve-6b8c9",
					gpus: 2, cpuReq: 16000, cpuLim: 32000, memReq: 128 * gib, memLim: 256 * gib,
					waiting: "CrashLoopBackOff", restarts: 7, phase: corev1.PodRunning,
					labels: map[string]string{"app": "vllm-serve", "team": "inference"}},
			},
		},
	},
	"prod-eu-west-1": {
		{
			name: "gpu-node-l40s-01", gpuType: "NVIDIA-L40S", zone: "eu-west-1a",
			gpus: 4, cpu: 64000, cpuAlloc: 63000, mem: 512 * gib, memAlloc: 500 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.5,
			pods: []demoPod{
				{name: "sdxl-render-8d9e0-a1b2c", namespace: "media", ownerKind: "ReplicaSet", owner: "sdxl-render-8d9e0",
					gpus: 2, cpuReq: 8000, cpuLim: 16000, memReq: 64 * gib, memLim: 96 * gib,
					labels: map[string]string{"app": "sdxl-render", "team": "media"}},
				{name: "whisper-asr-0", namespace: "media", ownerKind: "StatefulSet", owner: "whisper-asr",
					gpus: 1, cpuReq: 4000, cpuLim: 8000, memReq: 16 * gib, memLim: 32 * gib,
					labels: map[string]string{"app": "whisper-asr", "team": "media"}},
			},
		},
		{
			name: "gpu-node-l40s-02", gpuType: "NVIDIA-L40S", zone: "eu-west-1b",
			gpus: 4, cpu: 64000, cpuAlloc: 63000, mem: 512 * gib, memAlloc: 500 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.2,
			pods: []demoPod{
				{name: "sdxl-render-8d9e0-d3e4f", namespace: "media", ownerKind: "ReplicaSet", owner: "sdxl-render-8d9e0",
					gpus: 2, cpuReq: 8000, cpuLim: 16000, memReq: 64 * gib, memLim: 96 * gib,
					labels: map[string]string{"app": "sdxl-render", "team": "media"}},
			},
		},
		{
			name: "cpu-node-01", zone: "eu-west-1a",
			cpu: 32000, cpuAlloc: 31500, mem: 128 * gib, memAlloc: 124 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.35,
			pods: []demoPod{
				{name: "api-gateway-4f5g6-h7j8k", namespace: "platform", ownerKind: "ReplicaSet", owner: "api-gateway-4f5g6",
					cpuReq: 2000, cpuLim: 4000, memReq: 4 * gib, memLim: 8 * gib,
					labels: map[string]string{"app": "api-gateway", "team": "platform"}, sidecar: true},
				{name: "node-exporter-x2c3v", namespace: "monitoring", ownerKind: "DaemonSet", owner: "node-exporter",
					cpuReq: 100, cpuLim: 200, memReq: 64 << 20, memLim: 128 << 20,
					labels: map[string]string{"app": "node-exporter"}},
			},
		},
	},
	"staging-apne-1": {
		{
			name: "gpu-node-t4-01", gpuType: "NVIDIA-Tesla-T4", zone: "ap-northeast-1a",
			gpus: 2, cpu: 16000, cpuAlloc: 15800, mem: 64 * gib, memAlloc: 62 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.25,
			pods: []demoPod{
				{name: "model-eval-28491730-zq8rt", namespace: "ml-staging", ownerKind: "Job", owner: "model-eval-28491730",
					gpus: 1, cpuReq: 2000, cpuLim: 4000, memReq: 8 * gib, memLim: 16 * gib,
					phase: corev1.PodSucceeded, labels: map[string]string{"app": "model-eval"}},
				{name: "canary-infer-2b3c4-p0o9i", namespace: "ml-staging", ownerKind: "ReplicaSet", owner: "canary-infer-2b3c4",
					gpus: 1, cpuReq: 1000, cpuLim: 2000, memReq: 4 * gib, memLim: 8 * gib,
					waiting: "ImagePullBackOff", phase: corev1.PodPending,
					labels: map[string]string{"app": "canary-infer"}},
			},
		},
		{
			name: "cpu-node-staging-01", zone: "ap-northeast-1a",
			cpu: 8000, cpuAlloc: 7800, mem: 32 * gib, memAlloc: 30 * gib,
			os: "Ubuntu 22.04.4 LTS", kubelet: "v1.29.3", usage: 0.1,
			pods: []demoPod{
				{name: "batch-etl-9a8b7-l6k5j", namespace: "data", ownerKind: "ReplicaSet", owner: "batch-etl-9a8b7",
					gpus: 1, cpuReq: 1000, cpuLim: 2000, memReq: 2 * gib, memLim: 4 * gib,
					phase: corev1.PodPending, unscheduled: true,
					labels: map[string]string{"app": "batch-etl"}},
			},
		},
	},
}

func trainPod(name, owner string, gpus int64) demoPod {
	return demoPod{
		name: name, namespace: "ml-training", ownerKind: "StatefulSet", owner: owner,
		gpus: gpus, cpuReq: 16000, cpuLim: 32000, memReq: 128 * gib, memLim: 256 * gib,
		labels: map[string]string{"app": "llm-training", "team": "ml-platform"},
	}
}

// DemoSource serves built-in fixture clusters through fake clientsets, so
// the whole fetch and aggregation path runs without a real cluster.
type DemoSource struct {
	usage bool
}

// NewDemoSource creates the demo source. usage enables synthetic live
// usage figures.
func NewDemoSource(usage bool) *DemoSource {
	return &DemoSource{usage: usage}
}

// Clusters implements Source.
func (d *DemoSource) Clusters() ([]model.ClusterInfo, error) {
	return []model.ClusterInfo{
		{Name: "prod-eu-west-1"},
		{Name: "prod-us-east-1", IsActive: true},
		{Name: "staging-apne-1"},
	}, nil
}

// Resolve implements Source.
func (d *DemoSource) Resolve(name string) (string, error) {
	if name == "" {
		return demoActive, nil
	}
	if _, ok := demoClusters[name]; !ok {
		return "", errors.UnknownCluster(name)
	}
	return name, nil
}

// NewProvider implements Source.
func (d *DemoSource) NewProvider(name string) (Provider, error) {
	nodes, ok := demoClusters[name]
	if !ok {
		return nil, errors.UnknownCluster(name)
	}

	var objects []runtime.Object
	for i := range nodes {
		n := &nodes[i]
		objects = append(objects, n.object())
		for j := range n.pods {
			objects = append(objects, n.pods[j].object(n.name))
		}
	}

	var usage MetricsAPI
	if d.usage {
		usage = demoMetrics(nodes)
	}
	return sortedProvider{NewKubeProvider(fake.NewSimpleClientset(objects...), usage, 0)}, nil
}

// sortedProvider orders the fake clientset's listings by name, the way the
// API server returns them.
type sortedProvider struct {
	Provider
}

func (p sortedProvider) Fetch(ctx context.Context) (*Inventory, error) {
	inv, err := p.Provider.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(inv.Nodes, func(i, j int) bool { return inv.Nodes[i].Name < inv.Nodes[j].Name })
	sort.Slice(inv.Pods, func(i, j int) bool {
		if inv.Pods[i].Namespace != inv.Pods[j].Namespace {
			return inv.Pods[i].Namespace < inv.Pods[j].Namespace
		}
		return inv.Pods[i].Name < inv.Pods[j].Name
	})
	return inv, nil
}

func (n *demoNode) object() *corev1.Node {
	labels := map[string]string{
		"kubernetes.io/arch":          "amd64",
		"kubernetes.io/hostname":      n.name,
		"kubernetes.io/os":            "linux",
		"topology.kubernetes.io/zone": n.zone,
	}
	capacity := corev1.ResourceList{
		corev1.ResourceCPU:    *resource.NewMilliQuantity(n.cpu, resource.DecimalSI),
		corev1.ResourceMemory: *resource.NewQuantity(n.mem, resource.BinarySI),
		corev1.ResourcePods:   *resource.NewQuantity(110, resource.DecimalSI),
	}
	allocatable := corev1.ResourceList{
		corev1.ResourceCPU:    *resource.NewMilliQuantity(n.cpuAlloc, resource.DecimalSI),
		corev1.ResourceMemory: *resource.NewQuantity(n.memAlloc, resource.BinarySI),
		corev1.ResourcePods:   *resource.NewQuantity(110, resource.DecimalSI),
	}
	if n.gpuType != "" {
		labels[demoGPULabel] = n.gpuType
		gpus := *resource.NewQuantity(n.gpus, resource.DecimalSI)
		capacity["nvidia.com/gpu"] = gpus
		allocatable["nvidia.com/gpu"] = gpus
	}

	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:              n.name,
			Labels:            labels,
			CreationTimestamp: metav1.NewTime(demoCreated),
		},
		Status: corev1.NodeStatus{
			Capacity:    capacity,
			Allocatable: allocatable,
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
			NodeInfo: corev1.NodeSystemInfo{
				OSImage:        n.os,
				Architecture:   "amd64",
				KubeletVersion: n.kubelet,
			},
		},
	}
}

func (p *demoPod) object(nodeName string) *corev1.Pod {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              p.name,
			Namespace:         p.namespace,
			Labels:            p.labels,
			CreationTimestamp: metav1.NewTime(demoCreated),
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{
				Name:      "main",
				Image:     demoImage,
				Resources: p.resources(),
			}},
		},
		Status: corev1.PodStatus{
			Phase:    p.phase,
			QOSClass: corev1.PodQOSBurstable,
		},
	}
	if p.ownerKind != "" {
		pod.OwnerReferences = []metav1.OwnerReference{{
			APIVersion: ownerAPIVersion(p.ownerKind),
			Kind:       p.ownerKind,
			Name:       p.owner,
			Controller: ptr.To(true),
		}}
	}
	if pod.Status.Phase == "" {
		pod.Status.Phase = corev1.PodRunning
	}
	if p.unscheduled {
		pod.Status.Conditions = []corev1.PodCondition{{
			Type:   corev1.PodScheduled,
			Status: corev1.ConditionFalse,
			Reason: corev1.PodReasonUnschedulable,
		}}
		return pod
	}

	pod.Spec.NodeName = nodeName
	pod.Status.PodIP = "10.244.1.10"
	pod.Status.ContainerStatuses = []corev1.ContainerStatus{p.mainStatus()}
	if p.sidecar {
		pod.Spec.Containers = append(pod.Spec.Containers, corev1.Container{Name: "envoy", Image: "envoyproxy/envoy:v1.30.1"})
		pod.Status.ContainerStatuses = append(pod.Status.ContainerStatuses, corev1.ContainerStatus{
			Name:         "envoy",
			Image:        "envoyproxy/envoy:v1.30.1",
			Ready:        true,
			State:        corev1.ContainerState{Running: &corev1.ContainerStateRunning{StartedAt: metav1.NewTime(demoStarted)}},
		})
	}
	return pod
}

func (p *demoPod) resources() corev1.ResourceRequirements {
	req := corev1.ResourceList{
		corev1.ResourceCPU:    *resource.NewMilliQuantity(p.cpuReq, resource.DecimalSI),
		corev1.ResourceMemory: *resource.NewQuantity(p.memReq, resource.BinarySI),
	}
	lim := corev1.ResourceList{
		corev1.ResourceCPU:    *resource.NewMilliQuantity(p.cpuLim, resource.DecimalSI),
		corev1.ResourceMemory: *resource.NewQuantity(p.memLim, resource.BinarySI),
	}
	if p.gpus > 0 {
		req["nvidia.com/gpu"] = *resource.NewQuantity(p.gpus, resource.DecimalSI)
		lim["nvidia.com/gpu"] = *resource.NewQuantity(p.gpus, resource.DecimalSI)
	}
	return corev1.ResourceRequirements{Requests: req, Limits: lim}
}

func (p *demoPod) mainStatus() corev1.ContainerStatus {
	cs := corev1.ContainerStatus{
		Name:         "main",
		Image:        demoImage,
		RestartCount: p.restarts,
	}
	switch {
	case p.waiting != "":
		cs.State.Waiting = &corev1.ContainerStateWaiting{Reason: p.waiting}
	case p.phase == corev1.PodSucceeded:
		cs.State.Terminated = &corev1.ContainerStateTerminated{
			ExitCode:   0,
			Reason:     "Completed",
			StartedAt:  metav1.NewTime(demoStarted),
			FinishedAt: metav1.NewTime(demoStarted.Add(45 * time.Minute)),
		}
	default:
		cs.Ready = true
		cs.State.Running = &corev1.ContainerStateRunning{StartedAt: metav1.NewTime(demoStarted)}
	}
	return cs
}

func ownerAPIVersion(kind string) string {
	switch kind {
	case "Job":
		return "batch/v1"
	default:
		return "apps/v1"
	}
}

// staticMetrics is a MetricsAPI over a fixed list.
type staticMetrics []metricsv1beta1.NodeMetrics

func (s staticMetrics) ListNodeMetrics(context.Context) ([]metricsv1beta1.NodeMetrics, error) {
	return s, nil
}

func demoMetrics(nodes []demoNode) staticMetrics {
	out := make(staticMetrics, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		out = append(out, metricsv1beta1.NodeMetrics{
			ObjectMeta: metav1.ObjectMeta{Name: n.name},
			Timestamp:  metav1.NewTime(demoStarted),
			Window:     metav1.Duration{Duration: 30 * time.Second},
			Usage: corev1.ResourceList{
				corev1.ResourceCPU:    *resource.NewMilliQuantity(int64(float64(n.cpuAlloc)*n.usage), resource.DecimalSI),
				corev1.ResourceMemory: *resource.NewQuantity(int64(float64(n.memAlloc)*n.usage), resource.BinarySI),
			},
		})
	}
	return out
}
