package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/convert"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/errors"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/snapshot"
)

func TestDemoSource_Clusters(t *testing.T) {
	got, err := NewDemoSource(false).Clusters()
	require.NoError(t, err)
	require.Len(t, got, len(demoClusters))

	active := 0
	for i, c := range got {
		if i > 0 {
			assert.Less(t, got[i-1].Name, c.Name, "clusters sorted by name")
		}
		_, ok := demoClusters[c.Name]
		assert.True(t, ok, "listed cluster %q has fixtures", c.Name)
		if c.IsActive {
			active++
			assert.Equal(t, demoActive, c.Name)
		}
	}
	assert.Equal(t, 1, active)
}

func TestDemoSource_Resolve(t *testing.T) {
	d := NewDemoSource(false)

	name, err := d.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, demoActive, name)

	_, err = d.Resolve("prod-ap-south-1")
	assert.Equal(t, errors.ErrUnknownCluster, errors.CodeOf(err))
}

// Every fixture cluster must survive the full fetch and aggregation path.
func TestDemoSource_FixturesAggregate(t *testing.T) {
	d := NewDemoSource(true)
	conv := convert.NewConverter("", nil)

	for name, nodes := range demoClusters {
		t.Run(name, func(t *testing.T) {
			p, err := d.NewProvider(name)
			require.NoError(t, err)

			inv, err := p.Fetch(context.Background())
			require.NoError(t, err)
			assert.Len(t, inv.Nodes, len(nodes))
			assert.Len(t, inv.NodeUsage, len(nodes))

			set, err := snapshot.BuildNodes(conv, inv.Nodes, inv.Pods)
			require.NoError(t, err)
			assert.Empty(t, set.Orphaned)

			summary := snapshot.ComputeSummary(set)
			assert.Greater(t, summary.GPU.Total, int64(0))
			assert.Equal(t, len(nodes), summary.NodeCount)
		})
	}
}

func TestDemoSource_ProdUSGPUFigures(t *testing.T) {
	p, err := NewDemoSource(false).NewProvider(demoActive)
	require.NoError(t, err)
	inv, err := p.Fetch(context.Background())
	require.NoError(t, err)

	set, err := snapshot.BuildNodes(convert.NewConverter("", nil), inv.Nodes, inv.Pods)
	require.NoError(t, err)
	summary := snapshot.ComputeSummary(set)

	assert.Equal(t, int64(32), summary.GPU.Total)
	assert.Equal(t, int64(23), summary.GPU.Used)
	require.Len(t, summary.GPUByType, 2)
	assert.Equal(t, "NVIDIA-A100-SXM4-80GB", summary.GPUByType[0].GPUType)
	assert.Equal(t, int64(9), summary.GPUByType[0].Used)
	assert.Equal(t, "NVIDIA-H100-SXM5-80GB", summary.GPUByType[1].GPUType)
	assert.Equal(t, int64(14), summary.GPUByType[1].Used)
}

func TestDemoSource_UnknownProvider(t *testing.T) {
	_, err := NewDemoSource(false).NewProvider("nope")
	assert.Equal(t, errors.ErrUnknownCluster, errors.CodeOf(err))
}
