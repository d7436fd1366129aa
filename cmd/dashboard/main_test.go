package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

func run(t *testing.T, args ...string) *bytes.Buffer {
	t.Helper()
	t.Setenv("KGD_LOG_LEVEL", "error")
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return &out
}

func TestClustersCommand_Demo(t *testing.T) {
	out := run(t, "clusters", "--demo")

	var clusters []model.ClusterInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &clusters))
	assert.Len(t, clusters, 3)
}

func TestSummaryCommand_Demo(t *testing.T) {
	out := run(t, "summary", "prod-eu-west-1", "--demo")

	var summary model.ClusterSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 3, summary.NodeCount)
	require.Len(t, summary.GPUByType, 1)
	assert.Equal(t, "NVIDIA-L40S", summary.GPUByType[0].GPUType)
}

func TestNodesCommand_ContextFlag(t *testing.T) {
	out := run(t, "nodes", "--demo", "--context", "staging-apne-1")

	var nodes []model.NodeDetail
	require.NoError(t, json.Unmarshal(out.Bytes(), &nodes))
	require.Len(t, nodes, 2)
	assert.Equal(t, "cpu-node-staging-01", nodes[0].Name)
}

func TestSummaryCommand_UnknownCluster(t *testing.T) {
	t.Setenv("KGD_LOG_LEVEL", "error")
	t.Chdir(t.TempDir())

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"summary", "nope", "--demo"})
	assert.Error(t, cmd.Execute())
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServe_APIListenFailureReleasesHealthPort(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	healthPort := freePort(t)
	t.Setenv("KGD_LOG_LEVEL", "error")
	t.Setenv("DASHBOARD_PORT", strconv.Itoa(busy.Addr().(*net.TCPAddr).Port))
	t.Setenv("KGD_HEALTH_PORT", strconv.Itoa(healthPort))
	t.Chdir(t.TempDir())

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--demo"})
	require.Error(t, cmd.Execute())

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", healthPort))
	require.NoError(t, err, "health server must be stopped when the api server fails to start")
	require.NoError(t, ln.Close())
}
