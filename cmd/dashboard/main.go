package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KimMachineGun/automemlimit"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/api"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/config"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/convert"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/dashboard"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/errors"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/health"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/inventory"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/mempressure"
	"github.com/kubeadapt/kubeadapt-dashboard/internal/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs once config is loaded.
type app struct {
	cfg      config.Config
	metrics  *observability.Metrics
	errs     *errors.ErrorCollector
	registry *inventory.Registry
	service  *dashboard.Service
}

func newRootCommand() *cobra.Command {
	var (
		a          app
		kubeconfig string
		kubeCtx    string
		demo       bool
	)

	root := &cobra.Command{
		Use:          "kubeadapt-dashboard",
		Short:        "GPU, CPU and memory occupancy across Kubernetes clusters",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("kubeconfig") {
				cfg.Kubeconfig = kubeconfig
			}
			if cmd.Flags().Changed("context") {
				cfg.DefaultContext = kubeCtx
			}
			if cmd.Flags().Changed("demo") {
				cfg.DemoMode = demo
			}
			cfg.Version = version
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			observability.SetupLogging(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			return a.init(cfg)
		},
	}

	root.PersistentFlags().StringVar(&kubeconfig, "kubeconfig", "", "Path to a kubeconfig file (overrides KUBECONFIG)")
	root.PersistentFlags().StringVar(&kubeCtx, "context", "", "Kubeconfig context to use as the active cluster")
	root.PersistentFlags().BoolVar(&demo, "demo", false, "Serve built-in demo clusters instead of real ones")

	root.AddCommand(
		newServeCommand(&a),
		newClustersCommand(&a),
		newNodesCommand(&a),
		newSummaryCommand(&a),
	)
	return root
}

// init builds the shared infrastructure: metrics, error collector, cluster
// registry and aggregation service.
func (a *app) init(cfg config.Config) error {
	a.cfg = cfg
	a.metrics = observability.NewMetrics().WithRuntimeCollectors()
	a.errs = errors.NewErrorCollector(errors.RealClock{})

	var source inventory.Source
	if cfg.DemoMode {
		slog.Info("demo mode enabled, serving fixture clusters")
		source = inventory.NewDemoSource(cfg.UsageMetrics)
	} else {
		source = inventory.NewKubeconfigSource(inventory.KubeconfigOptions{
			Kubeconfig:     cfg.Kubeconfig,
			DefaultContext: cfg.DefaultContext,
			Timeout:        cfg.RequestTimeout,
			UsageMetrics:   cfg.UsageMetrics,
		})
	}

	registry, err := inventory.NewRegistry(source, cfg.ClientCacheSize, a.metrics)
	if err != nil {
		return err
	}
	a.registry = registry

	conv := convert.NewConverter(cfg.GPUResource, convert.NewGPUTypeResolver(cfg.GPUTypeLabels))
	a.service = dashboard.NewService(registry, conv, a.metrics, a.errs)
	return nil
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API, frontend and health servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	slog.Info("kubeadapt-dashboard starting",
		"version", cfg.Version,
		"addr", cfg.Addr(),
		"health_port", cfg.HealthPort,
		"demo", cfg.DemoMode,
		"usage_metrics", cfg.UsageMetrics,
		"gpu_resource", cfg.GPUResource,
	)

	if clusters, active, err := a.service.ListClusters(ctx); err != nil {
		slog.Warn("no cluster reachable at startup", "error", err)
	} else {
		slog.Info("clusters discovered", "count", len(clusters), "active", active)
	}

	healthSrv := health.NewServer(cfg.HealthPort, a.metrics, a.service, a.errs, a.registry, cfg.DebugEndpoints)
	if err := healthSrv.Start(); err != nil {
		return err
	}
	defer stopServer("health", healthSrv)

	apiSrv, err := api.NewServer(api.Options{
		Addr:        cfg.Addr(),
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
	}, a.service, a.metrics)
	if err != nil {
		return err
	}
	if err := apiSrv.Start(); err != nil {
		return err
	}
	defer stopServer("api", apiSrv)

	memMon := mempressure.NewMonitor(a.registry, mempressure.Options{Interval: 30 * time.Second})
	memMon.Start()
	defer memMon.Stop()

	<-ctx.Done()
	slog.Info("shutdown signal received")
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
}

// stopServer shuts s down with a bounded grace period.
func stopServer(name string, s stopper) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Error("server shutdown error", "server", name, "error", err)
	}
}
