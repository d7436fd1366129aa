package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newClustersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "List available cluster contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clusters, _, err := a.service.ListClusters(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), clusters)
		},
	}
}

func newNodesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes [cluster]",
		Short: "Print every node with its pods",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := a.service.GetNodesWithPods(cmd.Context(), a.clusterArg(args))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nodes)
		},
	}
}

func newSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [cluster]",
		Short: "Print the cluster-wide resource summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.service.GetClusterSummary(cmd.Context(), a.clusterArg(args))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

// clusterArg returns the optional cluster argument, falling back to the
// configured default context. "" selects the active context.
func (a *app) clusterArg(args []string) string {
	if len(args) == 0 {
		return a.cfg.DefaultContext
	}
	return args[0]
}
