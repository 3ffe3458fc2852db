package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/lens/core/graph"
	"github.com/adalundhe/lens/core/points"
)

var (
	exploreSeedID string
	exploreExpand []string
	exploreSample int
	exploreTree   bool
	exploreLimit  int
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Build a similarity graph from a seed point",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, backend, pred, err := loadSession()
		if err != nil {
			return err
		}

		limit := exploreLimit
		if limit <= 0 {
			limit = cfg.Graph.NeighborLimit
		}

		explorer := graph.NewExplorer(backend, graph.Options{
			Collection: rootCollection,
			Using:      rootUsing,
			Predicate:  pred,
			Limit:      limit,
		})

		ctx := cmd.Context()
		if exploreSample > 0 {
			if err := explorer.Sample(ctx, exploreSample, cfg.Graph.SampleEdgeLimit, exploreTree); err != nil {
				return err
			}
		} else {
			var req graph.SeedRequest
			if exploreSeedID != "" {
				id := points.NewPointID(exploreSeedID)
				seed, err := backend.BulkRetrieve(ctx, rootCollection, []points.PointID{id}, true, true)
				if err != nil {
					return err
				}
				if len(seed) == 0 {
					return fmt.Errorf("seed point %s not found", id)
				}
				req.Point = &seed[0]
			}
			if err := explorer.Seed(ctx, req); err != nil {
				return err
			}
			for _, raw := range exploreExpand {
				if err := explorer.Expand(ctx, points.NewPointID(raw)); err != nil {
					return err
				}
			}
		}

		result := explorer.Graph()
		fmt.Fprintf(os.Stderr, "graph: %d nodes, %d edges\n", len(result.Nodes), len(result.Edges))
		return json.NewEncoder(os.Stdout).Encode(result)
	},
}

func init() {
	exploreCmd.Flags().StringVar(&exploreSeedID, "seed", "", "seed point id (default: arbitrary sample)")
	exploreCmd.Flags().StringSliceVar(&exploreExpand, "expand", nil, "node ids to expand after seeding")
	exploreCmd.Flags().IntVar(&exploreSample, "sample", 0, "pairwise sample size instead of seeding")
	exploreCmd.Flags().BoolVar(&exploreTree, "tree", false, "reduce sampled edges to a spanning forest")
	exploreCmd.Flags().IntVar(&exploreLimit, "limit", 0, "neighbors per query")
	rootCmd.AddCommand(exploreCmd)
}
