package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/lens/core/points"
	"github.com/adalundhe/lens/core/precision"
	"github.com/adalundhe/lens/core/provider"
)

var (
	evaluateSamples int
	evaluateLimit   int
	evaluateEf      int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure approximate-search precision against exact search",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, backend, pred, err := loadSession()
		if err != nil {
			return err
		}

		samples := evaluateSamples
		if samples <= 0 {
			samples = cfg.Precision.SampleSize
		}
		limit := evaluateLimit
		if limit <= 0 {
			limit = cfg.Precision.Limit
		}
		ef := evaluateEf
		if ef <= 0 {
			ef = cfg.Precision.HnswEf
		}

		ctx := cmd.Context()
		pts, err := backend.ScrollSample(ctx, rootCollection, samples, pred)
		if err != nil {
			return err
		}
		ids := make([]points.PointID, len(pts))
		for i, p := range pts {
			ids[i] = p.ID
		}

		evaluator := precision.NewEvaluator(backend, nil)
		summary, err := evaluator.Run(ctx, ids, precision.Request{
			Collection: rootCollection,
			Limit:      limit,
			Predicate:  pred,
			Using:      rootUsing,
			Params:     provider.SearchParams{HnswEf: ef},
		}, func(sample precision.Sample) {
			fmt.Fprintln(os.Stderr, sample.LogLine)
		})
		if err != nil {
			return err
		}

		fmt.Printf("precision@%d over %d samples: mean %.4f stddev %.4f\n",
			limit, summary.Count, summary.Mean, summary.StdDev)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().IntVar(&evaluateSamples, "samples", 0, "points to sample")
	evaluateCmd.Flags().IntVar(&evaluateLimit, "limit", 0, "top-k depth of paired queries")
	evaluateCmd.Flags().IntVar(&evaluateEf, "ef", 0, "approximate candidate-list size under test")
	rootCmd.AddCommand(evaluateCmd)
}
