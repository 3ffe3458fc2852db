package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/lens/core/visualize"
)

var (
	visualizeAlgorithm  string
	visualizeColorField string
	visualizeColorScore bool
	visualizeLimit      int
)

var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Project sampled embeddings into two dimensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, backend, pred, err := loadSession()
		if err != nil {
			return err
		}

		limit := visualizeLimit
		if limit <= 0 {
			limit = cfg.Visualize.MaxPoints
		}

		ctx := cmd.Context()
		pts, err := backend.ScrollSample(ctx, rootCollection, limit, pred)
		if err != nil {
			return err
		}

		var colorSpec *visualize.ColorSpec
		switch {
		case visualizeColorScore:
			colorSpec = &visualize.ColorSpec{Mode: visualize.ColorByScore}
		case visualizeColorField != "":
			colorSpec = &visualize.ColorSpec{
				Mode:  visualize.ColorByField,
				Field: visualizeColorField,
			}
		}
		canvas := visualize.Rect{Width: cfg.Visualize.CanvasWidth, Height: cfg.Visualize.CanvasHeight}

		pipeline := visualize.NewPipeline(nil)
		run, err := pipeline.Start(ctx, visualize.Request{
			Points:           pts,
			Using:            rootUsing,
			Algorithm:        visualize.Algorithm(visualizeAlgorithm),
			SnapshotInterval: cfg.Visualize.SnapshotInterval.Std(),
			Color:            colorSpec,
			Canvas:           &canvas,
		})
		if err != nil {
			return err
		}

		var final []visualize.Coordinate
		for snapshot := range run.Snapshots() {
			fmt.Fprintf(os.Stderr, "snapshot: %d coordinates done=%v\n",
				len(snapshot.Coordinates), snapshot.Done)
			if snapshot.Done {
				final = snapshot.Coordinates
			}
		}
		if err := run.Err(); err != nil {
			return err
		}

		out := struct {
			Coordinates []visualize.Coordinate `json:"coordinates"`
			Colors      []string               `json:"colors,omitempty"`
		}{
			Coordinates: final,
			Colors:      run.Colors(),
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	},
}

func init() {
	visualizeCmd.Flags().StringVar(&visualizeAlgorithm, "algorithm", "pca", "reduction algorithm: pca, umap or tsne")
	visualizeCmd.Flags().StringVar(&visualizeColorField, "color-by", "", "payload field for categorical coloring")
	visualizeCmd.Flags().BoolVar(&visualizeColorScore, "color-score", false, "color points by relevance score gradient")
	visualizeCmd.Flags().IntVar(&visualizeLimit, "limit", 0, "points to sample")
	rootCmd.AddCommand(visualizeCmd)
}
