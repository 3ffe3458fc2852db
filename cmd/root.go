// Package cmd provides the CLI for the lens exploration console.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lens",
	Short: "Lens - an exploration console for vector collections",
	Long: `Lens explores a vector-similarity collection: browse nearest-neighbor
graphs, project embeddings into two dimensions, and measure approximate
search precision against exact search.`,
}

var (
	rootConfigPath string
	rootPointsPath string
	rootCollection string
	rootFilter     string
	rootUsing      string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "path to a lens config file")
	rootCmd.PersistentFlags().StringVar(&rootPointsPath, "points", "", "path to a JSON points file")
	rootCmd.PersistentFlags().StringVar(&rootCollection, "collection", "default", "collection name")
	rootCmd.PersistentFlags().StringVar(&rootFilter, "filter", "", "filter text, e.g. \"status:active id:42\"")
	rootCmd.PersistentFlags().StringVar(&rootUsing, "using", "", "named vector field to search on")
}

func Execute() error {
	return rootCmd.Execute()
}
