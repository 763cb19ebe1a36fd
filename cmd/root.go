// Package cmd implements the ragapi command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragapi",
	Short: "ragapi - retrieval-augmented generation HTTP service",
	Long: `ragapi serves retrieval-augmented generation over HTTP.

Two flows are exposed: a static flow that always retrieves before
answering, and an agentic flow where the model decides when to search.
Documents are stored in PostgreSQL with pgvector; completions and
embeddings go through Gemini.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newVersionCmd())
}
