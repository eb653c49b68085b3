package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resumatch",
	Short: "Adaptive semantic search over a resume corpus",
	Long: `resumatch answers free-text queries against an indexed resume corpus.
It analyzes each query, checks a semantic answer cache, retrieves and
reranks candidates, and learns from past queries and user feedback.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
