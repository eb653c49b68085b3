package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resumatch/src/core/search"
)

// evaluateCmd replays a batch of queries against a running server and
// reports how the pipeline behaved on each.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Replay a query set against a running server",
	Long: `The evaluate command reads a JSON file of queries, sends each one to the
search endpoint, and prints per-query statistics plus an aggregate summary.`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("input", "i", "", "Input JSON file path")
	evaluateCmd.MarkFlagRequired("input")
	evaluateCmd.Flags().StringP("server", "s", "http://localhost:8080", "Server base URL")
}

type evaluateQuery struct {
	Query string `json:"query"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	serverURL, _ := cmd.Flags().GetString("server")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %v", err)
	}

	var queries []evaluateQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return fmt.Errorf("failed to parse input file: %v", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}

	var cached, empty int
	var totalConfidence float64
	for _, q := range queries {
		body, err := json.Marshal(map[string]string{"query": q.Query})
		if err != nil {
			return err
		}

		resp, err := client.Post(serverURL+"/api/search", "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("search request failed: %v", err)
		}

		var result search.Response
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("search returned status %d for %q", resp.StatusCode, q.Query)
		}

		if result.Cached {
			cached++
		}
		if len(result.References) == 0 {
			empty++
		}
		totalConfidence += result.SearchStats.Confidence

		fmt.Printf("%-50q cached=%-5v results=%-3d confidence=%.2f\n",
			q.Query, result.Cached, len(result.References), result.SearchStats.Confidence)
	}

	if len(queries) > 0 {
		fmt.Printf("\n%d queries: %d cached, %d empty, avg confidence %.2f\n",
			len(queries), cached, empty, totalConfidence/float64(len(queries)))
	}

	return nil
}
