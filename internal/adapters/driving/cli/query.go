package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryLimit int

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the document index",
	Long:  `Searches the indexed documents and prints the best-matching chunks.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 5, "maximum number of results")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if indexService == nil {
		return errors.New("index service not configured")
	}

	results, err := indexService.Query(context.Background(), args[0], queryLimit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results[i].Path, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Content, 120))
		cmd.Println()
	}

	return nil
}

// snippet flattens content to a single line of at most n characters.
func snippet(content string, n int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if len(flat) <= n {
		return flat
	}
	return flat[:n] + "..."
}
