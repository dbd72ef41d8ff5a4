package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change clipbrd settings. Values live in a TOML file under
the clipbrd config directory; API keys come from the environment
(OPENAI_API_KEY, ANTHROPIC_API_KEY) or a .env file next to the config.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration key. Values that parse as booleans, integers or
floats are stored typed; everything else is stored as a string.

Common keys:
  watch.folder                  document folder to index
  watch.screenshots             screenshot folder to watch
  model.name                    model name (provider derived from it)
  model.base_url                endpoint for OpenAI-compatible providers
  retrieval.top_k               context chunks per question
  cache.ttl_minutes             answer cache lifetime
  rate_limit.burst              model call burst budget`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if configService == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Configuration (%s)\n", configService.Path())
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Folder:      %s\n", orUnset(appSettings.WatchFolder))
	cmd.Printf("  Screenshots: %s\n", orUnset(configService.GetString("watch.screenshots")))
	cmd.Printf("  Rescan:      %s\n", appSettings.ScanInterval)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Chunk tokens: %d (overlap %d)\n",
		appSettings.Chunking.ChunkTokens, appSettings.Chunking.OverlapTokens)
	cmd.Printf("  BM25:         k1=%.2f b=%.2f\n", appSettings.Scoring.K1, appSettings.Scoring.B)
	cmd.Printf("  Top-k:        %d\n", appSettings.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Model]")
	cmd.Printf("  Model:    %s\n", appSettings.Model.Model)
	cmd.Printf("  Provider: %s\n", appSettings.Model.EffectiveProvider().Description())
	if appSettings.Model.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", appSettings.Model.BaseURL)
	}
	cmd.Printf("  Timeout:  %s (retries %d)\n", appSettings.Model.Timeout, appSettings.Model.MaxRetries)
	cmd.Println()

	cmd.Println("[Budget]")
	cmd.Printf("  Cache:      %d answers, TTL %s\n", appSettings.Cache.Capacity, appSettings.Cache.TTL)
	cmd.Printf("  Rate limit: burst %d, %.2f/s refill, max wait %s\n",
		appSettings.RateLimit.Burst, appSettings.RateLimit.RefillPerSecond, appSettings.RateLimit.MaxWait)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if configService == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configService.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if configService == nil {
		return errors.New("config store not configured")
	}

	cmd.Println(configService.Path())
	return nil
}

// parseValue stores numbers and booleans typed, everything else as
// string. Integers are tried before booleans so "1" stays a number.
func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
