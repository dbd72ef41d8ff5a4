package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/watch"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driving/monitor"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

var watchFolder string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the clipboard assistant",
	Long: `Monitors the clipboard for questions and answers them using context
from your document folder. The document index stays fresh in the
background. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFolder, "folder", "f", "", "document folder to index (overrides config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	folderOverride = watchFolder
	if err := ensureServices(); err != nil {
		return err
	}

	if appSettings.WatchFolder == "" {
		return errors.New("no document folder configured: set watch.folder or pass --folder")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := indexService.Start(ctx); err != nil {
			logger.Error("Index manager stopped: %v", err)
		}
	}()

	go func() {
		if err := pipelineService.Run(ctx); err != nil {
			logger.Error("Pipeline stopped: %v", err)
		}
	}()

	if dir := configService.GetString("watch.screenshots"); dir != "" {
		shots := monitor.NewScreenshots(pipelineService, watch.New(), dir)
		go func() {
			if err := shots.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Screenshot watcher stopped: %v", err)
			}
		}()
	}

	cmd.Printf("Watching clipboard. Documents: %s\n", appSettings.WatchFolder)
	cmd.Println("Press Ctrl+C to stop.")

	err := monitor.New(pipelineService).Run(ctx)
	if errors.Is(err, context.Canceled) {
		cmd.Println("\nStopped.")
		return nil
	}
	return err
}
