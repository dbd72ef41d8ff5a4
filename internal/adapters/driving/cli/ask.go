package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

var askImage string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and exit",
	Long: `Runs a single question through the full pipeline: classification,
context retrieval from the index, and the model call. The answer is
printed and delivered the same way the watcher would deliver it.

With --image, the question is read from a screenshot instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askImage, "image", "", "answer the question in a screenshot file")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}

	event := domain.ClipboardEvent{
		Kind:       domain.EventClipboard,
		CapturedAt: time.Now(),
	}
	switch {
	case askImage != "":
		data, err := os.ReadFile(askImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		event.Kind = domain.EventScreenshot
		event.Image = data
	case len(args) == 1 && args[0] != "":
		event.Text = args[0]
	default:
		return errors.New("provide a question or --image")
	}

	// An index scan may still be needed for context, but ask must work
	// on a cold index too; retrieval is best-effort either way.
	answer, err := pipelineService.Process(context.Background(), event)
	if err != nil {
		if errors.Is(err, domain.ErrNotAQuestion) {
			cmd.Println("That doesn't look like a question.")
			return nil
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)
	if answer.FromCache {
		cmd.Println("(served from cache)")
	}
	return nil
}
