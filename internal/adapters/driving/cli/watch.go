package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cerebro/internal/core/services"
	"github.com/custodia-labs/cerebro/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the corpus and ingest changes continuously",
	Long: `Runs an initial scan, then watches the corpus root for changes and
re-ingests after a quiet period. A periodic full rescan catches
anything the watcher missed. Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd.Printf("Initial scan of %s...\n", a.cfg.Corpus.Root)
	report, err := a.ingestor.Scan(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Ingested %d documents (%d chunks)\n", report.Ingested, report.ChunksAdded)

	w, err := watcher.New(a.cfg.Corpus.Root, a.cfg.Watch.Debounce(), a.ingestor)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() { errCh <- w.Start(ctx) }()
	defer w.Stop()

	if interval := a.cfg.Watch.RescanInterval(); interval > 0 {
		rescanner, err := services.NewRescanner(interval, a.ingestor)
		if err != nil {
			return err
		}
		go func() { errCh <- rescanner.Start(ctx) }()
		defer rescanner.Stop()
	}

	cmd.Println("Watching for changes (Ctrl-C to stop)...")

	err = <-errCh
	if errors.Is(err, context.Canceled) {
		cmd.Println("\nStopped.")
		return nil
	}
	return err
}
