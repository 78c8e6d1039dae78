package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Ingest new documents from the corpus",
	Long: `Scans the corpus root and ingests every document not yet in the
index. Subdirectory names become domain labels. Already-ingested
documents are skipped by content hash.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd.Printf("Scanning %s...\n", a.cfg.Corpus.Root)

	// Run the scan in the background and poll progress.
	type outcome struct {
		report *domain.IngestReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := a.ingestor.Scan(ctx)
		done <- outcome{report: report, err: err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-done:
			if out.err != nil {
				return out.err
			}
			r := out.report
			cmd.Printf("\rScanned %d files: %d ingested, %d skipped, %d failed (%d chunks, %s)\n",
				r.Scanned, r.Ingested, r.Skipped, r.Failed, r.ChunksAdded, r.Duration.Round(time.Millisecond))
			return nil
		case <-ticker.C:
			status := a.ingestor.Status()
			if status.DocumentsProcessed > lastCount {
				cmd.Printf("\rProcessing... %d documents", status.DocumentsProcessed)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}
