package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and corpus state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.engine.Stats()
	cmd.Printf("Corpus root:  %s\n", a.cfg.Corpus.Root)
	cmd.Printf("Data dir:     %s\n", a.cfg.Corpus.DataDir)
	cmd.Printf("Model:        %s (%d dimensions)\n", stats.Model, stats.Dimension)
	cmd.Printf("Documents:    %d\n", stats.Documents)
	cmd.Printf("Index rows:   %d\n", stats.Rows)
	return nil
}
