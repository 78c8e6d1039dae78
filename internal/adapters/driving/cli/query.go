package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

var (
	flagTop         int
	flagJSON        bool
	flagInteractive bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Route a query against the index",
	Long: `Embeds the query, finds the nearest chunks and reports the winning
domain together with the supporting context and sources.`,
	Args: cobra.ArbitraryArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&flagTop, "top", "k", 0, "number of neighbours to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&flagJSON, "json", false, "print the full routed result as JSON")
	queryCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "read queries from stdin in a loop")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagInteractive {
		return queryLoop(cmd, a)
	}

	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("no query given (or use --interactive)")
	}

	result, err := a.router.Route(ctx, query, flagTop)
	if err != nil {
		return err
	}
	return printResult(cmd, result)
}

// queryLoop reads queries from stdin until EOF or "exit".
func queryLoop(cmd *cobra.Command, a *app) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		cmd.Print("query> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		result, err := a.router.Route(cmd.Context(), line, flagTop)
		if err != nil {
			cmd.PrintErrf("error: %v\n", err)
			continue
		}
		if err := printResult(cmd, result); err != nil {
			return err
		}
	}
}

func printResult(cmd *cobra.Command, result *domain.RoutedResult) error {
	if flagJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Print(formatResult(result))
	return nil
}

// formatResult renders a routed result for the terminal.
func formatResult(result *domain.RoutedResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Domain: %s (score %d)\n", result.Domain, result.Score)

	if len(result.Domains) > 1 {
		parts := make([]string, 0, len(result.Domains))
		for _, entry := range result.Domains {
			parts = append(parts, fmt.Sprintf("%s:%d", entry.Label, entry.Count))
		}
		fmt.Fprintf(&b, "Ranking: %s\n", strings.Join(parts, ", "))
	}

	if len(result.Tags) > 0 {
		tags := make([]string, 0, len(result.Tags))
		for _, entry := range result.Tags {
			tags = append(tags, entry.Label)
		}
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(tags, ", "))
	}

	for _, src := range result.Sources {
		fmt.Fprintf(&b, "  - %s\n", src)
	}

	if result.Context != "" {
		fmt.Fprintf(&b, "\n%s\n", result.Context)
	}
	return b.String()
}
