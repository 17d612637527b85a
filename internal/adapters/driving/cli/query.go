package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

var (
	queryTopK      int
	queryThreshold float64
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [situation]",
	Short: "Find the passages most relevant to a guest situation",
	Long: `Scores every chunk in the live index against the query and prints the
best matches, most relevant first. Only chunks scoring at or above the
similarity threshold are returned, at most top-k of them.

Example:
  deskref query "guest says they were charged twice for the minibar"`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annotationIndex: indexBuild},
	RunE:        runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "maximum number of results (default from configuration)")
	queryCmd.Flags().Float64VarP(&queryThreshold, "threshold", "t", 0, "minimum similarity in [0,1] (default from configuration)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	svc, err := requireServices("retriever", func(s *Services) bool { return s.Retriever != nil })
	if err != nil {
		return err
	}

	var opts domain.QueryOptions
	if cmd.Flags().Changed("top-k") {
		opts = opts.WithTopK(queryTopK)
	}
	if cmd.Flags().Changed("threshold") {
		opts = opts.WithThreshold(queryThreshold)
	}

	text := strings.Join(args, " ")
	res, err := svc.Retriever.Query(cmd.Context(), text, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, res)
	}
	printResults(newPrinter(cmd), res)
	return nil
}

func printResults(p *printer, res *domain.RetrievalResult) {
	if res.Len() == 0 {
		p.println("No passages scored at or above the threshold.")
		p.println(p.muted(fmt.Sprintf("index %s, top_k %d, threshold %.2f", res.IndexID, res.TopK, res.Threshold)))
		return
	}

	p.println(p.title("Results:"))
	p.println()
	for i, sc := range res.Results {
		label := sc.Chunk.DocumentID
		if sc.Chunk.Heading != "" {
			label += " · " + p.heading(sc.Chunk.Heading)
		}
		p.printf("  [%d] %s (%s)\n", i+1, label, p.score(sc.Score))
		p.println(indent(sc.Chunk.Content, "      "))
		p.println()
	}
	p.println(p.muted(fmt.Sprintf("index %s, top_k %d, threshold %.2f", res.IndexID, res.TopK, res.Threshold)))
}
