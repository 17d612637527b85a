package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

var (
	statsJSON bool
	gapsJSON  bool
)

var statsCmd = &cobra.Command{
	Use:         "stats",
	Short:       "Show statistics for the live index",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationIndex: indexBuild},
	RunE:        runStats,
}

var gapsCmd = &cobra.Command{
	Use:   "gaps [query...]",
	Short: "Report queries the documents answer poorly",
	Long: `Runs each query against the live index and reports the ones that return
fewer than two passages, with suggestions for training content to add.
With no arguments, recently logged queries are analysed.`,
	Annotations: map[string]string{annotationIndex: indexBuild},
	RunE:        runGaps,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the live index as JSON",
	Long: `Writes the manifest, chunks and ingest report of the live index as JSON.
Writes to stdout when no file is given or the file is "-".`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationIndex: indexBuild},
	RunE:        runExport,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	gapsCmd.Flags().BoolVar(&gapsJSON, "json", false, "output the gap report as JSON")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(exportCmd)
}

func requireCorpus() (*Services, error) {
	return requireServices("corpus service", func(s *Services) bool { return s.Corpus != nil })
}

func runStats(cmd *cobra.Command, _ []string) error {
	svc, err := requireCorpus()
	if err != nil {
		return err
	}

	stats, err := svc.Corpus.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	if statsJSON {
		return printJSON(cmd, stats)
	}

	p := newPrinter(cmd)
	p.println(p.title("Index " + stats.IndexID))
	if !stats.BuiltAt.IsZero() {
		p.printf("  Built:     %s\n", stats.BuiltAt.Local().Format("2006-01-02 15:04:05"))
	}
	p.printf("  Documents: %d\n", stats.Documents)
	p.printf("  Chunks:    %d\n", stats.Chunks)
	p.printf("  Scorer:    %s\n", stats.Scorer)
	p.printf("  Chunking:  %d runes, %d overlap\n", stats.ChunkSize, stats.ChunkOverlap)
	if stats.Errors > 0 || stats.Warnings > 0 {
		p.printf("  Issues:    %d skipped, %d warnings\n", stats.Errors, stats.Warnings)
	}
	if len(stats.Formats) > 0 {
		formats := make([]string, 0, len(stats.Formats))
		for f, n := range stats.Formats {
			formats = append(formats, fmt.Sprintf("%s %d", f, n))
		}
		sort.Strings(formats)
		p.printf("  Formats:   %s\n", strings.Join(formats, ", "))
	}
	return nil
}

func runGaps(cmd *cobra.Command, args []string) error {
	svc, err := requireCorpus()
	if err != nil {
		return err
	}

	report, err := svc.Corpus.ContentGaps(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("failed to analyse gaps: %w", err)
	}
	if gapsJSON {
		return printJSON(cmd, report)
	}
	printGaps(newPrinter(cmd), report)
	return nil
}

func printGaps(p *printer, report *domain.GapReport) {
	p.printf("Analysed %d queries, %d gaps\n", report.Analysed, len(report.Gaps))
	if len(report.Gaps) > 0 {
		p.println()
		for _, g := range report.Gaps {
			p.printf("  %q: %d results (best %s)\n", g.Query, g.ResultCount, p.score(g.BestScore))
		}
	}
	p.println()
	p.println(p.title("Recommendations:"))
	for _, r := range report.Recommendations {
		p.printf("  - %s\n", r)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, err := requireCorpus()
	if err != nil {
		return err
	}

	if len(args) == 0 || args[0] == "-" {
		return svc.Corpus.Export(cmd.Context(), cmd.OutOrStdout())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := svc.Corpus.Export(cmd.Context(), f); err != nil {
		f.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	cmd.Printf("Exported index to %s\n", args[0])
	return nil
}
