package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

var refreshJSON bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan the documents and rebuild the index if anything changed",
	Long: `Scans the document sources and compares them with the live index.
If any document was added, removed or modified, every document is read and
chunked again and the new index replaces the old one. Documents that cannot
be read are reported and skipped; a failed build keeps the previous index.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationIndex: indexRestore},
	RunE:        runRefresh,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index up to date as documents change",
	Long: `Builds the index, then watches the document directories and rebuilds
whenever a file is created, modified or deleted. Runs until interrupted.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationIndex: indexBuild},
	RunE:        runWatch,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshJSON, "json", false, "output the refresh result as JSON")
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(watchCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("refresher", func(s *Services) bool { return s.Refresher != nil })
	if err != nil {
		return err
	}

	res, err := svc.Refresher.Refresh(cmd.Context())
	if res == nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if refreshJSON {
		if jsonErr := printJSON(cmd, res); jsonErr != nil {
			return jsonErr
		}
	} else {
		printRefresh(newPrinter(cmd), res)
	}
	if res.Outcome == domain.OutcomeFailed {
		if err == nil {
			err = errors.New(res.Reason)
		}
		return fmt.Errorf("refresh failed: %w", err)
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("watcher", func(s *Services) bool { return s.Watcher != nil })
	if err != nil {
		return err
	}

	p := newPrinter(cmd)
	p.println("Watching for document changes. Press Ctrl+C to stop.")
	err = svc.Watcher.Watch(cmd.Context(), func(res *domain.RefreshResult) {
		printRefresh(p, res)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printRefresh(p *printer, res *domain.RefreshResult) {
	switch res.Outcome {
	case domain.OutcomeRebuilt:
		p.printf("%s index %s: %d documents, %d chunks\n",
			p.title("Rebuilt"), res.IndexID, res.Report.Documents, res.Report.Chunks)
		if !res.Diff.Empty() {
			p.println(p.muted(fmt.Sprintf("  %d added, %d removed, %d changed",
				len(res.Diff.Added), len(res.Diff.Removed), len(res.Diff.Changed))))
		}
	case domain.OutcomeUnchanged:
		p.printf("Unchanged: index %s is up to date\n", res.IndexID)
	case domain.OutcomeSuperseded:
		p.println(p.muted("Superseded by a newer refresh"))
	case domain.OutcomeFailed:
		p.printf("%s %s; index %s stays live\n", p.warn("Failed:"), res.Reason, res.IndexID)
	}

	for _, e := range res.Report.Errors {
		p.printf("  %s %s: %s\n", p.warn("skipped"), e.DocumentID, e.Message)
	}
	for _, w := range res.Report.Warnings {
		target := w.DocumentID
		if target == "" {
			target = "corpus"
		}
		p.printf("  %s %s: %s\n", p.warn(w.Code), target, w.Message)
	}
}
