// Package cli provides the deskref command-line interface built on cobra.
// Commands drive the core services through the ports in Services; the
// concrete wiring is supplied by main through SetBootstrap.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
	"github.com/custodia-labs/deskref/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// annotationIndex marks how much of the index a command needs before it runs.
const annotationIndex = "deskref/index"

const (
	// indexNone skips bootstrap entirely.
	indexNone = "none"
	// indexRestore loads the last snapshot but does not rescan sources.
	indexRestore = "restore"
	// indexBuild restores, then refreshes against the sources.
	indexBuild = "build"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	EnvFile    string
	DocsPath   string
	Verbose    bool
}

// Services holds the ports the commands drive.
type Services struct {
	Retriever driving.Retriever
	Refresher driving.Refresher
	Watcher   driving.Watcher
	Corpus    driving.CorpusService

	// Restore makes the last snapshot live. Optional.
	Restore func(ctx context.Context) error

	// Close releases held resources. Optional.
	Close func() error
}

// Bootstrap builds the services for one invocation.
type Bootstrap func(ctx context.Context, opts GlobalOptions) (*Services, error)

var (
	globalOpts GlobalOptions
	bootstrap  Bootstrap
	services   *Services
)

var rootCmd = &cobra.Command{
	Use:   "deskref",
	Short: "Front-desk knowledge base retrieval",
	Long: `deskref ingests front-desk training material (PDF, Word, Excel, text,
markdown and structured reference files), splits it into overlapping chunks
and answers "what should I say in this situation?" queries with the most
relevant passages.

The index is rebuilt whenever the documents change and the previous index
keeps serving queries until the new one is ready.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalOpts.ConfigPath, "config", "", "config file (default ~/.deskref/config.toml)")
	flags.StringVar(&globalOpts.EnvFile, "env-file", "", "env file loaded before reading the environment (default .env)")
	flags.StringVar(&globalOpts.DocsPath, "docs", "", "documents directory (overrides DOCS_PATH)")
	flags.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "print debug logging to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func indexNeed(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if need, ok := c.Annotations[annotationIndex]; ok {
			return need
		}
	}
	return indexNone
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)

	need := indexNeed(cmd)
	if need == indexNone {
		return nil
	}
	if bootstrap == nil {
		if services == nil {
			return errors.New("services not configured")
		}
		return nil
	}

	ctx := cmd.Context()
	svc, err := bootstrap(ctx, globalOpts)
	if err != nil {
		return err
	}
	services = svc

	if svc.Restore != nil {
		if err := svc.Restore(ctx); err != nil {
			return fmt.Errorf("restoring snapshot: %w", err)
		}
	}
	if need == indexBuild && svc.Refresher != nil {
		res, err := svc.Refresher.Refresh(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The previous index, if any, keeps serving.
			logger.Warn("Serving the previous index: %v", err)
			return nil
		}
		logger.Info("Index %s (%s): %d documents, %d chunks",
			res.IndexID, res.Outcome, res.Report.Documents, res.Report.Chunks)
		logReport(res.Report)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if bootstrap == nil || services == nil || services.Close == nil {
		return nil
	}
	err := services.Close()
	services = nil
	return err
}

// requireServices returns the services or an error naming the missing port.
func requireServices(port string, present func(*Services) bool) (*Services, error) {
	if services == nil || !present(services) {
		return nil, fmt.Errorf("%s not configured", port)
	}
	return services, nil
}

func logReport(r domain.IngestReport) {
	for _, e := range r.Errors {
		logger.Warn("Skipped %s: %s", e.DocumentID, e.Message)
	}
	for _, w := range r.Warnings {
		logger.Warn("%s %s: %s", w.Code, w.DocumentID, w.Message)
	}
}
