// Command deskref answers front-desk questions from training documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/deskref/internal/adapters/driving/cli"
	"github.com/custodia-labs/deskref/internal/app"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap loads the layered configuration and wires the application.
func bootstrap(ctx context.Context, opts cli.GlobalOptions) (*cli.Services, error) {
	settings, _, err := app.LoadSettings(app.Options{
		ConfigPath: opts.ConfigPath,
		EnvFile:    opts.EnvFile,
		DocsPath:   opts.DocsPath,
	})
	if err != nil {
		return nil, err
	}

	a, err := app.New(settings)
	if err != nil {
		return nil, err
	}
	if err := a.Ping(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return &cli.Services{
		Retriever: a.Retriever,
		Refresher: a.Controller,
		Watcher:   a.Controller,
		Corpus:    a.Corpus,
		Restore:   a.Restore,
		Close:     a.Close,
	}, nil
}
