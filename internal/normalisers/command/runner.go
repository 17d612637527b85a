// Package command runs the external extraction tools used by the PDF and
// legacy Office normalisers (pdftotext, catdoc, xls2csv).
package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Ensure ExecRunner implements Runner.
var _ Runner = ExecRunner{}

// Run executes name with args. A missing binary is reported as domain.ErrToolNotFound.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := CheckAvailable(name); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// CheckAvailable returns domain.ErrToolNotFound if name is not on PATH.
func CheckAvailable(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}
	return nil
}

// WithTempFile writes content to a temporary file with the given extension,
// calls fn with its path and removes the file afterwards.
func WithTempFile(content []byte, ext string, fn func(path string) error) error {
	f, err := os.CreateTemp("", "deskref-*"+ext)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	return fn(path)
}
