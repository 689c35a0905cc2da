// Package office shells out to an external document converter for office
// containers. Format parsing stays in the helper binary; this package only
// owns the temp-file plumbing around it.
package office

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes an external command and returns stdout and stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

type Converter struct {
	runner  Runner
	command string
}

// NewConverter builds a converter around an external helper such as pandoc.
// The helper is invoked as `<command> --to=plain <file>`.
func NewConverter(command string) *Converter {
	if command == "" {
		command = "pandoc"
	}
	return &Converter{runner: execRunner{}, command: command}
}

// NewConverterWithRunner is the test seam.
func NewConverterWithRunner(command string, runner Runner) *Converter {
	return &Converter{runner: runner, command: command}
}

func (c *Converter) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "si-office-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, safeBase(filename))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}

	stdout, stderr, err := c.runner.Run(ctx, c.command, "--to=plain", path)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", c.command, err, strings.TrimSpace(string(stderr)))
	}
	return string(stdout), nil
}

func safeBase(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "document.docx"
	}
	return base
}
