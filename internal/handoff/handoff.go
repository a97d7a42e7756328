// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package handoff starts phase 2 as a separate process once phase 1 has
// written its checkpoints. The child is the current binary re-executed with
// a new subcommand; it shares only the working directory with the parent.
package handoff

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// executor abstracts process execution for testing.
type executor interface {
	Executable() (string, error)
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) Executable() (string, error) {
	return os.Executable()
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// Spawn runs the current binary with args and waits for it to exit. The
// child's output is copied to stdout and stderr.
func Spawn(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return spawn(ctx, defaultExec, args, stdout, stderr)
}

func spawn(ctx context.Context, ex executor, args []string, stdout, stderr io.Writer) error {
	self, err := ex.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	if err := ex.Run(ctx, self, args, stdout, stderr); err != nil {
		return fmt.Errorf("running %s %s: %w", self, strings.Join(args, " "), err)
	}
	return nil
}

// ClassifyArgs builds the argument list for the classify subcommand.
// extra is appended verbatim (e.g. persistent flags the child must see).
func ClassifyArgs(years []int, workDir string, extra ...string) []string {
	ys := make([]string, len(years))
	for i, y := range years {
		ys[i] = strconv.Itoa(y)
	}

	args := []string{"classify", "--years", strings.Join(ys, ",")}
	if workDir != "" {
		args = append(args, "--work-dir", workDir)
	}
	return append(args, extra...)
}
