// Package commands implements the nir subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spikeworks/nir/internal/config"
)

// Context carries the resolved project environment into each subcommand.
type Context struct {
	Config     *config.ProjectConfig
	Logger     *slog.Logger
	ProjectDir string
}

type contextKey struct{}

// WithContext attaches the command context for subcommands to pick up.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromCommand retrieves the command context, falling back to defaults so
// subcommands stay usable in isolation (tests construct them directly).
func FromCommand(cmd *cobra.Command) *Context {
	if c, ok := cmd.Context().Value(contextKey{}).(*Context); ok {
		return c
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.LoadFromDir(cwd)
	if err != nil {
		cfg = &config.ProjectConfig{}
	}
	return &Context{
		Config:     cfg,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		ProjectDir: cwd,
	}
}
