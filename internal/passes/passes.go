// Package passes holds the module rewrite pipeline that runs between
// verification and compilation. Passes are pure transforms: they never
// mutate their input and either return a complete new module or an error.
package passes

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spikeworks/nir/internal/ir"
	"github.com/spikeworks/nir/internal/schema"
)

// Pass is one module-to-module rewrite.
type Pass interface {
	Name() string
	Run(m *ir.Module) (*ir.Module, error)
}

// Error wraps a failure inside a named pass.
type Error struct {
	Pass string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pass %q: %v", e.Pass, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Manager runs a fixed sequence of passes, stopping at the first failure.
type Manager struct {
	logger *slog.Logger
	passes []Pass
}

// NewManager creates a pipeline over the given passes. A nil logger
// disables pass tracing.
func NewManager(logger *slog.Logger, ps ...Pass) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{logger: logger, passes: ps}
}

// Default returns the standard pipeline: version upgrades first so that
// canonicalization sees only current schemas.
func Default(reg *schema.Registry, logger *slog.Logger) *Manager {
	return NewManager(logger,
		&UpgradeVersions{Registry: reg},
		&Canonicalize{},
	)
}

// Run feeds the module through each pass in order. The input module is
// never modified; on error the partial result is discarded.
func (mg *Manager) Run(m *ir.Module) (*ir.Module, error) {
	cur := m
	for _, p := range mg.passes {
		next, err := p.Run(cur)
		if err != nil {
			return nil, &Error{Pass: p.Name(), Err: err}
		}
		mg.logger.Debug("pass applied", "pass", p.Name(), "ops_in", len(cur.Ops), "ops_out", len(next.Ops))
		cur = next
	}
	return cur, nil
}
