package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spikeworks/nir/internal/ir"
	"github.com/spikeworks/nir/internal/schema"
	"github.com/spikeworks/nir/internal/verify"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <module.nir>",
		Short: "Parse and verify a module without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args[0])
		},
	}
}

func runVerify(cmd *cobra.Command, modulePath string) error {
	data, err := os.ReadFile(modulePath)
	if err != nil {
		return fmt.Errorf("failed to read module: %w", err)
	}

	reg := schema.NewRegistry()
	mod, err := ir.ParseText(reg, string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", modulePath, err)
	}

	if err := verify.Verify(reg, mod); err != nil {
		var verr *verify.Error
		if errors.As(err, &verr) {
			return fmt.Errorf("%s: op %d (%s): %s must satisfy %q",
				modulePath, verr.OpIndex, verr.Op, verr.Attr, verr.Rule)
		}
		return fmt.Errorf("%s: %w", modulePath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d ops)\n", modulePath, len(mod.Ops))
	return nil
}
