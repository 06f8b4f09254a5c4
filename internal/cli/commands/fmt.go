package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spikeworks/nir/internal/ir"
	"github.com/spikeworks/nir/internal/schema"
)

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <module.nir>",
		Short: "Reprint a module in canonical form",
		Long: `Fmt parses the module and reprints it with attributes in their
declared order and literals in fixed format. By default the result goes
to stdout; --write rewrites the file in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args[0], write)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file instead of printing")
	return cmd
}

func runFmt(cmd *cobra.Command, modulePath string, write bool) error {
	data, err := os.ReadFile(modulePath)
	if err != nil {
		return fmt.Errorf("failed to read module: %w", err)
	}

	reg := schema.NewRegistry()
	mod, err := ir.ParseText(reg, string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", modulePath, err)
	}

	text := mod.Text(reg)
	if write {
		if err := os.WriteFile(modulePath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to rewrite module: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}
