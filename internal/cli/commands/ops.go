package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spikeworks/nir/internal/schema"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List the registered operation schemas",
		Long: `Ops lists every operation the registry knows, including superseded
versions that the upgrade pass still accepts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOps(cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format (table|json)")
	return cmd
}

type opInfo struct {
	Op      string   `json:"op"`
	Current bool     `json:"current"`
	Attrs   []string `json:"attrs"`
	Doc     string   `json:"doc"`
}

func runOps(cmd *cobra.Command, format string) error {
	reg := schema.NewRegistry()

	var infos []opInfo
	for _, spec := range reg.List() {
		current, _ := reg.Current(spec.Dialect, spec.Name)
		attrs := make([]string, len(spec.Attrs))
		for i, a := range spec.Attrs {
			attrs[i] = fmt.Sprintf("%s: %s", a.Name, a.Kind)
			if !a.Required {
				attrs[i] += "?"
			}
		}
		infos = append(infos, opInfo{
			Op:      spec.Header(),
			Current: spec.Version == current,
			Attrs:   attrs,
			Doc:     spec.Doc,
		})
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Op", "Current", "Attributes", "Description"})
	for _, info := range infos {
		current := ""
		if info.Current {
			current = "yes"
		}
		t.AppendRow(table.Row{info.Op, current, strings.Join(info.Attrs, ", "), info.Doc})
	}
	t.Render()
	return nil
}
