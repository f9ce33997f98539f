package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"bot_admin/internal/botconfig"
)

// NewConfigCommand tạo nhóm lệnh "config"
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect bot config templates",
	}
	cmd.AddCommand(newConfigFlattenCommand(rootOpts))
	return cmd
}

func newConfigFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flatten <template-file>",
		Short: "Print the minimal (flattened) view of a bot config template",
		Long: `Load a bot config template (YAML or JSON) and print every field key
with its current value, falling back to the factory value for fields
that have none. This is what a newly created merchant config returns
from GET /bot-config/minimal/:merchant_id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := botconfig.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			doc := botconfig.NewFromTemplate(tmpl, "template", nil)
			return writeFlat(cmd.OutOrStdout(), rootOpts.Format, botconfig.Flatten(doc))
		},
	}
}

func writeFlat(w io.Writer, format string, flat map[string]any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(flat)
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, err := json.Marshal(flat[k])
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		if _, err := fmt.Fprintf(w, "%s = %s\n", k, raw); err != nil {
			return err
		}
	}
	return nil
}
