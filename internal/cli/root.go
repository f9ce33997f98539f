// Package cli chứa các lệnh của công cụ quản trị botadmin.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions là các flag dùng chung cho mọi lệnh
type RootOptions struct {
	Format string // "json" | "text"
}

// ValidFormats là các định dạng output được hỗ trợ
var ValidFormats = []string{"text", "json"}

// NewRootCommand tạo lệnh gốc botadmin
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "botadmin",
		Short: "Bot admin maintenance tool",
		Long:  "Seed system users and merchant bot configs, inspect bot config templates.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
