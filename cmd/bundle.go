package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/signalnine/seedbench/internal/bundle"
	"github.com/signalnine/seedbench/internal/config"
	"github.com/spf13/cobra"
)

var flagBundleOut string

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Inline local headers into one submission file and copy it to the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			text, err := bundle.Inline(cfg.Bundle.Entry, cfg.Bundle.Depth, cfg.Bundle.Define)
			if err != nil {
				return err
			}
			switch flagBundleOut {
			case "":
				if err := bundle.ToClipboard(context.Background(), cfg.Bundle.Clipboard, text); err != nil {
					return err
				}
				fmt.Printf("solution (%d bytes) copied to clipboard\n", len(text))
			case "-":
				fmt.Print(text)
			default:
				if err := os.WriteFile(flagBundleOut, []byte(text), 0o644); err != nil {
					return fmt.Errorf("writing bundle: %w", err)
				}
				fmt.Printf("solution (%d bytes) written to %s\n", len(text), flagBundleOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagBundleOut, "out", "o", "", "write the bundle to a file (- for stdout) instead of the clipboard")
	return cmd
}
