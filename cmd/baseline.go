package cmd

import (
	"fmt"

	"github.com/signalnine/seedbench/internal/config"
	"github.com/signalnine/seedbench/internal/result"
	"github.com/spf13/cobra"
)

func newBaselineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "baseline [run-dir]",
		Short: "Mark a stored run as the baseline (default: latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			target := result.LatestLink
			if len(args) > 0 {
				target = args[0]
			}
			runDir, err := resolveRunDir(cfg.Results.Dir, target)
			if err != nil {
				return err
			}
			if err := result.MarkBaseline(cfg.Results.Dir, runDir); err != nil {
				return err
			}
			fmt.Printf("Baseline: %s\n", runDir)
			return nil
		},
	}
}
