package cmd

import (
	"fmt"
	"strings"

	"github.com/signalnine/seedbench/internal/config"
	"github.com/signalnine/seedbench/internal/result"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			runs, err := result.ListRuns(cfg.Results.Dir)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Printf("No runs in %s\n", cfg.Results.Dir)
				return nil
			}
			fmt.Println("Runs:")
			for _, r := range runs {
				fmt.Printf("  - %s\n", describeRun(r))
			}
			return nil
		},
	}
}

func describeRun(r result.RunInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %d/%d seeds", r.Dir, r.Manifest.Name, r.Records, len(r.Manifest.Seeds))
	if r.Manifest.Revision != "" {
		fmt.Fprintf(&b, " @%s", r.Manifest.Revision)
	}
	if r.IsLatest {
		b.WriteString(" (latest)")
	}
	if r.IsBaseline {
		b.WriteString(" (baseline)")
	}
	return b.String()
}
