package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/signalnine/seedbench/internal/config"
	"github.com/signalnine/seedbench/internal/report"
	"github.com/signalnine/seedbench/internal/result"
	"github.com/spf13/cobra"
)

var (
	flagFormat   string
	flagBaseline string
	flagOut      string
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir]",
		Short: "Compare a stored run against the baseline",
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
			baselineDir, err := resolveBaseline(cfg.Results.Dir, flagBaseline)
			if err != nil {
				return fmt.Errorf("baseline: %w", err)
			}

			var w io.Writer = os.Stdout
			if flagOut != "" {
				f, err := os.Create(flagOut)
				if err != nil {
					return fmt.Errorf("creating report: %w", err)
				}
				defer f.Close()
				w = f
			}
			return report.Generate(runDir, baselineDir, flagFormat, w, cfg.Report.ReportOptions())
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "html", "output format (html, table, json)")
	cmd.Flags().StringVar(&flagBaseline, "baseline", result.BaselineLink, "baseline run (path, latest, baseline or none)")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "write the report to a file instead of stdout")
	return cmd
}

// resolveBaseline maps the --baseline flag to a run directory. "none" and a
// missing baseline link both mean no baseline.
func resolveBaseline(resultsDir, arg string) (string, error) {
	switch arg {
	case "none":
		return "", nil
	case result.BaselineLink:
		return result.Resolve(resultsDir, result.BaselineLink)
	}
	return resolveRunDir(resultsDir, arg)
}
