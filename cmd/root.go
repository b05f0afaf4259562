package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "seedbench",
		Short: "Seeded benchmark runner and candidate-vs-baseline reports",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "seedbench.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newBaselineCmd())
	root.AddCommand(newBundleCmd())
	return root
}
