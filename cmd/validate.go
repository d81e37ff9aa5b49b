package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment overrides,
and report the effective classifier settings.

Examples:
  cipherscope validate -c /etc/cipherscope/config.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(),
			"VALID: epsilon %.3f, precision %d digits, %d terms, min length %d, snaplen %d, report %s\n",
			cfg.Entropy.Epsilon, cfg.Entropy.Precision, cfg.Entropy.Terms,
			cfg.Entropy.MinLength, cfg.Capture.SnapLen, cfg.Report.Format)
		return nil
	},
}
