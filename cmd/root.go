// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/cipherscope/internal/config"
	"firestige.xyz/cipherscope/internal/log"
)

const defaultConfigFile = "/etc/cipherscope/config.yml"

var (
	// Global flags
	configFile string
	logLevel   string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cipherscope",
	Short: "cipherscope - entropy based detection of encrypted payloads in capture files",
	Long: `cipherscope reads libpcap capture files and flags payloads whose Shannon
entropy is indistinguishable from random data of the same length.

The expected entropy of a random sample is computed from a closed-form series
and cached per length. Verdicts are calibrated for payloads of 32 to 65536
bytes; outside this range false positives and negatives increase.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile,
		"config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log level (trace/debug/info/warn/error)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(entropyCmd)
	rootCmd.AddCommand(expectedCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadConfig reads the config file and sets up logging. A missing default
// config file is not an error; an explicitly given one must exist.
func loadConfig(cmd *cobra.Command, args []string) error {
	path := configFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := log.Init(&cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}
