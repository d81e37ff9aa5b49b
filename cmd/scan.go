package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/cipherscope/internal/log"
	"firestige.xyz/cipherscope/internal/metrics"
	"firestige.xyz/cipherscope/internal/scan"
	"firestige.xyz/cipherscope/pkg/entropy"
)

var scanCmd = &cobra.Command{
	Use:   "scan -f FILE [FILE...]",
	Short: "Classify the payloads of capture files",
	Long: `Read every record of one or more capture files and report the payloads
that look encrypted.

Examples:
  cipherscope scan -f capture.pcap
  cipherscope scan -f a.pcap -f b.pcap --format json --all`,
	RunE: runScanCommand,
}

var (
	scanFiles     []string
	scanEpsilon   float64
	scanMinLength int
	scanFormat    string
	scanAll       bool
)

func init() {
	scanCmd.Flags().StringArrayVarP(&scanFiles, "file", "f", nil, "capture file to scan (repeatable)")
	scanCmd.Flags().Float64Var(&scanEpsilon, "epsilon", 0, "entropy tolerance (default from config)")
	scanCmd.Flags().IntVar(&scanMinLength, "min-length", 0, "skip payloads shorter than this (default from config)")
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "report format text/json/yaml (default from config)")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "list plain payloads too")
	scanCmd.MarkFlagRequired("file")
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	opts := cfg.Entropy.ClassifierOptions()
	if scanEpsilon > 0 {
		opts.Epsilon = scanEpsilon
	}
	minLength := cfg.Entropy.MinLength
	if scanMinLength > 0 {
		minLength = scanMinLength
	}
	format := cfg.Report.Format
	if scanFormat != "" {
		format = scanFormat
	}

	classifier := entropy.NewClassifier(opts)
	scanner := scan.NewScanner(classifier, scan.Options{MinLength: minLength, KeepPlain: scanAll})

	out := cmd.OutOrStdout()
	for _, file := range scanFiles {
		report, err := scanner.Scan(file)
		if err != nil {
			return fmt.Errorf("scan %s: %w", file, err)
		}
		if err := report.Encode(out, format); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}

	if cfg.Metrics.Enabled {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.GetLogger().WithError(err).Warn("failed to export metrics")
		}
	}
	return nil
}

