package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/cobra"

	"firestige.xyz/cipherscope/internal/log"
	"firestige.xyz/cipherscope/pkg/pcapfile"
)

var writeCmd = &cobra.Command{
	Use:   "write -i INPUT -o OUTPUT",
	Short: "Re-encode a capture file",
	Long: `Copy the records of any microsecond or nanosecond libpcap file into a
big-endian capture file. Payloads longer than the snaplen are cut to it while
the original length is preserved.

Examples:
  cipherscope write -i tcpdump.pcap -o normalized.pcap
  cipherscope write -i more.pcap -o normalized.pcap --append`,
	RunE: runWriteCommand,
}

var (
	writeInput   string
	writeOutput  string
	writeAppend  bool
	writeSnapLen uint32
)

func init() {
	writeCmd.Flags().StringVarP(&writeInput, "input", "i", "", "input capture file (required)")
	writeCmd.Flags().StringVarP(&writeOutput, "output", "o", "", "output capture file (required)")
	writeCmd.Flags().BoolVarP(&writeAppend, "append", "a", false, "append to an existing output file")
	writeCmd.Flags().Uint32Var(&writeSnapLen, "snaplen", 0, "output snaplen (default from config)")
	writeCmd.MarkFlagRequired("input")
	writeCmd.MarkFlagRequired("output")
}

func runWriteCommand(cmd *cobra.Command, args []string) error {
	snaplen := cfg.Capture.SnapLen
	if writeSnapLen > 0 {
		snaplen = writeSnapLen
	}
	mode := pcapfile.ModeWrite
	if writeAppend {
		mode = pcapfile.ModeAppend
	}

	n, truncated, err := convertCapture(writeInput, writeOutput, mode, snaplen)
	if err != nil {
		return err
	}
	log.GetLogger().WithFields(map[string]interface{}{
		"input":  writeInput,
		"output": writeOutput,
	}).Infof("wrote %d records, %d cut to snaplen %d", n, truncated, snaplen)
	fmt.Fprintf(cmd.OutOrStdout(), "%d records written to %s\n", n, writeOutput)
	return nil
}

// convertCapture copies every packet of input into output.
func convertCapture(input, output string, mode pcapfile.Mode, snaplen uint32) (written, truncated int, err error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	r, err := pcapgo.NewReader(in)
	if err != nil {
		return 0, 0, fmt.Errorf("read input header: %w", err)
	}
	if r.LinkType() != pcapfile.LinkType {
		return 0, 0, fmt.Errorf("%w: input link type %s", pcapfile.ErrLinkType, r.LinkType())
	}

	out := pcapfile.New(snaplen)
	if err := out.Open(output, mode); err != nil {
		return 0, 0, err
	}
	defer out.Close()

	for {
		data, ci, err := r.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, truncated, fmt.Errorf("read input packet %d: %w", written, err)
		}
		if limit := out.MaxPayload(); uint32(len(data)) > limit {
			data = data[:limit]
			truncated++
		}
		ts := ci.Timestamp
		if _, err := out.Write(data, uint32(ts.Unix()), uint32(ts.Nanosecond()/1000), uint32(ci.Length)); err != nil {
			return written, truncated, err
		}
		written++
	}
	return written, truncated, out.Close()
}
