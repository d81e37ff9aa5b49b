package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"firestige.xyz/cipherscope/pkg/entropy"
)

// Report is the result of scanning one capture file.
type Report struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	File      string          `json:"file" yaml:"file"`
	StartedAt time.Time       `json:"started_at" yaml:"started_at"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
	ByteOrder string          `json:"byte_order" yaml:"byte_order"`
	SnapLen   uint32          `json:"snaplen" yaml:"snaplen"`
	LinkType  string          `json:"link_type" yaml:"link_type"`
	Epsilon   float64         `json:"epsilon" yaml:"epsilon"`
	Summary   Summary         `json:"summary" yaml:"summary"`
	Records   []RecordVerdict `json:"records,omitempty" yaml:"records,omitempty"`
}

// Summary aggregates verdict counts.
type Summary struct {
	Records      int    `json:"records" yaml:"records"`
	Bytes        uint64 `json:"bytes" yaml:"bytes"`
	Encrypted    int    `json:"encrypted" yaml:"encrypted"`
	Plain        int    `json:"plain" yaml:"plain"`
	Skipped      int    `json:"skipped" yaml:"skipped"`
	Truncated    int    `json:"truncated" yaml:"truncated"`
	Uncalibrated int    `json:"uncalibrated" yaml:"uncalibrated"`
}

// RecordVerdict is the classification of one record.
type RecordVerdict struct {
	Index     int             `json:"index" yaml:"index"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	OrigLen   uint32          `json:"orig_len" yaml:"orig_len"`
	Truncated bool            `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Verdict   entropy.Verdict `json:"verdict" yaml:"verdict"`
}

// Encode writes the report as text, json or yaml.
func (r *Report) Encode(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return r.encodeText(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (r *Report) encodeText(w io.Writer) error {
	fmt.Fprintf(w, "file:       %s\n", r.File)
	fmt.Fprintf(w, "run:        %s\n", r.RunID)
	fmt.Fprintf(w, "byte order: %s  snaplen: %d  link: %s\n", r.ByteOrder, r.SnapLen, r.LinkType)
	fmt.Fprintf(w, "records:    %d (%d bytes), encrypted %d, plain %d, skipped %d, truncated %d\n",
		r.Summary.Records, r.Summary.Bytes, r.Summary.Encrypted, r.Summary.Plain,
		r.Summary.Skipped, r.Summary.Truncated)
	if len(r.Records) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nINDEX\tTIME\tLEN\tENTROPY\tEXPECTED\tDELTA\tVERDICT")
	for _, rv := range r.Records {
		verdict := "plain"
		if rv.Verdict.Encrypted {
			verdict = "encrypted"
		}
		if !rv.Verdict.Calibrated {
			verdict += " (uncalibrated)"
		}
		if rv.Truncated {
			verdict += " (truncated)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.4f\t%.4f\t%.4f\t%s\n",
			rv.Index, rv.Timestamp.Format(time.RFC3339Nano), rv.Verdict.Length,
			rv.Verdict.Actual, rv.Verdict.Expected, rv.Verdict.Delta, verdict)
	}
	return tw.Flush()
}
