// Package scan walks a capture file and classifies every payload.
package scan

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"firestige.xyz/cipherscope/internal/log"
	"firestige.xyz/cipherscope/internal/metrics"
	"firestige.xyz/cipherscope/pkg/entropy"
	"firestige.xyz/cipherscope/pkg/pcapfile"
)

// Options configures a Scanner.
type Options struct {
	// MinLength skips payloads shorter than this many bytes.
	MinLength int
	// KeepPlain includes plain verdicts in the report, not only encrypted ones.
	KeepPlain bool
}

// Scanner classifies the payloads of capture files.
type Scanner struct {
	classifier *entropy.Classifier
	opts       Options
	logger     log.Logger
}

// NewScanner creates a scanner around a classifier.
func NewScanner(classifier *entropy.Classifier, opts Options) *Scanner {
	if opts.MinLength < 1 {
		opts.MinLength = 1
	}
	return &Scanner{
		classifier: classifier,
		opts:       opts,
		logger:     log.GetLogger().WithField("component", "scanner"),
	}
}

// Scan reads path to the end and returns the report.
func (s *Scanner) Scan(path string) (*Report, error) {
	f, err := pcapfile.Open(path, pcapfile.ModeRead)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	label := filepath.Base(path)
	report := &Report{
		RunID:     uuid.NewString(),
		File:      path,
		StartedAt: time.Now().UTC(),
		ByteOrder: f.ByteOrder().String(),
		SnapLen:   f.Header().SnapLen,
		LinkType:  f.LinkType().String(),
		Epsilon:   s.classifier.Epsilon(),
	}
	logger := s.logger.WithFields(map[string]interface{}{
		"run":  report.RunID,
		"file": label,
	})
	logger.Infof("scanning capture file, byte order %s", report.ByteOrder)

	for index := 0; ; index++ {
		rec, err := f.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", index, err)
		}

		report.Summary.Records++
		report.Summary.Bytes += uint64(len(rec.Data))
		metrics.RecordsReadTotal.WithLabelValues(label).Inc()
		metrics.PayloadBytesTotal.WithLabelValues(label).Add(float64(len(rec.Data)))
		if rec.Truncated {
			report.Summary.Truncated++
			metrics.RecordsTruncatedTotal.WithLabelValues(label).Inc()
			logger.WithField("record", index).Warnf("trailing record truncated to %d bytes", rec.InclLen)
		}

		if len(rec.Data) < s.opts.MinLength {
			report.Summary.Skipped++
			metrics.ClassificationsTotal.WithLabelValues(label, metrics.VerdictSkipped).Inc()
			continue
		}

		v, err := s.classifier.Classify(rec.Data, 0, len(rec.Data))
		if err != nil {
			return nil, fmt.Errorf("classify record %d: %w", index, err)
		}
		metrics.PayloadEntropyBits.Observe(v.Actual)

		verdict := metrics.VerdictPlain
		if v.Encrypted {
			verdict = metrics.VerdictEncrypted
			report.Summary.Encrypted++
		} else {
			report.Summary.Plain++
		}
		if !v.Calibrated {
			report.Summary.Uncalibrated++
		}
		metrics.ClassificationsTotal.WithLabelValues(label, verdict).Inc()

		if v.Encrypted || s.opts.KeepPlain {
			report.Records = append(report.Records, RecordVerdict{
				Index:     index,
				Timestamp: rec.Timestamp(),
				OrigLen:   rec.OrigLen,
				Truncated: rec.Truncated,
				Verdict:   v,
			})
		}
		if logger.IsDebugEnabled() {
			logger.WithField("record", index).Debugf("entropy %.4f expected %.4f -> %s", v.Actual, v.Expected, verdict)
		}
	}

	metrics.ExpectedCacheSize.Set(float64(s.classifier.Cache().Len()))
	report.Duration = time.Since(report.StartedAt)
	logger.WithFields(map[string]interface{}{
		"records":   report.Summary.Records,
		"encrypted": report.Summary.Encrypted,
		"skipped":   report.Summary.Skipped,
	}).Info("scan finished")
	return report, nil
}
