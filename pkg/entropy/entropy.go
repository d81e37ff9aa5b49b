// Package entropy classifies byte buffers as random-looking (encrypted or
// compressed) or structured by comparing their Shannon entropy with the
// entropy a truly random sample of the same length is expected to have.
package entropy

import (
	"fmt"
	"math"
)

// Alphabet is the number of distinct symbols in byte data.
const Alphabet = 256

// MaxEntropy is log2(Alphabet), the entropy of a perfectly uniform distribution.
const MaxEntropy = 8.0

// Sample is a read-only window [Start, End) into Data.
type Sample struct {
	Data  []byte
	Start int
	End   int
}

// NewSample validates the window and returns it.
func NewSample(data []byte, start, end int) (Sample, error) {
	if err := checkRange(len(data), start, end); err != nil {
		return Sample{}, err
	}
	return Sample{Data: data, Start: start, End: end}, nil
}

// Len returns the number of bytes in the window.
func (s Sample) Len() int { return s.End - s.Start }

// Bytes returns the window as a slice sharing the underlying buffer.
func (s Sample) Bytes() []byte { return s.Data[s.Start:s.End] }

// Entropy returns the Shannon entropy of the window in bits per byte.
func (s Sample) Entropy() float64 {
	h := HistogramOf(s)
	return h.Entropy()
}

// Histogram counts occurrences of each byte value.
type Histogram [Alphabet]int

// HistogramOf builds the frequency histogram of a sample.
func HistogramOf(s Sample) Histogram {
	var h Histogram
	for _, b := range s.Bytes() {
		h[b]++
	}
	return h
}

// Total returns the sum of all counts.
func (h *Histogram) Total() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// Entropy returns -Σ p·log2(p) over the non-zero buckets.
func (h *Histogram) Entropy() float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	n := float64(total)
	var e float64
	for _, c := range h {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		e -= p * math.Log2(p)
	}
	return e
}

// Shannon computes the Shannon entropy of data[start:end].
func Shannon(data []byte, start, end int) (float64, error) {
	s, err := NewSample(data, start, end)
	if err != nil {
		return 0, err
	}
	return s.Entropy(), nil
}

// ShannonAll computes the Shannon entropy of the whole buffer.
func ShannonAll(data []byte) (float64, error) {
	return Shannon(data, 0, len(data))
}

func checkRange(size, start, end int) error {
	if start < 0 || end > size || start >= end {
		return fmt.Errorf("%w: start=%d end=%d len=%d", ErrRange, start, end, size)
	}
	return nil
}
