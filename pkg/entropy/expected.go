package entropy

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/apd/v3"
)

const (
	// DefaultPrecision is the number of significant decimal digits used to
	// evaluate the expected entropy series.
	DefaultPrecision uint32 = 64
	// DefaultTerms is where the correction series is cut off. The series is
	// infinite; 414 terms is an approximation that holds for c = n/256 well
	// below the cut-off, i.e. for the calibrated sample lengths.
	DefaultTerms = 414

	// MinCalibratedLen and MaxCalibratedLen bound the sample lengths the
	// classifier threshold was calibrated for. Outside this range false
	// positives and false negatives become markedly more frequent.
	MinCalibratedLen = 32
	MaxCalibratedLen = 65536
)

// Calibrated reports whether n lies inside the calibrated operating range.
func Calibrated(n int) bool {
	return n >= MinCalibratedLen && n <= MaxCalibratedLen
}

// Model evaluates the mean Shannon entropy of a random sample of n bytes,
// following Goubault-Larrecq and Olivain, "Detecting Subverted Cryptographic
// Protocols by Entropy Checking" (LSV-06-13):
//
//	c = n / m
//	H = log2(m) + log2(c) - e^-c · Σ_{j=1}^{Terms} c^(j-1) · log2(j) / (j-1)!
//
// Finite random samples fall short of log2(m) bits; the series models that
// bias so short buffers are not misclassified as structured.
type Model struct {
	// Precision is the number of significant decimal digits carried through
	// the evaluation. Powers of c and the factorials overflow float64 long
	// before the series converges, so the sum is computed in decimal.
	Precision uint32
	// Terms is the number of series terms summed.
	Terms int
}

// DefaultModel returns the model with the default precision and term count.
func DefaultModel() Model {
	return Model{Precision: DefaultPrecision, Terms: DefaultTerms}
}

// Expected evaluates the model for sample length n.
func (m Model) Expected(n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	precision := m.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	terms := m.Terms
	if terms <= 0 {
		terms = DefaultTerms
	}

	ctx := apd.BaseContext.WithPrecision(precision)
	ed := apd.MakeErrDecimal(ctx)

	var ln2, c, lnc, h0 apd.Decimal
	ed.Ln(&ln2, apd.New(2, 0))
	ed.Quo(&c, apd.New(int64(n), 0), apd.New(Alphabet, 0))
	ed.Ln(&lnc, &c)
	ed.Quo(&h0, &lnc, &ln2)
	ed.Add(&h0, apd.New(8, 0), new(apd.Decimal).Set(&h0)) // log2(256)

	logs, err := log2Table(precision, terms)
	if err != nil {
		return 0, err
	}

	// term holds c^(j-1) / (j-1)! and is advanced by a factor c/j per step.
	term := apd.New(1, 0)
	sum := new(apd.Decimal)
	for j := 1; j <= terms; j++ {
		if j > 1 {
			var product apd.Decimal
			ed.Mul(&product, term, logs[j-1])
			sum = ed.Add(new(apd.Decimal), sum, &product)
		}
		next := ed.Mul(new(apd.Decimal), term, &c)
		term = ed.Quo(new(apd.Decimal), next, apd.New(int64(j), 0))
	}

	var negC, decay, correction, h apd.Decimal
	ed.Neg(&negC, &c)
	ed.Exp(&decay, &negC)
	ed.Mul(&correction, &decay, sum)
	ed.Sub(&h, &h0, &correction)
	if err := ed.Err(); err != nil {
		return 0, fmt.Errorf("evaluate expected entropy for n=%d: %w", n, err)
	}

	v, err := h.Float64()
	if err != nil {
		return 0, fmt.Errorf("convert expected entropy for n=%d: %w", n, err)
	}
	return v, nil
}

var (
	log2Mu     sync.Mutex
	log2Tables = make(map[uint32][]*apd.Decimal)
)

// log2Table returns log2(j) for j = 1..terms at the given precision. Tables
// are shared between evaluations and extended on demand; their entries are
// never modified once stored.
func log2Table(precision uint32, terms int) ([]*apd.Decimal, error) {
	log2Mu.Lock()
	defer log2Mu.Unlock()

	table := log2Tables[precision]
	if len(table) >= terms {
		return table[:terms], nil
	}

	ctx := apd.BaseContext.WithPrecision(precision)
	ed := apd.MakeErrDecimal(ctx)
	var ln2 apd.Decimal
	ed.Ln(&ln2, apd.New(2, 0))
	for j := len(table) + 1; j <= terms; j++ {
		var lnj apd.Decimal
		ed.Ln(&lnj, apd.New(int64(j), 0))
		table = append(table, ed.Quo(new(apd.Decimal), &lnj, &ln2))
	}
	if err := ed.Err(); err != nil {
		return nil, fmt.Errorf("build log2 table: %w", err)
	}
	log2Tables[precision] = table
	return table[:terms], nil
}
