package entropy

import "math"

// DefaultEpsilon is the default tolerance between measured and expected
// entropy. Lowering it trades false positives for false negatives.
const DefaultEpsilon = 0.5

// ClassifierOptions configures a Classifier.
type ClassifierOptions struct {
	Epsilon float64
	Model   Model
}

// DefaultClassifierOptions returns the default epsilon and model.
func DefaultClassifierOptions() *ClassifierOptions {
	return &ClassifierOptions{
		Epsilon: DefaultEpsilon,
		Model:   DefaultModel(),
	}
}

// Verdict is the outcome of classifying one sample.
type Verdict struct {
	Length     int     `json:"length" yaml:"length"`
	Actual     float64 `json:"actual" yaml:"actual"`
	Expected   float64 `json:"expected" yaml:"expected"`
	Delta      float64 `json:"delta" yaml:"delta"`
	Encrypted  bool    `json:"encrypted" yaml:"encrypted"`
	Calibrated bool    `json:"calibrated" yaml:"calibrated"`
}

// Classifier flags samples whose entropy is within Epsilon of the entropy
// expected from random data of the same length.
type Classifier struct {
	epsilon float64
	cache   *Cache
}

// NewClassifier creates a classifier. Classifiers built with the default
// model share the process-wide cache.
func NewClassifier(opts *ClassifierOptions) *Classifier {
	if opts == nil {
		opts = DefaultClassifierOptions()
	}
	epsilon := opts.Epsilon
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	cache := defaultCache
	if opts.Model != DefaultModel() {
		cache = NewCache(opts.Model.Expected)
	}
	return &Classifier{epsilon: epsilon, cache: cache}
}

// NewClassifierWithCache creates a classifier that resolves expected values
// through the given cache.
func NewClassifierWithCache(epsilon float64, cache *Cache) *Classifier {
	return &Classifier{epsilon: epsilon, cache: cache}
}

// Epsilon returns the configured tolerance.
func (c *Classifier) Epsilon() float64 { return c.epsilon }

// Cache returns the expected entropy cache used by the classifier.
func (c *Classifier) Cache() *Cache { return c.cache }

// Classify measures data[start:end] and compares it with the model.
func (c *Classifier) Classify(data []byte, start, end int) (Verdict, error) {
	s, err := NewSample(data, start, end)
	if err != nil {
		return Verdict{}, err
	}
	actual := s.Entropy()
	expected, err := c.cache.GetOrCompute(s.Len())
	if err != nil {
		return Verdict{}, err
	}
	delta := math.Abs(actual - expected)
	return Verdict{
		Length:     s.Len(),
		Actual:     actual,
		Expected:   expected,
		Delta:      delta,
		Encrypted:  delta < c.epsilon,
		Calibrated: Calibrated(s.Len()),
	}, nil
}

// IsEncrypted reports whether data[start:end] looks random.
func (c *Classifier) IsEncrypted(data []byte, start, end int) (bool, error) {
	v, err := c.Classify(data, start, end)
	if err != nil {
		return false, err
	}
	return v.Encrypted, nil
}

// IsEncrypted reports whether data[start:end] is within eps of the expected
// entropy of random data. Results are only calibrated for sample lengths
// between MinCalibratedLen and MaxCalibratedLen.
func IsEncrypted(data []byte, start, end int, eps float64) (bool, error) {
	return NewClassifierWithCache(eps, defaultCache).IsEncrypted(data, start, end)
}

// IsEncryptedData classifies the whole buffer with DefaultEpsilon.
func IsEncryptedData(data []byte) (bool, error) {
	return IsEncrypted(data, 0, len(data), DefaultEpsilon)
}
