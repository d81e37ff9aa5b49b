package entropy

import (
	"bytes"
	"compress/gzip"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEncryptedData_RandomBuffer(t *testing.T) {
	data := randomBytes(t, 65536, 42)

	ok, err := IsEncryptedData(data)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsEncryptedData_RepeatingPattern(t *testing.T) {
	data := repeatPattern([]byte{0xab, 0xcd}, 65536)

	ok, err := IsEncryptedData(data)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsEncrypted_ShortRandomBuffers(t *testing.T) {
	for _, n := range []int{64, 256, 1500} {
		data := randomBytes(t, n, int64(n))
		ok, err := IsEncrypted(data, 0, n, DefaultEpsilon)
		require.NoError(t, err)
		assert.True(t, ok, "n=%d", n)
	}
}

func TestIsEncrypted_Text(t *testing.T) {
	text := []byte(strings.Repeat("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n", 40))

	ok, err := IsEncrypted(text, 0, len(text), DefaultEpsilon)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsEncrypted_RangeErrors(t *testing.T) {
	data := randomBytes(t, 64, 1)

	_, err := IsEncrypted(data, 10, 5, DefaultEpsilon)
	assert.ErrorIs(t, err, ErrRange)

	_, err = IsEncrypted(data, 0, len(data)+1, DefaultEpsilon)
	assert.ErrorIs(t, err, ErrRange)

	_, err = IsEncryptedData(nil)
	assert.ErrorIs(t, err, ErrRange)
}

func TestClassifier_Verdict(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write(randomBytes(t, 8192, 3))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	c := NewClassifier(nil)
	v, err := c.Classify(compressed.Bytes(), 0, compressed.Len())
	require.NoError(t, err)

	assert.Equal(t, compressed.Len(), v.Length)
	assert.True(t, v.Calibrated)
	assert.True(t, v.Encrypted)
	assert.InDelta(t, math.Abs(v.Expected-v.Actual), v.Delta, 1e-12)
	assert.Equal(t, DefaultEpsilon, c.Epsilon())
}

func TestClassifier_CustomModelGetsOwnCache(t *testing.T) {
	c := NewClassifier(&ClassifierOptions{
		Epsilon: 0.25,
		Model:   Model{Precision: 48, Terms: DefaultTerms},
	})
	assert.NotSame(t, defaultCache, c.Cache())

	_, err := c.IsEncrypted(randomBytes(t, 128, 9), 0, 128)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Cache().Len())

	assert.Same(t, defaultCache, NewClassifier(DefaultClassifierOptions()).Cache())
}

func TestClassifier_UncalibratedFlag(t *testing.T) {
	v, err := NewClassifier(nil).Classify([]byte("abc"), 0, 3)
	require.NoError(t, err)
	assert.False(t, v.Calibrated)
}
