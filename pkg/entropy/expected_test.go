package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_KnownValues(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{32, 4.878164371794039},
		{64, 5.762358009838686},
		{256, 7.172754610846995},
		{1024, 7.80803470778758},
		{1500, 7.872309998386331},
		{4096, 7.954412472652046},
		{65536, 7.997180394546927},
	}
	m := DefaultModel()
	for _, tt := range tests {
		got, err := m.Expected(tt.n)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "n=%d", tt.n)
	}
}

func TestModel_InvalidLength(t *testing.T) {
	for _, n := range []int{0, -1, -65536} {
		_, err := DefaultModel().Expected(n)
		assert.ErrorIs(t, err, ErrInvalidLength)
	}
}

func TestModel_MonotonicInCalibratedRange(t *testing.T) {
	m := DefaultModel()
	prev, err := m.Expected(MinCalibratedLen)
	require.NoError(t, err)

	for n := MinCalibratedLen * 2; n <= MaxCalibratedLen; n *= 2 {
		for _, k := range []int{n - n/4, n} {
			cur, err := m.Expected(k)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, cur, prev, "n=%d", k)
			assert.Less(t, cur, MaxEntropy)
			prev = cur
		}
	}
}

func TestModel_ZeroFieldsUseDefaults(t *testing.T) {
	want, err := DefaultModel().Expected(1500)
	require.NoError(t, err)

	got, err := Model{}.Expected(1500)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestModel_PrecisionIsPerModel(t *testing.T) {
	high, err := Model{Precision: 80, Terms: DefaultTerms}.Expected(1024)
	require.NoError(t, err)
	low, err := Model{Precision: 40, Terms: DefaultTerms}.Expected(1024)
	require.NoError(t, err)

	assert.InDelta(t, high, low, 1e-12)
}

func TestCalibrated(t *testing.T) {
	assert.False(t, Calibrated(31))
	assert.True(t, Calibrated(32))
	assert.True(t, Calibrated(65536))
	assert.False(t, Calibrated(65537))
}
