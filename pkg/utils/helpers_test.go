package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    int
		expected int
	}{
		{name: "below range", value: 0, expected: 5},
		{name: "lower bound", value: 5, expected: 5},
		{name: "inside range", value: 17, expected: 17},
		{name: "upper bound", value: 30, expected: 30},
		{name: "above range", value: 45, expected: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clamp(tt.value, 5, 30))
		})
	}

	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
	assert.Equal(t, 1.0, Clamp(1.7, 0.0, 1.0))
}

func TestSafeRatio(t *testing.T) {
	v, ok := SafeRatio(3, 4)
	assert.True(t, ok)
	assert.InDelta(t, 0.75, v, 1e-12)

	v, ok = SafeRatio(3, 0)
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 5, Abs(-5))
	assert.Equal(t, 5, Abs(5))
	assert.Equal(t, 0, Abs(0))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.33, RoundTo(1.0/3.0, 2))
	assert.Equal(t, 2.5, RoundTo(2.5, 1))
	assert.Equal(t, 3.0, RoundTo(2.5, 0))
}
