package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0", FormatRate(5, 0), "zero denominator yields literal 0")
	assert.Equal(t, "0.0", FormatRate(0, 10))
	assert.Equal(t, "100.0", FormatRate(10, 10))
	assert.Equal(t, "33.3", FormatRate(1, 3))
	assert.Equal(t, "66.7", FormatRate(2, 3))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 3.14, RoundFloat(3.14159, 2))
	assert.Equal(t, 3.1, RoundFloat(3.14999, 1))
	assert.Equal(t, -2.5, RoundFloat(-2.49999, 1))
}
