package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "R$ 0,00"},
		{0.5, "R$ 0,50"},
		{7, "R$ 7,00"},
		{770, "R$ 770,00"},
		{1234.56, "R$ 1.234,56"},
		{1234567.891, "R$ 1.234.567,89"},
		{-45.1, "-R$ 45,10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatBRL(tt.amount))
	}
}
