package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSignedAmount(t *testing.T) {
	tests := map[string]struct {
		deficit float64
		want    string
	}{
		"short":      {deficit: 406071.2, want: "(- Rp 406,071)"},
		"surplus":    {deficit: -23809.5, want: "(+ Rp 23,810)"},
		"zero":       {deficit: 0, want: "(+ Rp 0)"},
		"millions":   {deficit: 1234567, want: "(- Rp 1,234,567)"},
		"half even":  {deficit: 2.5, want: "(- Rp 2)"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatSignedAmount(tc.deficit, "Rp"))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "Rp 476,190", FormatAmount(476190, "Rp"))
	assert.Equal(t, "-1,000", FormatAmount(-1000, ""))
}

func TestParseFloatDefault(t *testing.T) {
	assert.Equal(t, 1500.5, ParseFloatDefault(" 1500.5 ", 0))
	assert.Equal(t, 0.0, ParseFloatDefault("1,5", 0))
	assert.Equal(t, 0.0, ParseFloatDefault("1,500.5", 0))
	assert.Equal(t, 0.0, ParseFloatDefault("abc", 0))
	assert.Equal(t, 7.0, ParseFloatDefault("", 7))
}
