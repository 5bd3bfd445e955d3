package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := map[string]struct {
		in   string
		want time.Time
		ok   bool
	}{
		"iso date":    {in: "2024-10-10", want: time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), ok: true},
		"date time":   {in: "2024-10-10 08:30:00", want: time.Date(2024, 10, 10, 8, 30, 0, 0, time.UTC), ok: true},
		"rfc3339":     {in: "2024-10-10T10:10:10Z", want: time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC), ok: true},
		"month first": {in: "05/01/2024", want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), ok: true},
		"day first":   {in: "25/12/2024", want: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), ok: true},
		"padded":      {in: "  2024-01-02 ", want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ok: true},
		"empty":       {in: "", ok: false},
		"garbage":     {in: "not a date", ok: false},
		"negative ts": {in: "-5", ok: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ParseDate(tc.in, time.UTC)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestParseDateUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseDate(strconv.FormatInt(ts, 10), nil)
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	in := time.Date(2024, 3, 5, 23, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), StartOfDay(in))
}
