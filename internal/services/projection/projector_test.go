package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const target = 476190.0

func TestProject(t *testing.T) {
	tests := map[string]struct {
		raw, current float64
		want         float64
	}{
		"above target mid band":    {raw: 0.5, current: 500000, want: 500000},
		"above target low band":    {raw: 0, current: 500000, want: 450000},
		"above target high band":   {raw: 1, current: 500000, want: 550000},
		"below target halfway":     {raw: 0.5, current: 300000, want: 388095},
		"below target reaches":     {raw: 1, current: 300000, want: target},
		"below target stays":       {raw: 0, current: 300000, want: 300000},
		"equal to target is below": {raw: 0.3, current: target, want: target},
		"small herd":               {raw: 0.1, current: 25000, want: 70119},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Project(tc.raw, tc.current, target), 1e-6)
		})
	}
}

func TestProjectAll(t *testing.T) {
	got := ProjectAll([]float64{0, 0.5, 1}, 300000, target)
	assert.InDeltaSlice(t, []float64{300000, 388095, target}, got, 1e-6)
	assert.Empty(t, ProjectAll(nil, 1, target))
}
