package inference

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"RevenueCast/internal/domain/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeros(n int) []float64 { return make([]float64, n) }

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// singleLayer returns a one-layer LSTM with hidden size h and all-zero parameters.
func singleLayer(h int) map[string]Tensor {
	return map[string]Tensor{
		"lstm.weight_ih_l0": {Shape: []int{4 * h, 3}, Data: zeros(4 * h * 3)},
		"lstm.weight_hh_l0": {Shape: []int{4 * h, h}, Data: zeros(4 * h * h)},
		"lstm.bias_ih_l0":   {Shape: []int{4 * h}, Data: zeros(4 * h)},
		"lstm.bias_hh_l0":   {Shape: []int{4 * h}, Data: zeros(4 * h)},
	}
}

func encode(t *testing.T, wf *WeightFile) *WeightFile {
	t.Helper()
	raw, err := json.Marshal(wf)
	require.NoError(t, err)
	decoded, err := ReadWeightFile(bytes.NewReader(raw))
	require.NoError(t, err)
	return decoded
}

func TestLSTMEngineZeroStateReturnsHeadBias(t *testing.T) {
	tensors := singleLayer(2)
	tensors["out.weight"] = Tensor{Shape: []int{8, 2}, Data: fill(16, 3)}
	tensors["out.bias"] = Tensor{Shape: []int{8}, Data: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}}

	wf := encode(t, &WeightFile{
		InputSize: 3, HiddenSize: 2, NumLayers: 1,
		Head:    []LayerSpec{{Kind: LayerLinear, Name: "out"}},
		Tensors: tensors,
	})
	engine, err := NewLSTMEngine(wf)
	require.NoError(t, err)
	assert.Equal(t, 8, engine.OutputSize())

	seq := make(models.Sequence, 24)
	for i := range seq {
		seq[i] = models.Triple{0.5, 0.5, 0.5}
	}
	out, err := engine.Infer(context.Background(), seq)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}, out, 1e-12)
}

func TestLSTMEngineSingleStep(t *testing.T) {
	tensors := singleLayer(1)
	// gate rows in i, f, g, o order; the g row reads the first feature
	tensors["lstm.weight_ih_l0"] = Tensor{Shape: []int{4, 3}, Data: []float64{
		0, 0, 0,
		0, 0, 0,
		1, 0, 0,
		0, 0, 0,
	}}
	tensors["lstm.bias_ih_l0"] = Tensor{Shape: []int{4}, Data: []float64{100, 0, 0, 100}}
	tensors["fc.weight"] = Tensor{Shape: []int{8, 1}, Data: fill(8, 1)}
	tensors["fc.bias"] = Tensor{Shape: []int{8}, Data: zeros(8)}

	engine, err := NewLSTMEngine(&WeightFile{
		InputSize: 3, HiddenSize: 1, NumLayers: 1, BNEps: defaultBNEps,
		Head:    []LayerSpec{{Kind: LayerLinear, Name: "fc"}},
		Tensors: tensors,
	})
	require.NoError(t, err)

	out, err := engine.Infer(context.Background(), models.Sequence{{1, 0, 0}})
	require.NoError(t, err)
	want := math.Tanh(math.Tanh(1))
	assert.InDeltaSlice(t, fill(8, want), out, 1e-12)
}

func TestLSTMEngineBatchNormAndReLU(t *testing.T) {
	tensors := singleLayer(1)
	tensors["fc.0.weight"] = Tensor{Shape: []int{2, 1}, Data: zeros(2)}
	tensors["fc.0.bias"] = Tensor{Shape: []int{2}, Data: []float64{1, -3}}
	tensors["fc.1.weight"] = Tensor{Shape: []int{2}, Data: []float64{2, 2}}
	tensors["fc.1.bias"] = Tensor{Shape: []int{2}, Data: []float64{0.5, 0.5}}
	tensors["fc.1.running_mean"] = Tensor{Shape: []int{2}, Data: zeros(2)}
	tensors["fc.1.running_var"] = Tensor{Shape: []int{2}, Data: []float64{1, 1}}

	wf := encode(t, &WeightFile{
		InputSize: 3, HiddenSize: 1, NumLayers: 1,
		Head: []LayerSpec{
			{Kind: LayerLinear, Name: "fc.0"},
			{Kind: LayerBatchNorm, Name: "fc.1"},
			{Kind: LayerReLU},
			{Kind: LayerDropout},
		},
		Tensors: tensors,
	})
	engine, err := NewLSTMEngine(wf)
	require.NoError(t, err)

	out, err := engine.Infer(context.Background(), models.Sequence{{0, 0, 0}, {1, 1, 1}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 2/math.Sqrt(1+defaultBNEps)+0.5, out[0], 1e-12)
	assert.Equal(t, 0.0, out[1])
}

func TestLSTMEngineStackedLayers(t *testing.T) {
	tensors := singleLayer(2)
	tensors["lstm.weight_ih_l1"] = Tensor{Shape: []int{8, 2}, Data: zeros(16)}
	tensors["lstm.weight_hh_l1"] = Tensor{Shape: []int{8, 2}, Data: zeros(16)}
	tensors["lstm.bias_ih_l1"] = Tensor{Shape: []int{8}, Data: zeros(8)}
	tensors["lstm.bias_hh_l1"] = Tensor{Shape: []int{8}, Data: zeros(8)}
	tensors["fc.weight"] = Tensor{Shape: []int{8, 2}, Data: zeros(16)}
	tensors["fc.bias"] = Tensor{Shape: []int{8}, Data: fill(8, 0.25)}

	engine, err := NewLSTMEngine(&WeightFile{
		InputSize: 3, HiddenSize: 2, NumLayers: 2, BNEps: defaultBNEps,
		Head:    []LayerSpec{{Kind: LayerLinear, Name: "fc"}},
		Tensors: tensors,
	})
	require.NoError(t, err)
	out, err := engine.Infer(context.Background(), make(models.Sequence, 24))
	require.NoError(t, err)
	assert.InDeltaSlice(t, fill(8, 0.25), out, 1e-12)
}

func TestNewLSTMEngineErrors(t *testing.T) {
	tests := map[string]struct {
		wf      *WeightFile
		wantErr string
	}{
		"bad dimensions": {
			wf:      &WeightFile{InputSize: 3},
			wantErr: "invalid dimensions",
		},
		"missing lstm tensor": {
			wf:      &WeightFile{InputSize: 3, HiddenSize: 1, NumLayers: 2, Tensors: singleLayer(1)},
			wantErr: `missing tensor "lstm.weight_ih_l1"`,
		},
		"default head needs fc tensors": {
			wf:      &WeightFile{InputSize: 3, HiddenSize: 1, NumLayers: 1, Head: DefaultHead, Tensors: singleLayer(1)},
			wantErr: `missing tensor "fc.0.weight"`,
		},
		"shape mismatch": {
			wf: &WeightFile{InputSize: 3, HiddenSize: 1, NumLayers: 1, Tensors: map[string]Tensor{
				"lstm.weight_ih_l0": {Shape: []int{4, 3}, Data: zeros(5)},
			}},
			wantErr: "does not match",
		},
		"unknown layer": {
			wf:      &WeightFile{InputSize: 3, HiddenSize: 1, NumLayers: 1, Head: []LayerSpec{{Kind: "conv"}}, Tensors: singleLayer(1)},
			wantErr: `unknown layer kind "conv"`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLSTMEngine(tc.wf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadLSTMEngineFromFile(t *testing.T) {
	tensors := singleLayer(1)
	tensors["fc.weight"] = Tensor{Shape: []int{8, 1}, Data: zeros(8)}
	tensors["fc.bias"] = Tensor{Shape: []int{8}, Data: fill(8, 0.4)}
	raw, err := json.Marshal(&WeightFile{
		InputSize: 3, HiddenSize: 1, NumLayers: 1,
		Head:    []LayerSpec{{Kind: LayerLinear, Name: "fc"}},
		Tensors: tensors,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	engine, err := LoadLSTMEngine(path)
	require.NoError(t, err)
	out, err := engine.Infer(context.Background(), make(models.Sequence, 24))
	require.NoError(t, err)
	assert.InDeltaSlice(t, fill(8, 0.4), out, 1e-12)

	_, err = LoadLSTMEngine(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadWeightFileDefaults(t *testing.T) {
	wf, err := ReadWeightFile(bytes.NewReader([]byte(`{"input_size":3,"hidden_size":64,"num_layers":2}`)))
	require.NoError(t, err)
	assert.Equal(t, defaultBNEps, wf.BNEps)
	assert.Equal(t, DefaultHead, wf.Head)

	_, err = ReadWeightFile(bytes.NewReader([]byte(`{`)))
	assert.Error(t, err)
}
