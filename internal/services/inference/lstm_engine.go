package inference

import (
	"context"
	"fmt"
	"math"

	"RevenueCast/internal/domain/models"

	"gonum.org/v1/gonum/mat"
)

type lstmLayer struct {
	wih  *mat.Dense // 4H x in
	whh  *mat.Dense // 4H x H
	bias *mat.VecDense
}

type headStep func(x *mat.VecDense) *mat.VecDense

// LSTMEngine evaluates a stacked LSTM followed by a dense head, in inference mode.
// It is read-only after construction and safe for concurrent use.
type LSTMEngine struct {
	inputSize  int
	hiddenSize int
	layers     []lstmLayer
	head       []headStep
	outputSize int
}

// NewLSTMEngine builds the network from a decoded weight file.
func NewLSTMEngine(wf *WeightFile) (*LSTMEngine, error) {
	if wf.InputSize <= 0 || wf.HiddenSize <= 0 || wf.NumLayers <= 0 {
		return nil, fmt.Errorf("invalid dimensions input=%d hidden=%d layers=%d", wf.InputSize, wf.HiddenSize, wf.NumLayers)
	}
	e := &LSTMEngine{inputSize: wf.InputSize, hiddenSize: wf.HiddenSize}
	gates := 4 * wf.HiddenSize

	in := wf.InputSize
	for k := 0; k < wf.NumLayers; k++ {
		wih, err := wf.matrix(fmt.Sprintf("lstm.weight_ih_l%d", k), gates, in)
		if err != nil {
			return nil, err
		}
		whh, err := wf.matrix(fmt.Sprintf("lstm.weight_hh_l%d", k), gates, wf.HiddenSize)
		if err != nil {
			return nil, err
		}
		bih, err := wf.vector(fmt.Sprintf("lstm.bias_ih_l%d", k), gates)
		if err != nil {
			return nil, err
		}
		bhh, err := wf.vector(fmt.Sprintf("lstm.bias_hh_l%d", k), gates)
		if err != nil {
			return nil, err
		}
		bias := mat.NewVecDense(gates, nil)
		bias.AddVec(bih, bhh)
		e.layers = append(e.layers, lstmLayer{wih: wih, whh: whh, bias: bias})
		in = wf.HiddenSize
	}

	width := wf.HiddenSize
	for i, spec := range wf.Head {
		step, out, err := buildHeadStep(wf, spec, width)
		if err != nil {
			return nil, fmt.Errorf("head layer %d (%s): %w", i, spec.Kind, err)
		}
		if step != nil {
			e.head = append(e.head, step)
		}
		width = out
	}
	e.outputSize = width
	return e, nil
}

// LoadLSTMEngine reads the weight file at path and builds the engine.
func LoadLSTMEngine(path string) (*LSTMEngine, error) {
	wf, err := LoadWeightFile(path)
	if err != nil {
		return nil, err
	}
	return NewLSTMEngine(wf)
}

func buildHeadStep(wf *WeightFile, spec LayerSpec, width int) (headStep, int, error) {
	switch spec.Kind {
	case LayerLinear:
		w, err := wf.matrix(spec.Name+".weight", 0, width)
		if err != nil {
			return nil, 0, err
		}
		rows, _ := w.Dims()
		b, err := wf.vector(spec.Name+".bias", rows)
		if err != nil {
			return nil, 0, err
		}
		return func(x *mat.VecDense) *mat.VecDense {
			y := mat.NewVecDense(rows, nil)
			y.MulVec(w, x)
			y.AddVec(y, b)
			return y
		}, rows, nil
	case LayerBatchNorm:
		params := make([]*mat.VecDense, 4)
		for i, suffix := range []string{".weight", ".bias", ".running_mean", ".running_var"} {
			v, err := wf.vector(spec.Name+suffix, width)
			if err != nil {
				return nil, 0, err
			}
			params[i] = v
		}
		gamma, beta, mean, variance := params[0], params[1], params[2], params[3]
		eps := wf.BNEps
		return func(x *mat.VecDense) *mat.VecDense {
			y := mat.NewVecDense(width, nil)
			for i := 0; i < width; i++ {
				norm := (x.AtVec(i) - mean.AtVec(i)) / math.Sqrt(variance.AtVec(i)+eps)
				y.SetVec(i, norm*gamma.AtVec(i)+beta.AtVec(i))
			}
			return y
		}, width, nil
	case LayerReLU:
		return func(x *mat.VecDense) *mat.VecDense {
			y := mat.NewVecDense(width, nil)
			for i := 0; i < width; i++ {
				y.SetVec(i, math.Max(0, x.AtVec(i)))
			}
			return y
		}, width, nil
	case LayerDropout:
		// identity at inference time
		return nil, width, nil
	default:
		return nil, 0, fmt.Errorf("unknown layer kind %q", spec.Kind)
	}
}

// OutputSize is the length of the vector Infer returns.
func (e *LSTMEngine) OutputSize() int { return e.outputSize }

// Infer runs the sequence through every LSTM layer and feeds the last hidden state to the head.
func (e *LSTMEngine) Infer(ctx context.Context, seq models.Sequence) ([]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}
	if e.inputSize != models.NumFeatures {
		return nil, fmt.Errorf("model expects %d features, sequence has %d", e.inputSize, models.NumFeatures)
	}

	inputs := make([]*mat.VecDense, len(seq))
	for t, step := range seq {
		inputs[t] = mat.NewVecDense(models.NumFeatures, []float64{step[0], step[1], step[2]})
	}

	for _, layer := range e.layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inputs = e.runLayer(layer, inputs)
	}

	x := inputs[len(inputs)-1]
	for _, step := range e.head {
		x = step(x)
	}
	return mat.Col(nil, 0, x), nil
}

func (e *LSTMEngine) runLayer(l lstmLayer, inputs []*mat.VecDense) []*mat.VecDense {
	hs := e.hiddenSize
	h := mat.NewVecDense(hs, nil)
	c := make([]float64, hs)
	gates := mat.NewVecDense(4*hs, nil)
	rec := mat.NewVecDense(4*hs, nil)
	out := make([]*mat.VecDense, len(inputs))

	for t, x := range inputs {
		gates.MulVec(l.wih, x)
		rec.MulVec(l.whh, h)
		gates.AddVec(gates, rec)
		gates.AddVec(gates, l.bias)

		next := mat.NewVecDense(hs, nil)
		for j := 0; j < hs; j++ {
			i := sigmoid(gates.AtVec(j))
			f := sigmoid(gates.AtVec(hs + j))
			g := math.Tanh(gates.AtVec(2*hs + j))
			o := sigmoid(gates.AtVec(3*hs + j))
			c[j] = f*c[j] + i*g
			next.SetVec(j, o*math.Tanh(c[j]))
		}
		h = next
		out[t] = next
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
