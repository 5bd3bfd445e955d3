package inference

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

// Layer kinds accepted in a weight file head.
const (
	LayerLinear    = "linear"
	LayerBatchNorm = "batchnorm"
	LayerReLU      = "relu"
	LayerDropout   = "dropout"
)

const defaultBNEps = 1e-5

// Tensor is a row-major array with its shape.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// LayerSpec names one step of the dense head.
type LayerSpec struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

// WeightFile is the on-disk model description. Tensor keys follow the
// state_dict naming of the training code, e.g. "lstm.weight_ih_l0" or "fc.1.running_var".
type WeightFile struct {
	InputSize  int               `json:"input_size"`
	HiddenSize int               `json:"hidden_size"`
	NumLayers  int               `json:"num_layers"`
	BNEps      float64           `json:"bn_eps"`
	Head       []LayerSpec       `json:"head"`
	Tensors    map[string]Tensor `json:"tensors"`
}

// DefaultHead is the dense head of the production network:
// Linear(64,128) BN ReLU Dropout Linear(128,64) BN ReLU Dropout Linear(64,8).
var DefaultHead = []LayerSpec{
	{Kind: LayerLinear, Name: "fc.0"},
	{Kind: LayerBatchNorm, Name: "fc.1"},
	{Kind: LayerReLU},
	{Kind: LayerDropout},
	{Kind: LayerLinear, Name: "fc.4"},
	{Kind: LayerBatchNorm, Name: "fc.5"},
	{Kind: LayerReLU},
	{Kind: LayerDropout},
	{Kind: LayerLinear, Name: "fc.8"},
}

// ReadWeightFile decodes a weight file from r.
func ReadWeightFile(r io.Reader) (*WeightFile, error) {
	var wf WeightFile
	if err := json.NewDecoder(r).Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	if wf.BNEps <= 0 {
		wf.BNEps = defaultBNEps
	}
	if len(wf.Head) == 0 {
		wf.Head = DefaultHead
	}
	return &wf, nil
}

// LoadWeightFile reads and decodes the weight file at path.
func LoadWeightFile(path string) (*WeightFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights: %w", err)
	}
	defer f.Close()
	return ReadWeightFile(f)
}

func (wf *WeightFile) tensor(name string) (Tensor, error) {
	t, ok := wf.Tensors[name]
	if !ok {
		return Tensor{}, fmt.Errorf("missing tensor %q", name)
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	if len(t.Shape) == 0 || n != len(t.Data) {
		return Tensor{}, fmt.Errorf("tensor %q: shape %v does not match %d values", name, t.Shape, len(t.Data))
	}
	return t, nil
}

func (wf *WeightFile) matrix(name string, rows, cols int) (*mat.Dense, error) {
	t, err := wf.tensor(name)
	if err != nil {
		return nil, err
	}
	if len(t.Shape) != 2 || (rows > 0 && t.Shape[0] != rows) || (cols > 0 && t.Shape[1] != cols) {
		return nil, fmt.Errorf("tensor %q: shape %v, want [%d %d]", name, t.Shape, rows, cols)
	}
	return mat.NewDense(t.Shape[0], t.Shape[1], t.Data), nil
}

func (wf *WeightFile) vector(name string, n int) (*mat.VecDense, error) {
	t, err := wf.tensor(name)
	if err != nil {
		return nil, err
	}
	if len(t.Shape) != 1 || (n > 0 && t.Shape[0] != n) {
		return nil, fmt.Errorf("tensor %q: shape %v, want [%d]", name, t.Shape, n)
	}
	return mat.NewVecDense(t.Shape[0], t.Data), nil
}
