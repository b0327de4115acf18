package probcast

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/trunghlt/probcast/dists"
	"github.com/trunghlt/probcast/initializers"
	"github.com/trunghlt/probcast/layers"
	"github.com/trunghlt/probcast/scalers"
)

// Config holds everything needed to build a network. ContextLength,
// PredictionLength and HiddenDimensions have no defaults and must be set; the
// remaining fields fall back to the documented defaults when left at their zero
// values.
type Config struct {
	// ContextLength is the number of past values the network conditions on.
	ContextLength int

	// PredictionLength is the number of future steps fitted per series.
	PredictionLength int

	// HiddenDimensions are the widths of the trunk; each entry becomes one
	// fully connected block.
	HiddenDimensions []int

	// BatchNorm adds a batch normalization layer after each block.
	BatchNorm bool

	// NumSamples is how many trajectories a SamplingNetwork draws per series.
	// Defaults to 1000.
	NumSamples int

	// Scaler maps each series' history window to its scale. Defaults to
	// scalers.MeanAbs().
	Scaler scalers.Scaler

	// Init sets the initial trunk and head weights. Defaults to
	// initializers.Random with values uniform in [-0.07, 0.07], which keeps the
	// untrained output distributions tame.
	Init initializers.Initializer

	// Seed drives the default initializer and all sampling.
	Seed uint64
}

const defaultNumSamples int = 1000

// network is the shared core of both variants: the scaler, the trunk, and the
// distribution head, plus the caches the backward pass needs.
type network struct {
	conf  Config
	lastH int

	scaler scalers.Scaler
	trunk  []layers.Layer
	head   *dists.Head

	// caches from the last forward pass
	scales []float64
	ds     []dists.StudentT
	zs     []float64
}

// TrainingNetwork fits distribution parameters to known targets and
// backpropagates the loss. It never draws samples.
type TrainingNetwork struct {
	*network
}

// SamplingNetwork draws future trajectories from the fitted distributions. It
// never computes losses or gradients, and gets its weights only through
// SyncFrom or Load.
type SamplingNetwork struct {
	*network
	src *rand.Rand
}

func (conf Config) validate() error {
	if conf.ContextLength < 1 {
		return errors.Errorf("Config.ContextLength must be >= 1 (%d)", conf.ContextLength)
	} else if conf.PredictionLength < 1 {
		return errors.Errorf("Config.PredictionLength must be >= 1 (%d)", conf.PredictionLength)
	} else if len(conf.HiddenDimensions) == 0 {
		return errors.Errorf("Config.HiddenDimensions must not be empty")
	} else if conf.NumSamples < 0 {
		return errors.Errorf("Config.NumSamples must be >= 1 (%d)", conf.NumSamples)
	}

	for i, h := range conf.HiddenDimensions {
		if h < 1 {
			return errors.Errorf("Config.HiddenDimensions[%d] must be >= 1 (%d)", i, h)
		}
	}

	return nil
}

// withDefaults fills the zero-valued optional fields. The returned Config is
// what the network actually runs with.
func (conf Config) withDefaults() Config {
	if conf.NumSamples == 0 {
		conf.NumSamples = defaultNumSamples
	}
	if conf.Scaler == nil {
		conf.Scaler = scalers.MeanAbs()
	}
	if conf.Init == nil {
		src := rand.New(rand.NewSource(conf.Seed))
		conf.Init = initializers.Random(initializers.Uniform().Bounds(-0.07, 0.07).Src(src))
	}

	return conf
}

func newNetwork(conf Config) (*network, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	conf = conf.withDefaults()

	n := &network{
		conf:   conf,
		scaler: conf.Scaler,
	}

	in := conf.ContextLength
	for _, h := range conf.HiddenDimensions {
		n.trunk = append(n.trunk, layers.Dense(in, h, conf.Init), layers.ReLU())
		if conf.BatchNorm {
			n.trunk = append(n.trunk, layers.BatchNorm(h))
		}
		in = h
	}

	// one last projection fans the trunk output out to one hidden vector per
	// future step
	n.lastH = in
	n.trunk = append(n.trunk, layers.Dense(in, conf.PredictionLength*in, conf.Init))

	n.head = dists.NewHead(n.lastH, conf.Init)

	return n, nil
}

// NewTraining builds a TrainingNetwork from conf. Invalid configurations fail
// here, never later.
func NewTraining(conf Config) (*TrainingNetwork, error) {
	n, err := newNetwork(conf)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't make training network")
	}

	return &TrainingNetwork{n}, nil
}

// NewSampling builds a SamplingNetwork from conf. Its weights start at the
// initializer's values; SyncFrom brings over trained ones.
func NewSampling(conf Config) (*SamplingNetwork, error) {
	n, err := newNetwork(conf)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't make sampling network")
	}

	return &SamplingNetwork{n, rand.New(rand.NewSource(n.conf.Seed))}, nil
}

// distributions runs the shared part of both forward passes: scale extraction,
// the scaled context through the trunk, the per-step reshape and the head. It
// returns one StudentT per (series, future step), row-major by series.
func (n *network) distributions(context *mat.Dense, train bool) ([]dists.StudentT, []float64, error) {
	if context == nil {
		return nil, nil, NilArgError{"context"}
	}

	b, c := context.Dims()
	if b == 0 {
		return nil, nil, ErrEmptyBatch
	} else if c != n.conf.ContextLength {
		return nil, nil, SizeMismatchError{Quantity: "context length", Got: c, Want: n.conf.ContextLength}
	}

	scales := n.scaler.Scale(context)

	scaled := mat.NewDense(b, c, nil)
	for r := 0; r < b; r++ {
		row := scaled.RawRowView(r)
		for i, v := range context.RawRowView(r) {
			row[i] = v / scales[r]
		}
	}

	x := scaled
	for _, l := range n.trunk {
		x = l.Forward(x, train)
	}

	// (b × P·H) to (b·P × H): same backing array, rows become per-step hidden
	// vectors grouped by series
	x = mat.NewDense(b*n.conf.PredictionLength, n.lastH, x.RawMatrix().Data)

	n.ds = n.head.Project(x, train)
	n.scales = scales

	return n.ds, scales, nil
}

// Config returns the configuration the network runs with, defaults filled in.
func (n *network) Config() Config {
	return n.conf
}

// Params returns every learnable parameter, named by position in the network.
// The slices alias the live weights; optimizers update the network through
// them.
func (n *network) Params() []*layers.Param {
	var ps []*layers.Param
	for i, l := range n.trunk {
		adj, ok := l.(layers.Adjustable)
		if !ok {
			continue
		}
		for _, p := range adj.Params() {
			ps = append(ps, &layers.Param{
				Name: fmt.Sprintf("trunk.%d.%s", i, p.Name),
				Data: p.Data,
				Grad: p.Grad,
			})
		}
	}

	for _, p := range n.head.Params() {
		ps = append(ps, &layers.Param{Name: "head." + p.Name, Data: p.Data, Grad: p.Grad})
	}

	return ps
}

// StateParams returns the non-learnable state tensors (running batch
// statistics), named the same way as Params.
func (n *network) StateParams() []*layers.Param {
	var ps []*layers.Param
	for i, l := range n.trunk {
		st, ok := l.(layers.Stateful)
		if !ok {
			continue
		}
		for _, p := range st.StateParams() {
			ps = append(ps, &layers.Param{
				Name: fmt.Sprintf("trunk.%d.%s", i, p.Name),
				Data: p.Data,
			})
		}
	}

	return ps
}

// ZeroGrads resets every accumulated gradient. Train does this before each
// backward pass; it only needs calling directly when driving Backward by hand.
func (n *network) ZeroGrads() {
	for _, p := range n.Params() {
		p.ZeroGrad()
	}
}

// sameArchitecture checks that two configurations build identical parameter
// shapes, which is what weight copying and loading require. Sampling settings
// are not part of the architecture.
func sameArchitecture(want, got Config) error {
	if want.ContextLength != got.ContextLength {
		return SizeMismatchError{Quantity: "context length", Got: got.ContextLength, Want: want.ContextLength}
	} else if want.PredictionLength != got.PredictionLength {
		return SizeMismatchError{Quantity: "prediction length", Got: got.PredictionLength, Want: want.PredictionLength}
	} else if want.BatchNorm != got.BatchNorm {
		return errors.Errorf("Networks disagree on batch normalization")
	}

	if len(want.HiddenDimensions) != len(got.HiddenDimensions) {
		return SizeMismatchError{Quantity: "hidden layer count", Got: len(got.HiddenDimensions), Want: len(want.HiddenDimensions)}
	}
	for i, h := range want.HiddenDimensions {
		if got.HiddenDimensions[i] != h {
			return SizeMismatchError{Quantity: fmt.Sprintf("hidden dimension %d", i), Got: got.HiddenDimensions[i], Want: h}
		}
	}

	return nil
}

// SyncFrom copies the weights and running state of t into s, leaving the two
// networks sharing nothing. The copy is bit-identical. Architectures must
// match; sampling settings need not.
func (s *SamplingNetwork) SyncFrom(t *TrainingNetwork) error {
	if t == nil {
		return NilArgError{"training network"}
	}

	if err := sameArchitecture(s.conf, t.conf); err != nil {
		return errors.Wrapf(err, "Couldn't sync weights")
	}

	dst, src := s.network.Params(), t.network.Params()
	for i := range dst {
		copy(dst[i].Data, src[i].Data)
	}

	dstState, srcState := s.network.StateParams(), t.network.StateParams()
	for i := range dstState {
		copy(dstState[i].Data, srcState[i].Data)
	}

	return nil
}
