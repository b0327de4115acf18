package probcast

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ****************************************************
// Saving and Loading
// ****************************************************

const mainFile string = "main.json"
const weightsFile string = "weights.json"

// manifest is the architecture description written alongside the weights, so
// that loading can reject a Config that would build different shapes.
type manifest struct {
	ContextLength    int
	PredictionLength int
	HiddenDimensions []int
	BatchNorm        bool
	Scaler           string
}

// Save writes the network to the given directory: a manifest describing the
// architecture, and every parameter and running-state vector by name. If
// 'overwrite' is false and the directory already exists, Save returns an
// error instead of touching it.
func (n *network) Save(dirPath string, overwrite bool) error {
	// check if the folder already exists
	if _, err := os.Stat(dirPath); err == nil {
		if !overwrite {
			return errors.Errorf("Can't save network, folder already exists, and overwrite is not enabled")
		}

		if err = os.RemoveAll(dirPath); err != nil {
			return errors.Errorf("Can't save network, couldn't remove pre-existing folder to overwrite")
		}
	}

	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return errors.Wrapf(err, "Couldn't save network, failed to make directory")
	}

	m := manifest{
		ContextLength:    n.conf.ContextLength,
		PredictionLength: n.conf.PredictionLength,
		HiddenDimensions: n.conf.HiddenDimensions,
		BatchNorm:        n.conf.BatchNorm,
		Scaler:           n.scaler.TypeString(),
	}

	if err := writeJSON(dirPath+"/"+mainFile, m); err != nil {
		return errors.Wrapf(err, "Couldn't save network manifest")
	}

	ws := make(map[string][]float64)
	for _, p := range append(n.Params(), n.StateParams()...) {
		ws[p.Name] = p.Data
	}

	if err := writeJSON(dirPath+"/"+weightsFile, ws); err != nil {
		return errors.Wrapf(err, "Couldn't save network weights")
	}

	return nil
}

// Load reads a network previously written by Save. Like the construction
// functions, Load gets its pluggable pieces from the caller, so 'conf' must
// describe the same architecture the saved network was built with; Load
// returns an error if it doesn't.
func Load(dirPath string, conf Config) (*TrainingNetwork, error) {
	t, err := NewTraining(conf)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't construct network to load into")
	}

	if err = t.load(dirPath); err != nil {
		return nil, err
	}

	return t, nil
}

// LoadSampling is Load for the sampling variant.
func LoadSampling(dirPath string, conf Config) (*SamplingNetwork, error) {
	s, err := NewSampling(conf)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't construct network to load into")
	}

	if err = s.load(dirPath); err != nil {
		return nil, err
	}

	return s, nil
}

func (n *network) load(dirPath string) error {
	if _, err := os.Stat(dirPath); err != nil {
		return errors.Errorf("Can't load network, containing folder does not exist")
	}

	var m manifest
	if err := readJSON(dirPath+"/"+mainFile, &m); err != nil {
		return errors.Wrapf(err, "Couldn't load network manifest")
	}

	saved := Config{
		ContextLength:    m.ContextLength,
		PredictionLength: m.PredictionLength,
		HiddenDimensions: m.HiddenDimensions,
		BatchNorm:        m.BatchNorm,
	}
	if err := sameArchitecture(n.conf, saved); err != nil {
		return errors.Wrapf(err, "Saved network does not fit the given Config")
	} else if m.Scaler != n.scaler.TypeString() {
		return errors.Errorf("Saved network was scaled by %q, Config supplies %q", m.Scaler, n.scaler.TypeString())
	}

	var ws map[string][]float64
	if err := readJSON(dirPath+"/"+weightsFile, &ws); err != nil {
		return errors.Wrapf(err, "Couldn't load network weights")
	}

	for _, p := range append(n.Params(), n.StateParams()...) {
		vs, ok := ws[p.Name]
		if !ok {
			return errors.Errorf("Can't load network, saved weights are missing %q", p.Name)
		} else if len(vs) != len(p.Data) {
			return SizeMismatchError{Quantity: "saved values for " + p.Name, Got: len(vs), Want: len(p.Data)}
		}

		copy(p.Data, vs)
	}

	return nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create file %q", path)
	}
	defer f.Close()

	if err = json.NewEncoder(f).Encode(v); err != nil {
		return errors.Wrapf(err, "Failed to encode to file %q", path)
	}

	return nil
}

func readJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to open file %q", path)
	}
	defer f.Close()

	if err = json.NewDecoder(f).Decode(v); err != nil {
		return errors.Wrapf(err, "Failed to decode from file %q", path)
	}

	return nil
}
