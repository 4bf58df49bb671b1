package bench

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/NevoleMarek/Weighted-SAT-solver/anneal"
	"github.com/NevoleMarek/Weighted-SAT-solver/bnb"
	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
	"github.com/NevoleMarek/Weighted-SAT-solver/solver"
)

// A Suite describes a benchmark: which instances, which engines, how many
// runs of each pair.
type Suite struct {
	Name      string         `yaml:"name"`
	Runs      int            `yaml:"runs"`
	Seed      int64          `yaml:"seed"`
	Timeout   string         `yaml:"timeout"` // per-run limit, in time.ParseDuration syntax
	Instances []InstanceSpec `yaml:"instances"`
	Engines   []EngineSpec   `yaml:"engines"`
}

// An InstanceSpec either points at a formula file or describes a random one.
type InstanceSpec struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// Generator parameters, used when Path is empty.
	Vars      int   `yaml:"vars"`
	Clauses   int   `yaml:"clauses"`
	Len       int   `yaml:"len"`
	MaxWeight int   `yaml:"maxWeight"`
	Seed      int64 `yaml:"seed"`
}

// An EngineSpec names a solver kind and its parameters. Params entries map
// onto the fields of the kind's configuration struct, case-insensitively;
// unknown entries are an error rather than silently ignored tuning.
type EngineSpec struct {
	Name   string                 `yaml:"name"`
	Kind   string                 `yaml:"kind"`
	Params map[string]interface{} `yaml:"params"`
}

// LoadSuite reads and validates a YAML suite file.
func LoadSuite(path string) (*Suite, error) {
	d, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, errors.Wrap(err, "cannot read suite")
	}
	var suite Suite
	if err := yaml.Unmarshal(d, &suite); err != nil {
		return nil, errors.Wrap(err, "cannot decode suite")
	}
	if suite.Name == "" {
		suite.Name = filepath.Base(path)
	}
	if suite.Runs <= 0 {
		suite.Runs = 5
	}
	if len(suite.Instances) == 0 {
		return nil, errors.New("suite has no instance")
	}
	if len(suite.Engines) == 0 {
		return nil, errors.New("suite has no engine")
	}
	if _, err := suite.PerRunTimeout(); err != nil {
		return nil, err
	}
	for i := range suite.Engines {
		if _, err := suite.Engines[i].factory(); err != nil {
			return nil, errors.Wrapf(err, "engine %q", suite.Engines[i].Label())
		}
	}
	return &suite, nil
}

// PerRunTimeout parses the suite's per-run time limit; an empty field means
// no limit.
func (s *Suite) PerRunTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid timeout %q", s.Timeout)
	}
	if d < 0 {
		return 0, errors.Errorf("negative timeout %q", s.Timeout)
	}
	return d, nil
}

// Label returns the instance's display name.
func (spec *InstanceSpec) Label() string {
	if spec.Name != "" {
		return spec.Name
	}
	if spec.Path != "" {
		return filepath.Base(spec.Path)
	}
	return fmt.Sprintf("rand-v%d-c%d-s%d", spec.Vars, spec.Clauses, spec.Seed)
}

// Formula loads or generates the instance.
func (spec *InstanceSpec) Formula() (*formula.Formula, error) {
	if spec.Path != "" {
		f, err := os.Open(os.ExpandEnv(spec.Path))
		if err != nil {
			return nil, errors.Wrap(err, "cannot open instance")
		}
		defer f.Close()
		parsed, err := formula.ParseCNF(f)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot parse %q", spec.Path)
		}
		return parsed, nil
	}
	if spec.Vars <= 0 {
		return nil, errors.Errorf("instance %q has neither a path nor a size", spec.Label())
	}
	nbClauses := spec.Clauses
	if nbClauses == 0 {
		nbClauses = 4 * spec.Vars
	}
	clauseLen := spec.Len
	if clauseLen == 0 {
		clauseLen = 3
	}
	maxWeight := spec.MaxWeight
	if maxWeight == 0 {
		maxWeight = 100
	}
	rng := rand.New(rand.NewSource(spec.Seed))
	return formula.Rand(rng, spec.Vars, nbClauses, clauseLen, maxWeight), nil
}

// Label returns the engine's display name.
func (spec *EngineSpec) Label() string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.Kind
}

// factory builds the run-solver constructor for the spec's kind, decoding
// Params once so that configuration mistakes surface at load time.
func (spec *EngineSpec) factory() (func(f *formula.Formula, seed int64) (solver.Solver, error), error) {
	switch spec.Kind {
	case "bnb":
		cfg := bnb.DefaultConfig()
		if err := decodeParams(spec.Params, &cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return func(f *formula.Formula, seed int64) (solver.Solver, error) {
			// The exact engine is deterministic; the run seed is unused.
			return bnb.New(f, cfg)
		}, nil
	case "anneal":
		cfg := anneal.DefaultConfig()
		if err := decodeParams(spec.Params, &cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return func(f *formula.Formula, seed int64) (solver.Solver, error) {
			runCfg := cfg
			runCfg.Seed = seed
			return anneal.New(f, runCfg)
		}, nil
	default:
		return nil, errors.Errorf("unknown engine kind %q", spec.Kind)
	}
}

// Algorithm returns the engine as a named solver factory for the runner.
func (spec *EngineSpec) Algorithm() (Algorithm, error) {
	factory, err := spec.factory()
	if err != nil {
		return Algorithm{}, err
	}
	return Algorithm{Name: spec.Label(), Factory: factory}, nil
}

// decodeParams maps loosely typed YAML parameters onto a configuration
// struct, matching field names case-insensitively.
func decodeParams(params map[string]interface{}, target interface{}) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return errors.Wrap(dec.Decode(params), "invalid engine parameters")
}
