package anneal

import "github.com/pkg/errors"

// An Init names the trajectory's starting assignment.
type Init string

const (
	// InitRandom starts from a uniformly drawn assignment.
	InitRandom = Init("random")
	// InitAllFalse starts from the all-false assignment, which is feasible
	// whenever the formula has no clause of purely positive literals.
	InitAllFalse = Init("all-false")
	// InitAllTrue starts from the all-true assignment.
	InitAllTrue = Init("all-true")
)

// Set implements the flag value contract, so an Init can be bound directly
// to a command-line flag.
func (i *Init) Set(s string) error {
	switch Init(s) {
	case InitRandom, InitAllFalse, InitAllTrue:
		*i = Init(s)
		return nil
	default:
		return errors.Errorf("unknown initial assignment %q", s)
	}
}

func (i *Init) String() string { return string(*i) }

// Type implements the flag value contract.
func (i *Init) Type() string { return "init" }

// Config holds the engine's tunables. New replaces zero-valued fields by
// their defaults, so a partially filled Config is usable; a zero
// MaxIterations or StallLimit disables that bound instead.
type Config struct {
	// InitialTemp is the starting temperature; 0 means the DefaultConfig
	// value.
	InitialTemp float64
	// Alpha is the geometric cooling rate, in (0, 1): after each batch of
	// moves the temperature becomes Alpha times itself. 0 means the
	// DefaultConfig value.
	Alpha float64
	// IterationsPerTemp is the number of moves attempted at each
	// temperature; 0 means four moves per variable.
	IterationsPerTemp int
	// MinTemp stops the run once the temperature falls to it; 0 derives one
	// hundredth of InitialTemp.
	MinTemp float64
	// MaxIterations caps the total number of moves across all restarts;
	// 0 means no cap.
	MaxIterations int64
	// StallLimit stops a restart after this many consecutive temperature
	// steps without a best-assignment improvement; 0 disables the check.
	StallLimit int
	// Penalty is the fitness cost of one falsified clause. 0 derives
	// TotalWeight+1 from the formula; an explicit value must exceed the
	// formula's total weight.
	Penalty int
	// Init selects the starting assignment of each restart.
	Init Init
	// Restarts is the number of independent trajectories to run; 0 means 1.
	Restarts int
	// Seed seeds the engine's random source. Runs are deterministic for a
	// given seed.
	Seed int64
}

// DefaultConfig returns a schedule that behaves reasonably on small and
// medium instances. The values are starting points, not recommendations:
// tuning them to the instance family at hand is the whole game.
func DefaultConfig() Config {
	return Config{
		InitialTemp: 10,
		Alpha:       0.95,
		MinTemp:     0.1,
		StallLimit:  30,
		Init:        InitRandom,
		Restarts:    1,
	}
}

// Validate returns an error describing the first invalid field, if any.
func (cfg *Config) Validate() error {
	if cfg.InitialTemp <= 0 {
		return errors.Errorf("initial temperature %g must be positive", cfg.InitialTemp)
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return errors.Errorf("cooling rate %g must lie in (0, 1)", cfg.Alpha)
	}
	if cfg.MinTemp <= 0 || cfg.MinTemp >= cfg.InitialTemp {
		return errors.Errorf("minimum temperature %g must lie in (0, %g)", cfg.MinTemp, cfg.InitialTemp)
	}
	if cfg.IterationsPerTemp < 0 {
		return errors.Errorf("negative number of moves per temperature %d", cfg.IterationsPerTemp)
	}
	if cfg.MaxIterations < 0 {
		return errors.Errorf("negative move cap %d", cfg.MaxIterations)
	}
	if cfg.StallLimit < 0 {
		return errors.Errorf("negative stall limit %d", cfg.StallLimit)
	}
	if cfg.Penalty < 0 {
		return errors.Errorf("negative penalty %d", cfg.Penalty)
	}
	switch cfg.Init {
	case "", InitRandom, InitAllFalse, InitAllTrue:
	default:
		return errors.Errorf("unknown initial assignment %q", cfg.Init)
	}
	if cfg.Restarts < 0 {
		return errors.Errorf("negative number of restarts %d", cfg.Restarts)
	}
	return nil
}
