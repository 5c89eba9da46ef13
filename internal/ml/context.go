package ml

import (
	"log/slog"
	"math/rand"
)

const (
	DefaultSeed          = 1
	DefaultTestFraction  = 0.2
	DefaultL2            = 0.01
	DefaultMaxIterations = 100
	DefaultTolerance     = 0.01
	DefaultMinTermCount  = 1
)

// FeaturizerOptions control which n-grams are extracted from text.
type FeaturizerOptions struct {
	WordBigrams   bool
	CharNgramSize int // 0 disables character n-grams
	MinTermCount  int
}

// TrainerOptions control the dual coordinate ascent solver.
type TrainerOptions struct {
	L2            float64
	MaxIterations int
	Tolerance     float64
}

// Context carries everything a training run or a prediction needs besides the data.
// It is a plain value; copies are independent and nothing in it is mutated.
type Context struct {
	Seed       int64
	Featurizer FeaturizerOptions
	Trainer    TrainerOptions
	Logger     *slog.Logger
}

func NewContext(seed int64) Context {
	return Context{
		Seed: seed,
		Featurizer: FeaturizerOptions{
			WordBigrams:   true,
			CharNgramSize: 3,
			MinTermCount:  DefaultMinTermCount,
		},
		Trainer: TrainerOptions{
			L2:            DefaultL2,
			MaxIterations: DefaultMaxIterations,
			Tolerance:     DefaultTolerance,
		},
		Logger: slog.Default(),
	}
}

func (c Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// rng returns a fresh source so every operation that needs randomness
// replays the same sequence for the same seed.
func (c Context) rng() *rand.Rand {
	return rand.New(rand.NewSource(c.Seed))
}

func (c Context) trainerOptions() TrainerOptions {
	opts := c.Trainer
	if opts.L2 <= 0 {
		opts.L2 = DefaultL2
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	return opts
}
