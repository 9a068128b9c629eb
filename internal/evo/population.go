package evo

import (
	"fmt"
	"math/rand"

	"gramevo/internal/expr"
	"gramevo/internal/grammar"
)

// Config drives population construction and the generational loop. All
// fields except Tolerance are required; rates live in [0, 1].
type Config struct {
	Grammar        *grammar.Grammar
	Evaluator      *Evaluator
	Size           int
	MaxDepth       int
	CrossoverRate  float64
	MutationRate   float64
	TournamentSize int

	// Tolerance is the tie window Best applies when picking the leader.
	// Tournament folding always uses DefaultTolerance.
	Tolerance float64

	RNG *rand.Rand
}

// Population holds a fixed-size pool of individuals and evolves it one
// generation at a time: tournament parents, subtree crossover or
// mutation, full generational replacement, no elitism.
type Population struct {
	cfg         Config
	builder     *expr.Builder
	individuals []*Individual
	generation  int
}

// NewPopulation validates the configuration and seeds Size individuals by
// independent grammar sampling.
func NewPopulation(cfg Config) (*Population, error) {
	if cfg.Grammar == nil {
		return nil, fmt.Errorf("population: grammar is required")
	}
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("population: evaluator is required")
	}
	if cfg.RNG == nil {
		return nil, fmt.Errorf("population: random source is required")
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("population: size must be > 0, got %d", cfg.Size)
	}
	if cfg.MaxDepth < 1 {
		return nil, fmt.Errorf("population: max depth must be positive, got %d", cfg.MaxDepth)
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("population: crossover rate must be in [0, 1], got %v", cfg.CrossoverRate)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("population: mutation rate must be in [0, 1], got %v", cfg.MutationRate)
	}
	if cfg.TournamentSize < 1 || cfg.TournamentSize > cfg.Size {
		return nil, fmt.Errorf("population: tournament size must be in [1, %d], got %d", cfg.Size, cfg.TournamentSize)
	}
	if cfg.Tolerance < 0 {
		return nil, fmt.Errorf("population: tolerance must be >= 0, got %v", cfg.Tolerance)
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = DefaultTolerance
	}

	builder, err := expr.NewBuilder(cfg.Grammar)
	if err != nil {
		return nil, err
	}

	individuals := make([]*Individual, 0, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		ind, err := Generate(cfg.Grammar, builder, cfg.RNG, cfg.MaxDepth)
		if err != nil {
			return nil, fmt.Errorf("seed individual %d: %w", i, err)
		}
		individuals = append(individuals, ind)
	}

	return &Population{cfg: cfg, builder: builder, individuals: individuals}, nil
}

// Size returns the configured population size.
func (p *Population) Size() int {
	return p.cfg.Size
}

// Generation returns how many generational turnovers have completed.
func (p *Population) Generation() int {
	return p.generation
}

// Individuals exposes the current pool for reporting. Callers must treat
// the individuals as read-only.
func (p *Population) Individuals() []*Individual {
	return p.individuals
}

// EvaluateAll scores every individual that has no cached fitness yet.
// Calling it again is a no-op for already-scored individuals, so carrying
// survivors' scores across generations costs nothing.
func (p *Population) EvaluateAll() {
	for _, ind := range p.individuals {
		p.cfg.Evaluator.Evaluate(ind)
	}
}

// Best returns the individual with the highest adjusted fitness,
// preferring the structurally smaller one within tolerance.
func (p *Population) Best() (*Individual, error) {
	best := p.individuals[0]
	for _, contender := range p.individuals[1:] {
		winner, err := PreferFittest(best, contender, p.cfg.Tolerance)
		if err != nil {
			return nil, err
		}
		best = winner
	}
	return best, nil
}

// EvolveOneGeneration evaluates the current pool, then fills a complete
// replacement generation: per child one uniform draw picks crossover
// (probability CrossoverRate) or mutation, parents come from tournament
// selection, and the resulting fresh individual is appended. The old
// generation is discarded wholesale.
func (p *Population) EvolveOneGeneration() error {
	p.EvaluateAll()

	next := make([]*Individual, 0, p.cfg.Size)
	for len(next) < p.cfg.Size {
		var child *Individual
		if p.cfg.RNG.Float64() < p.cfg.CrossoverRate {
			parentA, err := TournamentSelection(p.individuals, p.cfg.TournamentSize, p.cfg.RNG)
			if err != nil {
				return err
			}
			parentB, err := TournamentSelection(p.individuals, p.cfg.TournamentSize, p.cfg.RNG)
			if err != nil {
				return err
			}
			child, err = Crossover(parentA, parentB, p.builder, p.cfg.RNG, p.cfg.MaxDepth)
			if err != nil {
				return err
			}
		} else {
			parent, err := TournamentSelection(p.individuals, p.cfg.TournamentSize, p.cfg.RNG)
			if err != nil {
				return err
			}
			child, err = Mutation(parent, p.cfg.Grammar, p.builder, p.cfg.RNG, p.cfg.MaxDepth)
			if err != nil {
				return err
			}
		}
		next = append(next, child)
	}

	p.individuals = next
	p.generation++
	return nil
}
