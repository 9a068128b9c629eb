package evo

import (
	"fmt"
	"math/rand"

	"gramevo/internal/expr"
	"gramevo/internal/grammar"
)

// Individual owns one derivation tree, the expression derived from it,
// structural metrics, and a fitness cache. Trees never change after
// construction, so the raw fitness stays valid for the individual's whole
// lifetime; the adjusted fitness tracks whichever evaluator scored the
// individual last. Variation always produces fresh individuals.
type Individual struct {
	Derivation *grammar.DerivationNode
	Expression *expr.Node
	Complexity ComplexityMetrics

	rawFitness      float64
	adjustedFitness float64
	evaluated       bool
}

// NewIndividual derives the expression and metrics for a derivation tree
// and wraps them with an empty fitness cache.
func NewIndividual(derivation *grammar.DerivationNode, builder *expr.Builder) (*Individual, error) {
	if derivation == nil {
		return nil, fmt.Errorf("individual: derivation is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("individual: builder is required")
	}
	expression, err := builder.Build(derivation)
	if err != nil {
		return nil, err
	}
	return &Individual{
		Derivation: derivation,
		Expression: expression,
		Complexity: ComputeMetrics(derivation),
	}, nil
}

// Generate samples a fresh individual from the grammar.
func Generate(g *grammar.Grammar, builder *expr.Builder, rng *rand.Rand, maxDepth int) (*Individual, error) {
	if g == nil {
		return nil, fmt.Errorf("generate individual: grammar is required")
	}
	derivation, err := g.Derive(rng, maxDepth)
	if err != nil {
		return nil, err
	}
	return NewIndividual(derivation, builder)
}

// Evaluated reports whether fitness has been computed and cached.
func (ind *Individual) Evaluated() bool {
	return ind.evaluated
}

// RawFitness returns the cached raw fitness; ok is false before the first
// evaluation.
func (ind *Individual) RawFitness() (fitness float64, ok bool) {
	return ind.rawFitness, ind.evaluated
}

// AdjustedFitness returns the penalty-adjusted fitness from the most
// recent evaluation; ok is false before the first one.
func (ind *Individual) AdjustedFitness() (fitness float64, ok bool) {
	return ind.adjustedFitness, ind.evaluated
}

func (ind *Individual) setFitness(raw, adjusted float64) {
	ind.rawFitness = raw
	ind.adjustedFitness = adjusted
	ind.evaluated = true
}
