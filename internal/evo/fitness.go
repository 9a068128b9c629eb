package evo

import (
	"fmt"
	"math"

	"gramevo/internal/expr"
)

// FitnessCase is one supervised example: named inputs and the expected
// output.
type FitnessCase struct {
	Inputs map[string]float64 `json:"inputs"`
	Target float64            `json:"target"`
}

// Evaluator scores expressions against a fixed ordered case set. Raw
// fitness is the negated mean squared error, so zero is a perfect fit.
// A penalty coefficient applies parsimony pressure proportional to the
// individual's complexity scalar.
type Evaluator struct {
	cases   []FitnessCase
	penalty float64
}

func NewEvaluator(cases []FitnessCase, penalty float64) (*Evaluator, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("evaluator: at least one fitness case is required")
	}
	owned := make([]FitnessCase, len(cases))
	copy(owned, cases)
	return &Evaluator{cases: owned, penalty: penalty}, nil
}

// Cases returns the evaluator's case count.
func (e *Evaluator) Cases() int {
	return len(e.cases)
}

// Penalty returns the parsimony penalty coefficient.
func (e *Evaluator) Penalty() float64 {
	return e.penalty
}

// WithPenalty returns a new evaluator over the same cases with a different
// penalty coefficient. The receiver is left untouched, so penalty sweeps
// can share one case set.
func (e *Evaluator) WithPenalty(penalty float64) *Evaluator {
	return &Evaluator{cases: e.cases, penalty: penalty}
}

// EvaluateExpression returns the negated mean squared error of the
// expression over every case. A single invalid evaluation (missing
// binding, guarded division, non-finite result) disqualifies the whole
// expression with -Inf; there is no partial credit.
func (e *Evaluator) EvaluateExpression(node *expr.Node) float64 {
	if node == nil {
		return math.Inf(-1)
	}
	var sum float64
	for _, c := range e.cases {
		value, err := node.Evaluate(c.Inputs)
		if err != nil {
			return math.Inf(-1)
		}
		diff := value - c.Target
		sum += diff * diff
	}
	return -(sum / float64(len(e.cases)))
}

// Evaluate scores an individual. The raw fitness depends only on the
// immutable trees, so the per-case evaluation loop runs once and its
// result is cached for the individual's lifetime. The adjusted fitness is
// always derived from this evaluator's penalty coefficient, so sweeping
// penalties through WithPenalty copies rescores correctly. An individual
// at -Inf takes no additional penalty.
func (e *Evaluator) Evaluate(ind *Individual) float64 {
	raw, ok := ind.RawFitness()
	if !ok {
		raw = e.EvaluateExpression(ind.Expression)
	}
	adjusted := raw
	if !math.IsInf(raw, -1) {
		adjusted = raw - e.penalty*ind.Complexity.Scalar()
	}
	ind.setFitness(raw, adjusted)
	return adjusted
}
