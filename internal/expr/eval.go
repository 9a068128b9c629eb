package expr

import (
	"errors"
	"fmt"
	"math"
)

// Near-zero denominators are rejected rather than producing huge or
// non-finite quotients.
const divisionEpsilon = 1e-12

// ErrInvalid marks an evaluation-time fault: a guarded division, a
// non-finite intermediate, or an unknown operator. Callers score such
// expressions as unusable rather than crashing.
var ErrInvalid = errors.New("invalid expression")

// ErrMissingVariable marks a variable reference with no binding.
var ErrMissingVariable = errors.New("missing variable binding")

type binaryOp func(a, b float64) (float64, error)

var operators = map[string]binaryOp{
	"+": func(a, b float64) (float64, error) { return a + b, nil },
	"-": func(a, b float64) (float64, error) { return a - b, nil },
	"*": func(a, b float64) (float64, error) { return a * b, nil },
	"/": func(a, b float64) (float64, error) {
		if math.Abs(b) < divisionEpsilon {
			return 0, fmt.Errorf("division by near-zero denominator: %w", ErrInvalid)
		}
		return a / b, nil
	},
}

// Evaluate computes the node's value under the given variable bindings.
// Evaluation is pure and deterministic: the same tree and bindings always
// yield the same result or the same error.
func (n *Node) Evaluate(bindings map[string]float64) (float64, error) {
	switch n.Kind {
	case KindVariable:
		value, ok := bindings[n.Name]
		if !ok {
			return 0, fmt.Errorf("variable %s: %w", n.Name, ErrMissingVariable)
		}
		return value, nil

	case KindConstant:
		return n.Literal, nil

	case KindOperator:
		op, ok := operators[n.Operator]
		if !ok {
			return 0, fmt.Errorf("operator %s not registered: %w", n.Operator, ErrInvalid)
		}
		left, err := n.Left.Evaluate(bindings)
		if err != nil {
			return 0, err
		}
		right, err := n.Right.Evaluate(bindings)
		if err != nil {
			return 0, err
		}
		value, err := op(left, right)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, fmt.Errorf("non-finite result from %s: %w", n.Operator, ErrInvalid)
		}
		return value, nil

	default:
		return 0, fmt.Errorf("unsupported node kind %s: %w", n.Kind, ErrInvalid)
	}
}
