package expr

import (
	"errors"
	"fmt"
	"strconv"

	"gramevo/internal/grammar"
)

// ErrStructuralMismatch signals a derivation subtree whose shape does not
// match the role its grammar symbol is bound to. It indicates a broken
// grammar/builder contract, not a recoverable runtime condition.
var ErrStructuralMismatch = errors.New("derivation shape does not match grammar role")

// Builder translates derivation trees into expression trees. It dispatches
// on the role bindings registered with the grammar, so symbol names are
// free to differ between grammars.
type Builder struct {
	grammar *grammar.Grammar
}

func NewBuilder(g *grammar.Grammar) (*Builder, error) {
	if g == nil {
		return nil, fmt.Errorf("builder: grammar is required")
	}
	return &Builder{grammar: g}, nil
}

// Build converts a derivation tree into an evaluable expression tree.
func (b *Builder) Build(node *grammar.DerivationNode) (*Node, error) {
	if node == nil {
		return nil, fmt.Errorf("build: derivation is required")
	}
	return b.convert(node)
}

func (b *Builder) convert(node *grammar.DerivationNode) (*Node, error) {
	switch b.grammar.RoleOf(node.Symbol) {
	case grammar.RoleExpression:
		if len(node.Children) != 1 {
			return nil, fmt.Errorf("%s expects one child, got %d: %w", node.Symbol, len(node.Children), ErrStructuralMismatch)
		}
		return b.convert(node.Children[0])

	case grammar.RoleOperation:
		if len(node.Children) != 3 {
			return nil, fmt.Errorf("%s expects an operator and two operands, got %d children: %w", node.Symbol, len(node.Children), ErrStructuralMismatch)
		}
		if b.grammar.RoleOf(node.Children[0].Symbol) != grammar.RoleOperator {
			return nil, fmt.Errorf("%s first child %s is not bound as operator: %w", node.Symbol, node.Children[0].Symbol, ErrStructuralMismatch)
		}
		symbol, err := b.token(node.Children[0])
		if err != nil {
			return nil, err
		}
		left, err := b.convert(node.Children[1])
		if err != nil {
			return nil, err
		}
		right, err := b.convert(node.Children[2])
		if err != nil {
			return nil, err
		}
		return Operator(symbol, left, right), nil

	case grammar.RoleVariable:
		name, err := b.token(node)
		if err != nil {
			return nil, err
		}
		return Variable(name), nil

	case grammar.RoleConstant:
		token, err := b.token(node)
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("%s literal %q is not numeric: %w", node.Symbol, token, ErrStructuralMismatch)
		}
		return Constant(value), nil
	}

	// Unbound single-child wrappers pass through; anything else has no
	// expression meaning.
	if len(node.Children) == 1 {
		return b.convert(node.Children[0])
	}
	return nil, fmt.Errorf("unhandled symbol %s with %d children: %w", node.Symbol, len(node.Children), ErrStructuralMismatch)
}

// token descends a single-child chain to the terminal literal beneath it.
func (b *Builder) token(node *grammar.DerivationNode) (string, error) {
	for !node.IsTerminal() {
		if len(node.Children) != 1 {
			return "", fmt.Errorf("token under %s is not a single-child chain: %w", node.Symbol, ErrStructuralMismatch)
		}
		node = node.Children[0]
	}
	if node.Value == "" {
		return "", fmt.Errorf("terminal %s carries no value: %w", node.Symbol, ErrStructuralMismatch)
	}
	return node.Value, nil
}
