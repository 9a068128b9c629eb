package grammar

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrExhausted signals that no production of some symbol can complete
// within the remaining depth budget. It indicates a malformed grammar or
// an impossibly small depth bound, not a recoverable sampling failure.
var ErrExhausted = errors.New("no production terminates within the depth budget")

// DerivationNode is one node of a sampled derivation tree. Terminal leaves
// carry their literal in Value. Depth is the edge distance from the root.
// Trees are immutable once sampled; edits go through deep copies.
type DerivationNode struct {
	Symbol   string
	Value    string
	Depth    int
	Children []*DerivationNode
}

// IsTerminal reports whether this node is a terminal leaf.
func (n *DerivationNode) IsTerminal() bool {
	return !IsNonTerminal(n.Symbol)
}

// Flatten returns the pre-order node sequence of the subtree, root first.
func (n *DerivationNode) Flatten() []*DerivationNode {
	nodes := []*DerivationNode{n}
	for _, child := range n.Children {
		nodes = append(nodes, child.Flatten()...)
	}
	return nodes
}

// Derive samples a derivation tree from the start symbol. The resulting
// tree never exceeds maxDepth edges from root to any leaf: at every
// expansion only productions whose minimum completion depth fits the
// remaining budget are eligible (a hard feasibility cutoff rather than a
// graduated termination bias).
func (g *Grammar) Derive(rng *rand.Rand, maxDepth int) (*DerivationNode, error) {
	return g.DeriveFrom(g.Start, rng, 0, maxDepth)
}

// DeriveFrom samples a derivation subtree rooted at symbol, placed at the
// given depth of a tree bounded by maxDepth. Mutation uses it to regrow a
// subtree in place under the remaining budget.
func (g *Grammar) DeriveFrom(symbol string, rng *rand.Rand, depth, maxDepth int) (*DerivationNode, error) {
	if rng == nil {
		return nil, fmt.Errorf("derive %s: random source is required", symbol)
	}
	if maxDepth < 1 {
		return nil, fmt.Errorf("derive %s: max depth must be positive, got %d", symbol, maxDepth)
	}
	if depth < 0 || depth > maxDepth {
		return nil, fmt.Errorf("derive %s: depth %d outside [0, %d]", symbol, depth, maxDepth)
	}
	return g.expand(symbol, rng, depth, maxDepth)
}

func (g *Grammar) expand(symbol string, rng *rand.Rand, depth, maxDepth int) (*DerivationNode, error) {
	if !IsNonTerminal(symbol) {
		return &DerivationNode{Symbol: symbol, Value: symbol, Depth: depth}, nil
	}

	rules := g.productions[symbol]
	if len(rules) == 0 {
		return nil, fmt.Errorf("no productions registered for symbol %s", symbol)
	}

	eligible := g.eligibleProductions(rules, maxDepth-depth)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("expand %s at depth %d/%d: %w", symbol, depth, maxDepth, ErrExhausted)
	}

	production := eligible[rng.Intn(len(eligible))]
	if production.Generate != nil {
		value := production.Generate(rng)
		leaf := &DerivationNode{Symbol: value, Value: value, Depth: depth + 1}
		return &DerivationNode{Symbol: symbol, Depth: depth, Children: []*DerivationNode{leaf}}, nil
	}

	children := make([]*DerivationNode, 0, len(production.Expansion))
	for _, token := range production.Expansion {
		child, err := g.expand(token, rng, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return &DerivationNode{Symbol: symbol, Depth: depth, Children: children}, nil
}

// eligibleProductions filters alternatives to those whose minimum
// completion depth fits in the remaining budget.
func (g *Grammar) eligibleProductions(rules []Production, budget int) []Production {
	eligible := make([]Production, 0, len(rules))
	for _, p := range rules {
		if g.productionLevels(p) <= budget {
			eligible = append(eligible, p)
		}
	}
	return eligible
}
