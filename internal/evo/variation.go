package evo

import (
	"fmt"
	"math/rand"

	"gramevo/internal/expr"
	"gramevo/internal/grammar"
)

// crossoverAttempts bounds cut-point resampling before crossover falls
// back to cloning the first parent.
const crossoverAttempts = 8

// RandomSubtree picks one node uniformly from the tree, root and
// terminals included.
func RandomSubtree(root *grammar.DerivationNode, rng *rand.Rand) *grammar.DerivationNode {
	nodes := root.Flatten()
	return nodes[rng.Intn(len(nodes))]
}

// CloneTree deep-copies a derivation tree. The copy shares no node
// identity with the source, so edits to one can never leak into the
// other.
func CloneTree(node *grammar.DerivationNode) *grammar.DerivationNode {
	clone := &grammar.DerivationNode{
		Symbol: node.Symbol,
		Value:  node.Value,
		Depth:  node.Depth,
	}
	if len(node.Children) > 0 {
		clone.Children = make([]*grammar.DerivationNode, len(node.Children))
		for i, child := range node.Children {
			clone.Children[i] = CloneTree(child)
		}
	}
	return clone
}

// ReplaceSubtree returns a new tree with the target node (matched by
// identity) swapped for a clone of replacement. The target must be a node
// of root.
func ReplaceSubtree(root, target, replacement *grammar.DerivationNode) (*grammar.DerivationNode, error) {
	result, found := substitute(root, target, replacement)
	if !found {
		return nil, fmt.Errorf("replace subtree: target %s not found in tree", target.Symbol)
	}
	renumber(result, 0)
	return result, nil
}

func substitute(root, target, replacement *grammar.DerivationNode) (*grammar.DerivationNode, bool) {
	if root == target {
		return CloneTree(replacement), true
	}
	clone := &grammar.DerivationNode{Symbol: root.Symbol, Value: root.Value}
	found := false
	if len(root.Children) > 0 {
		clone.Children = make([]*grammar.DerivationNode, len(root.Children))
		for i, child := range root.Children {
			replaced, ok := substitute(child, target, replacement)
			clone.Children[i] = replaced
			found = found || ok
		}
	}
	return clone, found
}

// renumber restores depth fields after a structural edit moved subtrees
// between levels.
func renumber(node *grammar.DerivationNode, depth int) {
	node.Depth = depth
	for _, child := range node.Children {
		renumber(child, depth+1)
	}
}

// Crossover clones both parents' derivations, swaps one random subtree
// from each, and wraps the result as a fresh unevaluated individual.
// Cut-point pairs whose offspring would exceed maxDepth are resampled up
// to crossoverAttempts times; after that the child is a plain clone of
// parentA. Parents are never modified.
func Crossover(parentA, parentB *Individual, builder *expr.Builder, rng *rand.Rand, maxDepth int) (*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("crossover: random source is required")
	}
	if maxDepth < 1 {
		return nil, fmt.Errorf("crossover: max depth must be positive, got %d", maxDepth)
	}

	for attempt := 0; attempt < crossoverAttempts; attempt++ {
		treeA := CloneTree(parentA.Derivation)
		cutA := RandomSubtree(treeA, rng)
		cutB := RandomSubtree(parentB.Derivation, rng)
		if cutA.Symbol != cutB.Symbol {
			// Swapping across symbols would break the grammar contract.
			continue
		}
		child, err := ReplaceSubtree(treeA, cutA, cutB)
		if err != nil {
			return nil, err
		}
		if ComputeMetrics(child).Depth > maxDepth {
			continue
		}
		return NewIndividual(child, builder)
	}
	return NewIndividual(CloneTree(parentA.Derivation), builder)
}

// Mutation clones the parent's derivation, picks one random node, and
// regrows that subtree from the grammar under the remaining depth budget.
// The parent is never modified.
func Mutation(parent *Individual, g *grammar.Grammar, builder *expr.Builder, rng *rand.Rand, maxDepth int) (*Individual, error) {
	if g == nil {
		return nil, fmt.Errorf("mutation: grammar is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("mutation: random source is required")
	}
	if maxDepth < 1 {
		return nil, fmt.Errorf("mutation: max depth must be positive, got %d", maxDepth)
	}

	tree := CloneTree(parent.Derivation)
	target := RandomSubtree(tree, rng)
	regrown, err := g.DeriveFrom(target.Symbol, rng, target.Depth, maxDepth)
	if err != nil {
		return nil, err
	}
	mutated, err := ReplaceSubtree(tree, target, regrown)
	if err != nil {
		return nil, err
	}
	return NewIndividual(mutated, builder)
}
