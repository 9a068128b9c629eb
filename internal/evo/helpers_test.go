package evo

import (
	"fmt"
	"strings"
	"testing"

	"gramevo/internal/expr"
	"gramevo/internal/grammar"
)

func newTestGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New("<expr>")
	g.AddRule("<expr>", "<operation>")
	g.AddRule("<expr>", "<var>")
	g.AddRule("<expr>", "<const>")
	g.AddRule("<operation>", "<op>", "<expr>", "<expr>")
	if err := g.InjectTerminals("<var>", "x"); err != nil {
		t.Fatalf("inject vars: %v", err)
	}
	if err := g.InjectTerminals("<const>", "0", "1", "2"); err != nil {
		t.Fatalf("inject consts: %v", err)
	}
	if err := g.InjectTerminals("<op>", "+", "-", "*", "/"); err != nil {
		t.Fatalf("inject ops: %v", err)
	}
	g.BindRole("<expr>", grammar.RoleExpression)
	g.BindRole("<operation>", grammar.RoleOperation)
	g.BindRole("<op>", grammar.RoleOperator)
	g.BindRole("<var>", grammar.RoleVariable)
	g.BindRole("<const>", grammar.RoleConstant)
	return g
}

func newTestBuilder(t *testing.T, g *grammar.Grammar) *expr.Builder {
	t.Helper()
	b, err := expr.NewBuilder(g)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return b
}

// treeSignature renders a derivation tree so structural changes are
// detectable by string comparison.
func treeSignature(n *grammar.DerivationNode) string {
	if len(n.Children) == 0 {
		return n.Value
	}
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		parts = append(parts, treeSignature(child))
	}
	return fmt.Sprintf("%s(%s)", n.Symbol, strings.Join(parts, " "))
}

// derive builds the derivation of (x * x) by hand for fixed-shape tests.
func deriveXTimesX() *grammar.DerivationNode {
	leaf := func(value string) *grammar.DerivationNode {
		return &grammar.DerivationNode{Symbol: value, Value: value}
	}
	wrap := func(symbol string, children ...*grammar.DerivationNode) *grammar.DerivationNode {
		return &grammar.DerivationNode{Symbol: symbol, Children: children}
	}
	operand := func() *grammar.DerivationNode {
		return wrap("<expr>", wrap("<var>", leaf("x")))
	}
	root := wrap("<expr>", wrap("<operation>", wrap("<op>", leaf("*")), operand(), operand()))
	numberDepths(root, 0)
	return root
}

func deriveVarLeaf() *grammar.DerivationNode {
	leaf := &grammar.DerivationNode{Symbol: "x", Value: "x"}
	varNode := &grammar.DerivationNode{Symbol: "<var>", Children: []*grammar.DerivationNode{leaf}}
	root := &grammar.DerivationNode{Symbol: "<expr>", Children: []*grammar.DerivationNode{varNode}}
	numberDepths(root, 0)
	return root
}

func numberDepths(n *grammar.DerivationNode, depth int) {
	n.Depth = depth
	for _, child := range n.Children {
		numberDepths(child, depth+1)
	}
}

func mustIndividual(t *testing.T, derivation *grammar.DerivationNode, builder *expr.Builder) *Individual {
	t.Helper()
	ind, err := NewIndividual(derivation, builder)
	if err != nil {
		t.Fatalf("new individual: %v", err)
	}
	return ind
}

func squareCases() []FitnessCase {
	return []FitnessCase{
		{Inputs: map[string]float64{"x": 1}, Target: 1},
		{Inputs: map[string]float64{"x": 2}, Target: 4},
		{Inputs: map[string]float64{"x": 3}, Target: 9},
	}
}
