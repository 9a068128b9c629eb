package expr

import (
	"fmt"
	"strconv"
)

// Kind discriminates expression node variants.
type Kind int

const (
	KindVariable Kind = iota
	KindConstant
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindOperator:
		return "operator"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one node of an evaluable expression tree. Variables carry a
// name, constants a numeric literal, operators a symbol and exactly two
// children. Nodes are immutable once built.
type Node struct {
	Kind     Kind
	Name     string
	Literal  float64
	Operator string
	Left     *Node
	Right    *Node
}

func Variable(name string) *Node {
	return &Node{Kind: KindVariable, Name: name}
}

func Constant(value float64) *Node {
	return &Node{Kind: KindConstant, Literal: value}
}

func Operator(symbol string, left, right *Node) *Node {
	return &Node{Kind: KindOperator, Operator: symbol, Left: left, Right: right}
}

// String renders the tree in infix form with full parenthesization.
func (n *Node) String() string {
	switch n.Kind {
	case KindVariable:
		return n.Name
	case KindConstant:
		return strconv.FormatFloat(n.Literal, 'g', -1, 64)
	case KindOperator:
		return fmt.Sprintf("(%s %s %s)", n.Left, n.Operator, n.Right)
	default:
		return fmt.Sprintf("<%s>", n.Kind)
	}
}

// Variables returns every variable name referenced below the node,
// in left-to-right order, duplicates included.
func (n *Node) Variables() []string {
	switch n.Kind {
	case KindVariable:
		return []string{n.Name}
	case KindOperator:
		return append(n.Left.Variables(), n.Right.Variables()...)
	default:
		return nil
	}
}
