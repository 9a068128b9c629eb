package evo

import "gramevo/internal/grammar"

// ComplexityMetrics captures structural size statistics for a derivation
// tree. Scalar is the only value consumed for parsimony pressure; Depth
// and TerminalCount are diagnostics.
type ComplexityMetrics struct {
	NodeCount     int `json:"node_count"`
	Depth         int `json:"depth"`
	TerminalCount int `json:"terminal_count"`
}

// Scalar returns the single complexity value used for penalties and
// tie-breaking.
func (m ComplexityMetrics) Scalar() float64 {
	return float64(m.NodeCount)
}

// Less orders metrics lexicographically by (node count, depth, terminal
// count). It exists solely for tie-breaking between equally fit
// individuals and is not an equality notion.
func (m ComplexityMetrics) Less(other ComplexityMetrics) bool {
	if m.NodeCount != other.NodeCount {
		return m.NodeCount < other.NodeCount
	}
	if m.Depth != other.Depth {
		return m.Depth < other.Depth
	}
	return m.TerminalCount < other.TerminalCount
}

// ComputeMetrics walks a derivation tree once and returns its metrics.
// Depth counts edges on the longest root-to-leaf path.
func ComputeMetrics(node *grammar.DerivationNode) ComplexityMetrics {
	if node == nil {
		return ComplexityMetrics{}
	}
	nodes, depth, terminals := measure(node)
	return ComplexityMetrics{NodeCount: nodes, Depth: depth, TerminalCount: terminals}
}

func measure(node *grammar.DerivationNode) (nodes, depth, terminals int) {
	if len(node.Children) == 0 {
		if node.IsTerminal() {
			return 1, 0, 1
		}
		return 1, 0, 0
	}
	nodes = 1
	for _, child := range node.Children {
		childNodes, childDepth, childTerminals := measure(child)
		nodes += childNodes
		terminals += childTerminals
		if childDepth+1 > depth {
			depth = childDepth + 1
		}
	}
	return nodes, depth, terminals
}
