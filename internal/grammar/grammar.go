package grammar

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Role tags the structural job a symbol plays when derivations are
// translated into expressions. Builders dispatch on roles, never on
// literal symbol names, so grammars are free to rename their symbols.
type Role int

const (
	RoleNone Role = iota
	RoleExpression
	RoleOperation
	RoleOperator
	RoleVariable
	RoleConstant
)

// ValueSource produces a terminal literal at sampling time. It is used for
// injected terminal sets whose values are drawn rather than enumerated,
// e.g. ephemeral constants from a range.
type ValueSource func(rng *rand.Rand) string

// Production is a single expansion alternative: an ordered token sequence,
// or a value generator standing in for a single generated terminal.
type Production struct {
	Expansion []string
	Generate  ValueSource
}

// IsTerminalOnly reports whether expanding this production introduces no
// further non-terminals.
func (p Production) IsTerminalOnly() bool {
	if p.Generate != nil {
		return true
	}
	for _, token := range p.Expansion {
		if IsNonTerminal(token) {
			return false
		}
	}
	return true
}

// IsNonTerminal reports whether a symbol is a non-terminal. Convention
// follows BNF: non-terminals are enclosed in angle brackets, e.g. "<expr>".
func IsNonTerminal(symbol string) bool {
	return strings.HasPrefix(symbol, "<") && strings.HasSuffix(symbol, ">")
}

// Grammar maps non-terminal symbols to ordered production alternatives.
// Rules and terminal injections happen during setup; once sampling starts
// the grammar must be treated as frozen.
type Grammar struct {
	Start string

	productions map[string][]Production
	roles       map[string]Role

	// minLevels caches, per symbol, the minimum number of tree levels a
	// completed subtree rooted at that symbol requires. Recomputed lazily
	// after any rule change.
	minLevels map[string]int
}

func New(start string) *Grammar {
	return &Grammar{
		Start:       start,
		productions: map[string][]Production{},
		roles:       map[string]Role{},
	}
}

// AddRule appends one production alternative for a non-terminal.
func (g *Grammar) AddRule(symbol string, tokens ...string) {
	expansion := make([]string, len(tokens))
	copy(expansion, tokens)
	g.productions[symbol] = append(g.productions[symbol], Production{Expansion: expansion})
	g.minLevels = nil
}

// SetRules replaces every production of a non-terminal.
func (g *Grammar) SetRules(symbol string, expansions [][]string) {
	rules := make([]Production, 0, len(expansions))
	for _, tokens := range expansions {
		expansion := make([]string, len(tokens))
		copy(expansion, tokens)
		rules = append(rules, Production{Expansion: expansion})
	}
	g.productions[symbol] = rules
	g.minLevels = nil
}

// InjectTerminals replaces the productions of a non-terminal with one
// terminal-only production per value.
func (g *Grammar) InjectTerminals(symbol string, values ...string) error {
	if len(values) == 0 {
		return fmt.Errorf("inject terminals for %s: at least one value is required", symbol)
	}
	rules := make([]Production, 0, len(values))
	for _, value := range values {
		rules = append(rules, Production{Expansion: []string{value}})
	}
	g.productions[symbol] = rules
	g.minLevels = nil
	return nil
}

// InjectGenerator replaces the productions of a non-terminal with a single
// production whose terminal value is drawn from source at sampling time.
func (g *Grammar) InjectGenerator(symbol string, source ValueSource) error {
	if source == nil {
		return fmt.Errorf("inject generator for %s: value source is required", symbol)
	}
	g.productions[symbol] = []Production{{Generate: source}}
	g.minLevels = nil
	return nil
}

// ProductionsFor returns the production alternatives registered for a
// symbol, or nil when none exist.
func (g *Grammar) ProductionsFor(symbol string) []Production {
	return g.productions[symbol]
}

// BindRole assigns a structural role to a symbol for expression building.
func (g *Grammar) BindRole(symbol string, role Role) {
	g.roles[symbol] = role
}

// RoleOf returns the role bound to a symbol, RoleNone when unbound.
func (g *Grammar) RoleOf(symbol string) Role {
	return g.roles[symbol]
}

const unbounded = math.MaxInt32

// levelsFor returns the minimum number of levels needed to complete a
// subtree rooted at symbol, or unbounded when the symbol cannot terminate.
func (g *Grammar) levelsFor(symbol string) int {
	if !IsNonTerminal(symbol) {
		return 0
	}
	if g.minLevels == nil {
		g.computeMinLevels()
	}
	if levels, ok := g.minLevels[symbol]; ok {
		return levels
	}
	return unbounded
}

// productionLevels returns the levels a node gains by expanding through p:
// one level for the children plus whatever the deepest child token needs.
func (g *Grammar) productionLevels(p Production) int {
	if g.minLevels == nil {
		g.computeMinLevels()
	}
	worst := 0
	for _, token := range p.Expansion {
		levels := 0
		if IsNonTerminal(token) {
			var ok bool
			levels, ok = g.minLevels[token]
			if !ok {
				levels = unbounded
			}
		}
		if levels > worst {
			worst = levels
		}
	}
	if worst >= unbounded {
		return unbounded
	}
	return 1 + worst
}

// computeMinLevels runs a fixpoint over all registered symbols. Symbols
// that can never reach an all-terminal frontier are left out of the map
// and treated as unbounded.
func (g *Grammar) computeMinLevels() {
	g.minLevels = make(map[string]int, len(g.productions))
	for changed := true; changed; {
		changed = false
		for symbol, rules := range g.productions {
			best := unbounded
			for _, p := range rules {
				if p.Generate != nil {
					if best > 1 {
						best = 1
					}
					continue
				}
				worst := 0
				for _, token := range p.Expansion {
					levels := 0
					if IsNonTerminal(token) {
						known, ok := g.minLevels[token]
						if !ok {
							levels = unbounded
						} else {
							levels = known
						}
					}
					if levels > worst {
						worst = levels
					}
				}
				if worst < unbounded && best > 1+worst {
					best = 1 + worst
				}
			}
			if best < unbounded {
				if known, ok := g.minLevels[symbol]; !ok || known > best {
					g.minLevels[symbol] = best
					changed = true
				}
			}
		}
	}
}
