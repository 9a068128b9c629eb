package gramevo

import (
	"fmt"

	"gramevo/internal/grammar"
)

// DefaultConstants and DefaultOperators are the terminal sets used when a
// run request does not supply its own.
var (
	DefaultConstants = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	DefaultOperators = []string{"+", "-", "*", "/"}
)

// BuildArithmeticGrammar assembles the standard expression grammar over
// the given variables, constants and binary operators, with builder roles
// bound to each symbol.
func BuildArithmeticGrammar(variables, constants, operators []string) (*grammar.Grammar, error) {
	if len(variables) == 0 {
		return nil, fmt.Errorf("arithmetic grammar: at least one variable is required")
	}
	if len(constants) == 0 {
		constants = DefaultConstants
	}
	if len(operators) == 0 {
		operators = DefaultOperators
	}

	g := grammar.New("<expr>")
	g.AddRule("<expr>", "<operation>")
	g.AddRule("<expr>", "<var>")
	g.AddRule("<expr>", "<const>")
	g.AddRule("<operation>", "<op>", "<expr>", "<expr>")
	if err := g.InjectTerminals("<var>", variables...); err != nil {
		return nil, err
	}
	if err := g.InjectTerminals("<const>", constants...); err != nil {
		return nil, err
	}
	if err := g.InjectTerminals("<op>", operators...); err != nil {
		return nil, err
	}

	g.BindRole("<expr>", grammar.RoleExpression)
	g.BindRole("<operation>", grammar.RoleOperation)
	g.BindRole("<op>", grammar.RoleOperator)
	g.BindRole("<var>", grammar.RoleVariable)
	g.BindRole("<const>", grammar.RoleConstant)
	return g, nil
}
