package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gramevo/internal/evo"
)

// builtins are small regression targets sampled over a fixed grid, enough
// to exercise a run without any external data.
var builtins = map[string]func(x float64) float64{
	"square": func(x float64) float64 { return x * x },
	"cube":   func(x float64) float64 { return x * x * x },
	"linear": func(x float64) float64 { return 2*x + 1 },
}

var builtinGrid = []float64{-2, -1, 0, 1, 2, 3, 4}

// Names lists the built-in dataset names in stable order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns the fitness cases of a named single-variable target
// over the variable "x".
func Builtin(name string) ([]evo.FitnessCase, error) {
	target, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q (available: %v)", name, Names())
	}
	cases := make([]evo.FitnessCase, 0, len(builtinGrid))
	for _, x := range builtinGrid {
		cases = append(cases, evo.FitnessCase{
			Inputs: map[string]float64{"x": x},
			Target: target(x),
		})
	}
	return cases, nil
}

// LoadCSV reads fitness cases from a CSV file. The header names the input
// variables; the last column is the target. Every row must be fully
// numeric.
func LoadCSV(path string) ([]evo.FitnessCase, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%s: need a header and at least one data row", path)
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, nil, fmt.Errorf("%s: need at least one input column and a target column", path)
	}
	variables := header[:len(header)-1]

	cases := make([]evo.FitnessCase, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, nil, fmt.Errorf("%s row %d: %d columns, want %d", path, i+2, len(row), len(header))
		}
		inputs := make(map[string]float64, len(variables))
		for j, name := range variables {
			value, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d column %s: %w", path, i+2, name, err)
			}
			inputs[name] = value
		}
		target, err := strconv.ParseFloat(row[len(row)-1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s row %d target: %w", path, i+2, err)
		}
		cases = append(cases, evo.FitnessCase{Inputs: inputs, Target: target})
	}
	return cases, variables, nil
}
