package main

import (
	"encoding/json"
	"os"

	gramevoapi "gramevo/pkg/gramevo"
)

// loadRunRequestFromConfig reads a run request from a JSON file. Keys use
// snake_case; unknown keys are ignored.
func loadRunRequestFromConfig(path string) (gramevoapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gramevoapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return gramevoapi.RunRequest{}, err
	}

	var req gramevoapi.RunRequest
	if v, ok := asString(raw["dataset"]); ok {
		req.Dataset = v
	}
	if v, ok := asString(raw["csv_path"]); ok {
		req.CSVPath = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["max_depth"]); ok {
		req.MaxDepth = v
	}
	if v, ok := asFloat64(raw["crossover_rate"]); ok {
		req.CrossoverRate = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asInt(raw["tournament_size"]); ok {
		req.TournamentSize = v
	}
	if v, ok := asFloat64(raw["penalty"]); ok {
		req.Penalty = v
	}
	if v, ok := asFloat64(raw["tolerance"]); ok {
		req.Tolerance = v
	}
	if v, ok := asBool(raw["early_stop"]); ok {
		req.EarlyStop = v
	}
	if v, ok := asFloat64(raw["fitness_goal"]); ok {
		req.FitnessGoal = v
	}
	if v, ok := asStringSlice(raw["variables"]); ok {
		req.Variables = v
	}
	if v, ok := asStringSlice(raw["constants"]); ok {
		req.Constants = v
	}
	if v, ok := asStringSlice(raw["operators"]); ok {
		req.Operators = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (gramevoapi.RunRequest, error) {
	if configPath == "" {
		return gramevoapi.RunRequest{}, nil
	}
	return loadRunRequestFromConfig(configPath)
}

// overrideFromFlags lets explicitly set flags win over config file values.
func overrideFromFlags(req *gramevoapi.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "dataset":
			req.Dataset = v.(string)
		case "csv":
			req.CSVPath = v.(string)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "max-depth":
			req.MaxDepth = v.(int)
		case "crossover-rate":
			req.CrossoverRate = v.(float64)
		case "mutation-rate":
			req.MutationRate = v.(float64)
		case "tournament":
			req.TournamentSize = v.(int)
		case "penalty":
			req.Penalty = v.(float64)
		case "tolerance":
			req.Tolerance = v.(float64)
		case "early-stop":
			req.EarlyStop = v.(bool)
		case "fitness-goal":
			req.FitnessGoal = v.(float64)
		case "vars":
			req.Variables = splitList(v.(string))
		case "consts":
			req.Constants = splitList(v.(string))
		case "ops":
			req.Operators = splitList(v.(string))
		}
	}
	return nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asStringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
