package evo

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultTolerance is the adjusted-fitness window within which two
// individuals count as tied and parsimony decides.
const DefaultTolerance = 1e-12

// PreferFittest compares two evaluated individuals. Outside the tolerance
// window the higher adjusted fitness wins; inside it the structurally
// smaller individual wins, ordered lexicographically by (node count,
// depth, terminal count). The result does not depend on argument order.
func PreferFittest(a, b *Individual, tolerance float64) (*Individual, error) {
	fitnessA, okA := a.AdjustedFitness()
	fitnessB, okB := b.AdjustedFitness()
	if !okA || !okB {
		return nil, fmt.Errorf("prefer fittest: individuals must be evaluated before comparison")
	}

	// Two -Inf scores compare as tied so parsimony still decides.
	if !math.IsInf(fitnessA, -1) || !math.IsInf(fitnessB, -1) {
		diff := fitnessA - fitnessB
		if diff > tolerance {
			return a, nil
		}
		if diff < -tolerance {
			return b, nil
		}
	}

	if b.Complexity.Less(a.Complexity) {
		return b, nil
	}
	return a, nil
}

// TournamentSelection draws k distinct individuals uniformly from the
// population (sampling without replacement, matching lower selection
// pressure for small populations) and folds them pairwise through
// PreferFittest. The winner is a reference into the population, never a
// copy.
func TournamentSelection(population []*Individual, k int, rng *rand.Rand) (*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("tournament selection: random source is required")
	}
	if k < 1 {
		return nil, fmt.Errorf("tournament selection: size must be >= 1, got %d", k)
	}
	if k > len(population) {
		return nil, fmt.Errorf("tournament selection: size %d exceeds population %d", k, len(population))
	}

	order := rng.Perm(len(population))
	winner := population[order[0]]
	for i := 1; i < k; i++ {
		contender := population[order[i]]
		next, err := PreferFittest(winner, contender, DefaultTolerance)
		if err != nil {
			return nil, err
		}
		winner = next
	}
	return winner, nil
}
