package evo

import (
	"math"
	"math/rand"
	"testing"
)

// scoredIndividual fabricates an evaluated individual with the given
// adjusted fitness and node count, bypassing expression building.
func scoredIndividual(adjusted float64, nodeCount int) *Individual {
	ind := &Individual{Complexity: ComplexityMetrics{NodeCount: nodeCount, Depth: nodeCount, TerminalCount: nodeCount}}
	ind.setFitness(adjusted, adjusted)
	return ind
}

func TestPreferFittestStrictWinner(t *testing.T) {
	strong := scoredIndividual(-1, 50)
	weak := scoredIndividual(-5, 3)

	got, err := PreferFittest(strong, weak, DefaultTolerance)
	if err != nil {
		t.Fatalf("prefer fittest: %v", err)
	}
	if got != strong {
		t.Fatal("higher adjusted fitness must win outside tolerance")
	}
	got, err = PreferFittest(weak, strong, DefaultTolerance)
	if err != nil {
		t.Fatalf("prefer fittest: %v", err)
	}
	if got != strong {
		t.Fatal("winner must not depend on argument order")
	}
}

func TestPreferFittestTieBreaksOnComplexity(t *testing.T) {
	small := scoredIndividual(-2, 4)
	large := scoredIndividual(-2, 9)

	for _, pair := range [][2]*Individual{{small, large}, {large, small}} {
		got, err := PreferFittest(pair[0], pair[1], DefaultTolerance)
		if err != nil {
			t.Fatalf("prefer fittest: %v", err)
		}
		if got != small {
			t.Fatal("tied fitness must prefer the smaller individual")
		}
	}
}

func TestPreferFittestToleranceWindow(t *testing.T) {
	small := scoredIndividual(-2.0, 4)
	slightlyBetter := scoredIndividual(-1.95, 9)

	got, err := PreferFittest(small, slightlyBetter, 0.1)
	if err != nil {
		t.Fatalf("prefer fittest: %v", err)
	}
	if got != small {
		t.Fatal("difference within tolerance must fall back to parsimony")
	}

	got, err = PreferFittest(small, slightlyBetter, 0.001)
	if err != nil {
		t.Fatalf("prefer fittest: %v", err)
	}
	if got != slightlyBetter {
		t.Fatal("difference beyond tolerance must pick the fitter individual")
	}
}

func TestPreferFittestBothWorst(t *testing.T) {
	a := scoredIndividual(math.Inf(-1), 12)
	b := scoredIndividual(math.Inf(-1), 5)
	got, err := PreferFittest(a, b, DefaultTolerance)
	if err != nil {
		t.Fatalf("prefer fittest: %v", err)
	}
	if got != b {
		t.Fatal("two -Inf individuals must tie-break on complexity")
	}
}

func TestPreferFittestRequiresEvaluation(t *testing.T) {
	evaluated := scoredIndividual(-1, 3)
	fresh := &Individual{}
	if _, err := PreferFittest(evaluated, fresh, DefaultTolerance); err == nil {
		t.Fatal("expected error comparing an unevaluated individual")
	}
}

func TestPreferFittestTransitive(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 500; trial++ {
		triple := []*Individual{
			scoredIndividual(float64(rng.Intn(20))*-1.5, 1+rng.Intn(30)),
			scoredIndividual(float64(rng.Intn(20))*-1.5, 1+rng.Intn(30)),
			scoredIndividual(float64(rng.Intn(20))*-1.5, 1+rng.Intn(30)),
		}
		ab, err := PreferFittest(triple[0], triple[1], DefaultTolerance)
		if err != nil {
			t.Fatalf("prefer fittest: %v", err)
		}
		bc, err := PreferFittest(triple[1], triple[2], DefaultTolerance)
		if err != nil {
			t.Fatalf("prefer fittest: %v", err)
		}
		ac, err := PreferFittest(triple[0], triple[2], DefaultTolerance)
		if err != nil {
			t.Fatalf("prefer fittest: %v", err)
		}
		if ab == triple[0] && bc == triple[1] && ac != triple[0] {
			t.Fatalf("transitivity violated on trial %d", trial)
		}
	}
}

func TestTournamentSelectionValidation(t *testing.T) {
	population := []*Individual{scoredIndividual(-1, 3), scoredIndividual(-2, 3)}
	rng := rand.New(rand.NewSource(1))

	if _, err := TournamentSelection(population, 2, nil); err == nil {
		t.Error("expected error for nil rng")
	}
	if _, err := TournamentSelection(population, 0, rng); err == nil {
		t.Error("expected error for k < 1")
	}
	if _, err := TournamentSelection(population, 3, rng); err == nil {
		t.Error("expected error for k beyond population size")
	}
}

func TestTournamentSelectionFullDrawPicksGlobalBest(t *testing.T) {
	population := []*Individual{
		scoredIndividual(-9, 3),
		scoredIndividual(-1, 3),
		scoredIndividual(-4, 3),
		scoredIndividual(-2, 3),
	}
	rng := rand.New(rand.NewSource(5))
	// Sampling without replacement: a full draw always sees everyone.
	for i := 0; i < 20; i++ {
		winner, err := TournamentSelection(population, len(population), rng)
		if err != nil {
			t.Fatalf("tournament: %v", err)
		}
		if winner != population[1] {
			t.Fatal("full tournament must return the global best")
		}
	}
}

func TestTournamentSelectionReturnsReference(t *testing.T) {
	population := []*Individual{scoredIndividual(-1, 3), scoredIndividual(-2, 3)}
	rng := rand.New(rand.NewSource(9))
	winner, err := TournamentSelection(population, 1, rng)
	if err != nil {
		t.Fatalf("tournament: %v", err)
	}
	if winner != population[0] && winner != population[1] {
		t.Fatal("winner must be a reference into the population")
	}
}
