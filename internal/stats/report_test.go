package stats

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gramevo/internal/model"
)

func testArtifacts(runID string) RunArtifacts {
	return RunArtifacts{
		Run: model.RunRecord{
			ID:              runID,
			Dataset:         "square",
			PopulationSize:  40,
			Generations:     10,
			Seed:            42,
			MaxDepth:        6,
			CrossoverRate:   0.9,
			MutationRate:    0.1,
			TournamentSize:  3,
			Penalty:         0.001,
			BestFitness:     -0.25,
			BestExpression:  "x * x",
			BestComplexity:  3,
			CreatedUnixNano: 1000,
		},
		History: []model.GenerationRecord{
			{Generation: 0, BestFitness: -12.5, MeanFitness: -40, BestComplexity: 5, BestExpression: "x + 1"},
			{Generation: 1, BestFitness: -0.25, MeanFitness: -20, BestComplexity: 3, BestExpression: "x * x"},
		},
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	runDir, err := WriteRunArtifacts(baseDir, testArtifacts("run-1"))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Fatalf("run dir = %s", runDir)
	}

	runJSON, err := os.ReadFile(filepath.Join(runDir, "run.json"))
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}
	for _, want := range []string{`"id": "run-1"`, `"dataset": "square"`, `"best_expression": "x * x"`} {
		if !strings.Contains(string(runJSON), want) {
			t.Errorf("run.json missing %s", want)
		}
	}

	file, err := os.Open(filepath.Join(runDir, "history.csv"))
	if err != nil {
		t.Fatalf("open history.csv: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read history.csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 records", len(rows))
	}
	if rows[0][0] != "generation" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[2][0] != "1" || rows[2][4] != "x * x" {
		t.Fatalf("row 2 = %v", rows[2])
	}
}

func TestWriteRunArtifactsRequiresID(t *testing.T) {
	artifacts := testArtifacts("")
	if _, err := WriteRunArtifacts(t.TempDir(), artifacts); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestRunIndexAppendAndList(t *testing.T) {
	baseDir := t.TempDir()

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list empty index: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("empty index has %d entries", len(index))
	}

	first := RunIndexEntry{RunID: "run-1", Dataset: "square", Generations: 10, BestFitness: -0.25}
	second := RunIndexEntry{RunID: "run-2", Dataset: "cube", Generations: 20, BestFitness: -1.5}
	for _, entry := range []RunIndexEntry{first, second} {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	index, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(index) != 2 || index[0] != first || index[1] != second {
		t.Fatalf("index = %+v", index)
	}
}

func TestRunIndexReplacesExistingEntry(t *testing.T) {
	baseDir := t.TempDir()
	entry := RunIndexEntry{RunID: "run-1", Dataset: "square", Generations: 10, BestFitness: -0.25}
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	entry.BestFitness = -0.01
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatalf("reappend: %v", err)
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 1 || index[0].BestFitness != -0.01 {
		t.Fatalf("index = %+v", index)
	}
}

func TestRunIndexRejectsEmptyID(t *testing.T) {
	if err := AppendRunIndex(t.TempDir(), RunIndexEntry{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestRunningMax(t *testing.T) {
	history := []model.GenerationRecord{
		{Generation: 0, BestFitness: -10},
		{Generation: 1, BestFitness: -3},
		{Generation: 2, BestFitness: -7},
		{Generation: 3, BestFitness: -1},
	}
	got := RunningMax(history)
	want := []float64{-10, -3, -3, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("generation %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRunningMaxEmpty(t *testing.T) {
	if got := RunningMax(nil); len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestRunningMaxAllFailures(t *testing.T) {
	history := []model.GenerationRecord{{BestFitness: math.Inf(-1)}}
	if got := RunningMax(history); !math.IsInf(got[0], -1) {
		t.Fatalf("got %v", got)
	}
}
