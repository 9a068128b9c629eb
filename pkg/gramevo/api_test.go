package gramevo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:     "memory",
		BenchmarksDir: filepath.Join(base, "benchmarks"),
		ExportsDir:    filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init client: %v", err)
	}
	return client, base
}

func TestClientRunRunsHistoryAndExport(t *testing.T) {
	ctx := context.Background()
	client, base := newTestClient(t)

	result, err := client.Run(ctx, RunRequest{
		Dataset:     "square",
		Population:  20,
		Generations: 3,
		Seed:        42,
		MaxDepth:    5,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected run id")
	}
	if result.Generations != 3 {
		t.Fatalf("completed %d generations, want 3", result.Generations)
	}
	// Initial pool plus one record per generation.
	if len(result.History) != 4 {
		t.Fatalf("history length = %d, want 4", len(result.History))
	}
	if result.BestExpression == "" {
		t.Fatal("expected best expression text")
	}
	if result.BestComplexity < 1 {
		t.Fatalf("best complexity = %d", result.BestComplexity)
	}

	for _, file := range []string{"run.json", "history.csv"} {
		if _, err := os.Stat(filepath.Join(result.ArtifactsDir, file)); err != nil {
			t.Errorf("missing artifact %s: %v", file, err)
		}
	}

	runs, err := client.Runs(ctx, RunsRequest{Limit: 5})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != result.RunID {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Dataset != "square" || runs[0].Population != 20 {
		t.Fatalf("run item = %+v", runs[0])
	}

	history, err := client.History(ctx, HistoryRequest{Latest: true})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != len(result.History) {
		t.Fatalf("stored history length = %d, want %d", len(history), len(result.History))
	}
	if history[0].Generation != 0 {
		t.Fatalf("first record generation = %d", history[0].Generation)
	}

	export, err := client.Export(ctx, ExportRequest{RunID: result.RunID})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.Directory != filepath.Join(base, "exports", result.RunID) {
		t.Fatalf("export dir = %s", export.Directory)
	}
	if _, err := os.Stat(filepath.Join(export.Directory, "history.csv")); err != nil {
		t.Errorf("missing exported history: %v", err)
	}
}

func TestClientRunEarlyStop(t *testing.T) {
	client, _ := newTestClient(t)

	result, err := client.Run(context.Background(), RunRequest{
		Dataset:     "linear",
		Population:  15,
		Generations: 10,
		Seed:        7,
		MaxDepth:    5,
		EarlyStop:   true,
		FitnessGoal: -1e9,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Generations != 0 {
		t.Fatalf("completed %d generations, want early stop at 0", result.Generations)
	}
	if len(result.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(result.History))
	}
}

func TestClientRunRejectsAmbiguousDataSource(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.Run(context.Background(), RunRequest{Dataset: "square", CSVPath: "cases.csv"})
	if err == nil {
		t.Fatal("expected error for both dataset and csv path")
	}
}

func TestClientRunFromCSV(t *testing.T) {
	client, _ := newTestClient(t)
	path := filepath.Join(t.TempDir(), "halves.csv")
	if err := os.WriteFile(path, []byte("x,target\n1,2\n2,4\n3,6\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result, err := client.Run(context.Background(), RunRequest{
		CSVPath:     path,
		Population:  15,
		Generations: 2,
		Seed:        9,
		MaxDepth:    5,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Dataset != "halves" {
		t.Fatalf("dataset name = %s", result.Dataset)
	}
}

func TestClientHistoryRequiresSelector(t *testing.T) {
	client, _ := newTestClient(t)
	if _, err := client.History(context.Background(), HistoryRequest{}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
	if _, err := client.History(context.Background(), HistoryRequest{RunID: "x", Latest: true}); err == nil {
		t.Fatal("expected error for ambiguous selector")
	}
}

func TestClientExportLatestWithNoRuns(t *testing.T) {
	client, _ := newTestClient(t)
	if _, err := client.Export(context.Background(), ExportRequest{Latest: true}); err == nil {
		t.Fatal("expected error with empty store")
	}
}
