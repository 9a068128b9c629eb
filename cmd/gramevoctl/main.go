package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	gramevoapi "gramevo/pkg/gramevo"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
	defaultDBPath = "gramevo.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func newClient(storeKind, dbPath string) (*gramevoapi.Client, error) {
	return gramevoapi.New(gramevoapi.Options{
		StoreKind:     storeKind,
		DBPath:        dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	datasetName := fs.String("dataset", "", "builtin dataset name (square|cube|linear)")
	csvPath := fs.String("csv", "", "csv file with input columns and a trailing target column")
	population := fs.Int("pop", 50, "population size")
	generations := fs.Int("gens", 20, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	maxDepth := fs.Int("max-depth", 6, "derivation tree depth budget")
	crossoverRate := fs.Float64("crossover-rate", 0.9, "per-child crossover probability")
	mutationRate := fs.Float64("mutation-rate", 0.1, "per-child mutation probability")
	tournament := fs.Int("tournament", 3, "tournament size")
	penalty := fs.Float64("penalty", 0.001, "parsimony penalty per node")
	tolerance := fs.Float64("tolerance", 0, "fitness comparison tolerance (0 uses the default)")
	earlyStop := fs.Bool("early-stop", false, "stop once the fitness goal is reached")
	fitnessGoal := fs.Float64("fitness-goal", 0.0, "early-stop best fitness goal")
	variables := fs.String("vars", "", "comma-separated variable names (default: dataset's)")
	constants := fs.String("consts", "", "comma-separated constant terminals")
	operators := fs.String("ops", "", "comma-separated binary operators")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = gramevoapi.RunRequest{
			Dataset:        *datasetName,
			CSVPath:        *csvPath,
			Population:     *population,
			Generations:    *generations,
			Seed:           *seed,
			MaxDepth:       *maxDepth,
			CrossoverRate:  *crossoverRate,
			MutationRate:   *mutationRate,
			TournamentSize: *tournament,
			Penalty:        *penalty,
			Tolerance:      *tolerance,
			EarlyStop:      *earlyStop,
			FitnessGoal:    *fitnessGoal,
			Variables:      splitList(*variables),
			Constants:      splitList(*constants),
			Operators:      splitList(*operators),
		}
	} else {
		err := overrideFromFlags(&req, setFlags, map[string]any{
			"dataset":        *datasetName,
			"csv":            *csvPath,
			"pop":            *population,
			"gens":           *generations,
			"seed":           *seed,
			"max-depth":      *maxDepth,
			"crossover-rate": *crossoverRate,
			"mutation-rate":  *mutationRate,
			"tournament":     *tournament,
			"penalty":        *penalty,
			"tolerance":      *tolerance,
			"early-stop":     *earlyStop,
			"fitness-goal":   *fitnessGoal,
			"vars":           *variables,
			"consts":         *constants,
			"ops":            *operators,
		})
		if err != nil {
			return err
		}
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	result, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s dataset=%s pop=%d gens=%d seed=%d\n",
		result.RunID, result.Dataset, req.Population, result.Generations, req.Seed)
	for _, record := range result.History {
		fmt.Printf("generation=%d best_fitness=%.6f expr=%s\n",
			record.Generation, record.BestFitness, record.BestExpression)
	}
	fmt.Printf("final_best_fitness=%.6f complexity=%d expr=%s\n",
		result.BestFitness, result.BestComplexity, result.BestExpression)
	fmt.Printf("artifacts_dir=%s\n", result.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	items, err := client.Runs(ctx, gramevoapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		type runsItem struct {
			RunID          string  `json:"run_id"`
			Dataset        string  `json:"dataset"`
			Seed           int64   `json:"seed"`
			PopulationSize int     `json:"population_size"`
			Generations    int     `json:"generations"`
			BestFitness    float64 `json:"best_fitness"`
			BestExpression string  `json:"best_expression"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem{
				RunID:          item.RunID,
				Dataset:        item.Dataset,
				Seed:           item.Seed,
				PopulationSize: item.Population,
				Generations:    item.Generations,
				BestFitness:    item.BestFitness,
				BestExpression: item.BestExpression,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, item := range items {
		fmt.Printf("run_id=%s dataset=%s seed=%d pop=%d gens=%d best_fitness=%.6f expr=%s\n",
			item.RunID, item.Dataset, item.Seed, item.Population, item.Generations, item.BestFitness, item.BestExpression)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to inspect")
	latest := fs.Bool("latest", false, "use the most recent run")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	history, err := client.History(ctx, gramevoapi.HistoryRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	for _, record := range history {
		fmt.Printf("generation=%d best_fitness=%.6f mean_fitness=%.6f complexity=%d expr=%s\n",
			record.Generation, record.BestFitness, record.MeanFitness, record.BestComplexity, record.BestExpression)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to export")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", "", "output directory (default: exports)")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Export(ctx, gramevoapi.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", summary.RunID, summary.Directory)
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: gramevoctl <init|run|runs|history|export> [flags]", msg)
}
