package gramevo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"gramevo/internal/dataset"
	"gramevo/internal/evo"
	"gramevo/internal/model"
	"gramevo/internal/stats"
	"gramevo/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "gramevo.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

type Client struct {
	store storage.Store

	benchmarksDir string
	exportsDir    string
}

// RunRequest configures one experiment. Zero-valued numeric fields are
// treated as unset and fall back to defaults when Run executes, so an
// exact-zero crossover rate, mutation rate, or penalty is not expressible
// through this request; use evo.Config for those edge settings.
type RunRequest struct {
	Dataset        string
	CSVPath        string
	Population     int
	Generations    int
	Seed           int64
	MaxDepth       int
	CrossoverRate  float64
	MutationRate   float64
	TournamentSize int
	Penalty        float64
	Tolerance      float64
	EarlyStop      bool
	FitnessGoal    float64
	Variables      []string
	Constants      []string
	Operators      []string
}

type GenerationResult struct {
	Generation     int
	BestFitness    float64
	MeanFitness    float64
	BestComplexity int
	BestExpression string
}

type RunResult struct {
	RunID          string
	ArtifactsDir   string
	Dataset        string
	Generations    int
	BestExpression string
	BestFitness    float64
	BestComplexity int
	History        []GenerationResult
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	Dataset        string
	Seed           int64
	Population     int
	Generations    int
	BestFitness    float64
	BestExpression string
}

type HistoryRequest struct {
	RunID  string
	Latest bool
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run executes one complete evolution experiment: build the fitness cases
// and grammar, evolve for the requested number of generations (stopping
// early once the fitness goal is met, when asked to), then persist the run
// record, its history and the artifact files.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.Dataset != "" && req.CSVPath != "" {
		return RunResult{}, errors.New("use either a builtin dataset or a csv path")
	}
	if req.Dataset == "" && req.CSVPath == "" {
		req.Dataset = "square"
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 20
	}
	if req.MaxDepth <= 0 {
		req.MaxDepth = 6
	}
	if req.CrossoverRate == 0 {
		req.CrossoverRate = 0.9
	}
	if req.MutationRate == 0 {
		req.MutationRate = 0.1
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = 3
	}
	if req.Penalty == 0 {
		req.Penalty = 0.001
	}

	var (
		cases     []evo.FitnessCase
		variables []string
		name      string
		err       error
	)
	if req.CSVPath != "" {
		cases, variables, err = dataset.LoadCSV(req.CSVPath)
		if err != nil {
			return RunResult{}, err
		}
		name = strings.TrimSuffix(filepath.Base(req.CSVPath), filepath.Ext(req.CSVPath))
	} else {
		cases, err = dataset.Builtin(req.Dataset)
		if err != nil {
			return RunResult{}, err
		}
		variables = []string{"x"}
		name = req.Dataset
	}
	if len(req.Variables) > 0 {
		variables = req.Variables
	}

	g, err := BuildArithmeticGrammar(variables, req.Constants, req.Operators)
	if err != nil {
		return RunResult{}, err
	}
	evaluator, err := evo.NewEvaluator(cases, req.Penalty)
	if err != nil {
		return RunResult{}, err
	}

	population, err := evo.NewPopulation(evo.Config{
		Grammar:        g,
		Evaluator:      evaluator,
		Size:           req.Population,
		MaxDepth:       req.MaxDepth,
		CrossoverRate:  req.CrossoverRate,
		MutationRate:   req.MutationRate,
		TournamentSize: req.TournamentSize,
		Tolerance:      req.Tolerance,
		RNG:            rand.New(rand.NewSource(req.Seed)),
	})
	if err != nil {
		return RunResult{}, err
	}

	population.EvaluateAll()
	record, err := snapshotGeneration(population)
	if err != nil {
		return RunResult{}, err
	}
	history := []model.GenerationRecord{record}

	for population.Generation() < req.Generations {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		if req.EarlyStop && record.BestFitness >= req.FitnessGoal {
			break
		}
		if err := population.EvolveOneGeneration(); err != nil {
			return RunResult{}, err
		}
		population.EvaluateAll()
		record, err = snapshotGeneration(population)
		if err != nil {
			return RunResult{}, err
		}
		history = append(history, record)
	}

	best, err := population.Best()
	if err != nil {
		return RunResult{}, err
	}
	bestFitness, _ := best.AdjustedFitness()

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%d-%d", name, req.Seed, now.Unix())
	run := storage.Stamp(model.RunRecord{
		ID:              runID,
		Dataset:         name,
		PopulationSize:  req.Population,
		Generations:     population.Generation(),
		Seed:            req.Seed,
		MaxDepth:        req.MaxDepth,
		CrossoverRate:   req.CrossoverRate,
		MutationRate:    req.MutationRate,
		TournamentSize:  req.TournamentSize,
		Penalty:         req.Penalty,
		BestFitness:     clampFitness(bestFitness),
		BestExpression:  best.Expression.String(),
		BestComplexity:  best.Complexity.NodeCount,
		CreatedUnixNano: now.UnixNano(),
	})

	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunResult{}, err
	}
	if err := c.store.SaveHistory(ctx, runID, history); err != nil {
		return RunResult{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{Run: run, History: history})
	if err != nil {
		return RunResult{}, err
	}
	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:       runID,
		Dataset:     name,
		Generations: run.Generations,
		BestFitness: run.BestFitness,
	}); err != nil {
		return RunResult{}, err
	}

	return RunResult{
		RunID:          runID,
		ArtifactsDir:   filepath.Clean(runDir),
		Dataset:        name,
		Generations:    run.Generations,
		BestExpression: run.BestExpression,
		BestFitness:    run.BestFitness,
		BestComplexity: run.BestComplexity,
		History:        toGenerationResults(history),
	}, nil
}

// Runs lists stored runs, newest last, capped at the requested limit.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[len(runs)-req.Limit:]
	}
	items := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, RunItem{
			RunID:          run.ID,
			Dataset:        run.Dataset,
			Seed:           run.Seed,
			Population:     run.PopulationSize,
			Generations:    run.Generations,
			BestFitness:    run.BestFitness,
			BestExpression: run.BestExpression,
		})
	}
	return items, nil
}

// History returns the stored per-generation curve of a run.
func (c *Client) History(ctx context.Context, req HistoryRequest) ([]GenerationResult, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no history stored for run %s", runID)
	}
	return toGenerationResults(history), nil
}

// Export rewrites the artifact files of a stored run into OutDir.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run %s not found", runID)
	}
	history, _, err := c.store.GetHistory(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}

	dir, err := stats.WriteRunArtifacts(req.OutDir, stats.RunArtifacts{Run: run, History: history})
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(dir)}, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs stored")
	}
	return runs[len(runs)-1].ID, nil
}

// snapshotGeneration summarizes the current pool. Individuals whose
// expressions never evaluate carry -Inf fitness; they are excluded from
// the mean and clamped in the stored best so the records stay JSON-safe.
func snapshotGeneration(p *evo.Population) (model.GenerationRecord, error) {
	best, err := p.Best()
	if err != nil {
		return model.GenerationRecord{}, err
	}
	bestFitness, _ := best.AdjustedFitness()

	var sum float64
	var finite int
	for _, ind := range p.Individuals() {
		fitness, ok := ind.AdjustedFitness()
		if !ok || math.IsInf(fitness, 0) || math.IsNaN(fitness) {
			continue
		}
		sum += fitness
		finite++
	}
	mean := math.Inf(-1)
	if finite > 0 {
		mean = sum / float64(finite)
	}

	return model.GenerationRecord{
		Generation:     p.Generation(),
		BestFitness:    clampFitness(bestFitness),
		MeanFitness:    clampFitness(mean),
		BestComplexity: best.Complexity.NodeCount,
		BestExpression: best.Expression.String(),
	}, nil
}

// clampFitness maps non-finite fitness to the most negative finite value
// so records survive JSON encoding.
func clampFitness(fitness float64) float64 {
	if math.IsNaN(fitness) || math.IsInf(fitness, 0) {
		return -math.MaxFloat64
	}
	return fitness
}

func toGenerationResults(history []model.GenerationRecord) []GenerationResult {
	out := make([]GenerationResult, 0, len(history))
	for _, record := range history {
		out = append(out, GenerationResult{
			Generation:     record.Generation,
			BestFitness:    record.BestFitness,
			MeanFitness:    record.MeanFitness,
			BestComplexity: record.BestComplexity,
			BestExpression: record.BestExpression,
		})
	}
	return out
}
