package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gramevo/internal/model"
)

const runIndexFile = "run_index.json"

// RunArtifacts bundles everything written to a run's artifact directory.
type RunArtifacts struct {
	Run     model.RunRecord
	History []model.GenerationRecord
}

// RunIndexEntry is one line of the benchmark directory's run index.
type RunIndexEntry struct {
	RunID       string  `json:"run_id"`
	Dataset     string  `json:"dataset"`
	Generations int     `json:"generations"`
	BestFitness float64 `json:"best_fitness"`
}

// WriteRunArtifacts writes run.json and history.csv under
// baseDir/<runID> and returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run.json"), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeHistoryCSV(filepath.Join(runDir, "history.csv"), artifacts.History); err != nil {
		return "", err
	}
	return runDir, nil
}

// AppendRunIndex inserts or replaces an entry in the run index.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex reads the run index; a missing file is an empty index.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var index []RunIndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return index, nil
}

// RunningMax folds a history into the best fitness seen so far per
// generation. Per-generation best can regress without elitism; the
// running maximum cannot.
func RunningMax(history []model.GenerationRecord) []float64 {
	result := make([]float64, len(history))
	best := math.Inf(-1)
	for i, record := range history {
		if record.BestFitness > best {
			best = record.BestFitness
		}
		result[i] = best
	}
	return result
}

func writeHistoryCSV(path string, history []model.GenerationRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_fitness", "mean_fitness", "best_complexity", "best_expression"}); err != nil {
		return err
	}
	for _, record := range history {
		row := []string{
			strconv.Itoa(record.Generation),
			strconv.FormatFloat(record.BestFitness, 'g', -1, 64),
			strconv.FormatFloat(record.MeanFitness, 'g', -1, 64),
			strconv.Itoa(record.BestComplexity),
			record.BestExpression,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
