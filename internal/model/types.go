package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one finished evolution run for later inspection.
type RunRecord struct {
	VersionedRecord
	ID              string  `json:"id"`
	Dataset         string  `json:"dataset"`
	PopulationSize  int     `json:"population_size"`
	Generations     int     `json:"generations"`
	Seed            int64   `json:"seed"`
	MaxDepth        int     `json:"max_depth"`
	CrossoverRate   float64 `json:"crossover_rate"`
	MutationRate    float64 `json:"mutation_rate"`
	TournamentSize  int     `json:"tournament_size"`
	Penalty         float64 `json:"penalty"`
	BestFitness     float64 `json:"best_fitness"`
	BestExpression  string  `json:"best_expression"`
	BestComplexity  int     `json:"best_complexity"`
	CreatedUnixNano int64   `json:"created_unix_nano"`
}

// GenerationRecord is one row of a run's per-generation history.
type GenerationRecord struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"best_fitness"`
	MeanFitness    float64 `json:"mean_fitness"`
	BestComplexity int     `json:"best_complexity"`
	BestExpression string  `json:"best_expression"`
}
