package evonet

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Config stores every tunable of the evolution and training schedulers.
type Config struct {
	Network   NetworkConfig
	Evolution EvolutionConfig
	Mutation  MutationConfig
	Training  TrainingConfig
	Fitness   FitnessParams
	Store     StoreConfig
}

// NetworkConfig describes the architecture of evolved networks.
type NetworkConfig struct {
	InputSize       int   `ini:"input_size"`
	OutputSize      int   `ini:"output_size"`
	HiddenLayers    []int `ini:"hidden_layers" delim:" "` // Space-separated sizes
	RandomizeBiases bool  `ini:"randomize_biases"`
}

// EvolutionConfig holds parameters of the evolutionary loop.
type EvolutionConfig struct {
	Epochs           int    `ini:"epochs"`
	Cycles           int    `ini:"cycles"`
	LayerGrowth      int    `ini:"layer_growth"`       // Neurons added per cycle
	LayerGrowthIndex int    `ini:"layer_growth_index"` // Hidden layer that grows
	FittestCount     int    `ini:"fittest_count"`
	StartFromSaved   bool   `ini:"start_from_saved"`
	SaveFittest      bool   `ini:"save_fittest"`
	SaveEvaluation   bool   `ini:"save_evaluation"`
	Greedy           bool   `ini:"greedy"`
	StagnationReset  int    `ini:"stagnation_reset"`
	PollIntervalMS   int    `ini:"poll_interval_ms"`
	Notes            string `ini:"notes"`
}

// MutationConfig holds parameters of the genetic engineering step.
type MutationConfig struct {
	Curve                string  `ini:"curve"` // "x:y x:y" keyframes over best completion
	MinorImprovement     float64 `ini:"minor_improvement"`
	MaxDivider           float64 `ini:"max_divider"`
	Controlled           bool    `ini:"controlled"`
	ControlledStrength   float64 `ini:"controlled_strength"`
	CrossoverSuperiority float64 `ini:"crossover_superiority"`
	DiversityChance      float64 `ini:"diversity_chance"`
	Reinforce            bool    `ini:"reinforce"`
	RewardMultiplier     float64 `ini:"reward_multiplier"`
	RewardWindow         float64 `ini:"reward_window"`
	RewardLearningRate   float64 `ini:"reward_learning_rate"`

	MutationCurve Curve `ini:"-"` // Derived from Curve
}

// TrainingConfig holds parameters of supervised training runs.
type TrainingConfig struct {
	Repetitions     int     `ini:"repetitions"`
	HiddenLayers    []int   `ini:"hidden_layers" delim:" "`
	LearningRateMin float64 `ini:"learning_rate_min"`
	LearningRateMax float64 `ini:"learning_rate_max"`
	WeightDecay     float64 `ini:"weight_decay"`
	StartRandomized bool    `ini:"start_randomized"`
	SaveConverged   bool    `ini:"save_converged"`
	SaveEvaluation  bool    `ini:"save_evaluation"`
	DatasetKey      string  `ini:"dataset_key"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend            string `ini:"backend"` // memory, file or sqlite
	Path               string `ini:"path"`
	EvolutionGenomeKey string `ini:"evolution_genome_key"`
	TrainingGenomeKey  string `ini:"training_genome_key"`
}

// DefaultConfig returns the configuration used when a key is absent.
func DefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			InputSize:       5,
			OutputSize:      3,
			HiddenLayers:    []int{8, 8},
			RandomizeBiases: true,
		},
		Evolution: EvolutionConfig{
			Epochs:          100,
			Cycles:          1,
			FittestCount:    3,
			SaveFittest:     true,
			SaveEvaluation:  true,
			Greedy:          true,
			StagnationReset: 6,
			PollIntervalMS:  500,
		},
		Mutation: MutationConfig{
			Curve:                "0:1 1:0.1",
			MinorImprovement:     5,
			MaxDivider:           7,
			ControlledStrength:   0.1,
			CrossoverSuperiority: 0.1,
			DiversityChance:      0.2,
			RewardMultiplier:     1,
			RewardWindow:         10,
			RewardLearningRate:   0.01,
		},
		Training: TrainingConfig{
			Repetitions:     10,
			HiddenLayers:    []int{8, 8},
			LearningRateMin: 0.01,
			LearningRateMax: 0.01,
			WeightDecay:     0.001,
			StartRandomized: true,
			SaveConverged:   true,
			SaveEvaluation:  true,
			DatasetKey:      "demonstrations",
		},
		Fitness: DefaultFitnessParams(),
		Store: StoreConfig{
			Backend:            "memory",
			EvolutionGenomeKey: "fittest_evolution",
			TrainingGenomeKey:  "fittest_training",
		},
	}
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return mapConfig(cfg)
}

// ParseConfig loads configuration parameters from INI text.
func ParseConfig(data []byte) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return mapConfig(cfg)
}

func mapConfig(cfg *ini.File) (*Config, error) {
	config := DefaultConfig()

	sections := []struct {
		name string
		dst  any
	}{
		{"Network", &config.Network},
		{"Evolution", &config.Evolution},
		{"Mutation", &config.Mutation},
		{"Training", &config.Training},
		{"Fitness", &config.Fitness},
		{"Store", &config.Store},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	config.Mutation.Curve = cleanIniString(config.Mutation.Curve)
	config.Store.Backend = strings.ToLower(cleanIniString(config.Store.Backend))
	config.Store.Path = cleanIniString(config.Store.Path)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges and derives MutationCurve.
func (c *Config) Validate() error {
	if c.Network.InputSize <= 0 {
		return fmt.Errorf("config error: input_size must be positive")
	}
	if c.Network.OutputSize <= 0 {
		return fmt.Errorf("config error: output_size must be positive")
	}
	for _, size := range c.Network.HiddenLayers {
		if size <= 0 {
			return fmt.Errorf("config error: hidden_layers entries must be positive, got %v", c.Network.HiddenLayers)
		}
	}
	for _, size := range c.Training.HiddenLayers {
		if size <= 0 {
			return fmt.Errorf("config error: training hidden_layers entries must be positive, got %v", c.Training.HiddenLayers)
		}
	}
	if c.Evolution.Epochs <= 0 {
		return fmt.Errorf("config error: epochs must be positive")
	}
	if c.Evolution.Cycles <= 0 {
		return fmt.Errorf("config error: cycles must be positive")
	}
	if c.Evolution.LayerGrowth < 0 {
		return fmt.Errorf("config error: layer_growth cannot be negative")
	}
	if c.Evolution.LayerGrowth > 0 && (c.Evolution.LayerGrowthIndex < 0 || c.Evolution.LayerGrowthIndex >= len(c.Network.HiddenLayers)) {
		return fmt.Errorf("config error: layer_growth_index %d out of range for %d hidden layers", c.Evolution.LayerGrowthIndex, len(c.Network.HiddenLayers))
	}
	if c.Evolution.FittestCount < 1 {
		return fmt.Errorf("config error: fittest_count must be at least 1")
	}
	if c.Evolution.StagnationReset < 1 {
		return fmt.Errorf("config error: stagnation_reset must be at least 1")
	}
	if c.Evolution.PollIntervalMS <= 0 {
		return fmt.Errorf("config error: poll_interval_ms must be positive")
	}
	if c.Mutation.MaxDivider < 0 {
		return fmt.Errorf("config error: max_divider cannot be negative")
	}
	if c.Mutation.CrossoverSuperiority < 0 || c.Mutation.CrossoverSuperiority > 1 {
		return fmt.Errorf("config error: crossover_superiority must be between 0 and 1")
	}
	if c.Mutation.Reinforce && c.Mutation.RewardWindow <= 0 {
		return fmt.Errorf("config error: reward_window must be positive when reinforce is enabled")
	}
	if c.Training.Repetitions <= 0 {
		return fmt.Errorf("config error: repetitions must be positive")
	}
	if c.Training.LearningRateMin > c.Training.LearningRateMax {
		return fmt.Errorf("config error: learning_rate_min cannot exceed learning_rate_max")
	}
	if c.Training.WeightDecay < 0 || c.Training.WeightDecay >= 1 {
		return fmt.Errorf("config error: weight_decay must be in [0, 1)")
	}
	switch c.Store.Backend {
	case "", "memory", "file", "sqlite":
	default:
		return fmt.Errorf("config error: unknown store backend '%s'", c.Store.Backend)
	}

	curve, err := ParseCurve(c.Mutation.Curve)
	if err != nil {
		return fmt.Errorf("config error: curve: %w", err)
	}
	c.Mutation.MutationCurve = curve
	return nil
}

// EvolutionLayers returns the architecture for the given evolution cycle:
// input, hidden layers with cycle growth applied, output.
func (c *Config) EvolutionLayers(cycle int) []int {
	layers := make([]int, 0, len(c.Network.HiddenLayers)+2)
	layers = append(layers, c.Network.InputSize)
	for i, size := range c.Network.HiddenLayers {
		if i == c.Evolution.LayerGrowthIndex {
			size += cycle * c.Evolution.LayerGrowth
		}
		layers = append(layers, size)
	}
	return append(layers, c.Network.OutputSize)
}

// TrainingLayers returns the architecture of freshly created training networks.
func (c *Config) TrainingLayers() []int {
	layers := make([]int, 0, len(c.Training.HiddenLayers)+2)
	layers = append(layers, c.Network.InputSize)
	layers = append(layers, c.Training.HiddenLayers...)
	return append(layers, c.Network.OutputSize)
}

// PollInterval is the agent completion polling period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Evolution.PollIntervalMS) * time.Millisecond
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
