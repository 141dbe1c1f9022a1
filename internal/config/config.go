// Package config loads controller configuration from environment variables
// and an optional .env file.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/danielpatrickdp/adaptive-depth/internal/judge"
	"github.com/danielpatrickdp/adaptive-depth/internal/round"
)

// #region config

// Config holds every operator-tunable knob.
type Config struct {
	// Evaluator endpoint
	JudgeURL         string        `env:"JUDGE_URL" envDefault:"http://localhost:8000/v1/chat/completions"`
	JudgeModel       string        `env:"JUDGE_MODEL" envDefault:"Qwen2.5-72B-Instruct-GPTQ-Int4"`
	JudgeTemperature float64       `env:"JUDGE_TEMPERATURE" envDefault:"0.8"`
	JudgeTimeout     time.Duration `env:"JUDGE_TIMEOUT" envDefault:"60s"`
	JudgeMaxRetries  int           `env:"JUDGE_MAX_RETRIES" envDefault:"2"`

	// Round runner
	Workers   int `env:"EVAL_WORKERS" envDefault:"4"`
	MaxRounds int `env:"MAX_ROUNDS" envDefault:"5"`

	// Provenance
	ProvenanceDB string `env:"PROVENANCE_DB" envDefault:"adaptive_depth.db"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// #endregion config

// #region derived

// JudgeConfig maps the loaded values onto the judge client's config.
func (c *Config) JudgeConfig() judge.Config {
	return judge.Config{
		BaseURL:     c.JudgeURL,
		Model:       c.JudgeModel,
		Temperature: c.JudgeTemperature,
		Timeout:     c.JudgeTimeout,
		MaxRetries:  c.JudgeMaxRetries,
	}
}

// RoundConfig maps the loaded values onto the round runner's config.
func (c *Config) RoundConfig() round.Config {
	return round.Config{
		Workers:   c.Workers,
		MaxRounds: c.MaxRounds,
	}
}

// #endregion derived
