package config

import (
	"testing"
	"time"
)

// #region load-tests

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JudgeURL != "http://localhost:8000/v1/chat/completions" {
		t.Errorf("JudgeURL = %q", cfg.JudgeURL)
	}
	if cfg.JudgeTimeout != 60*time.Second {
		t.Errorf("JudgeTimeout = %v, want 60s", cfg.JudgeTimeout)
	}
	if cfg.Workers != 4 || cfg.MaxRounds != 5 {
		t.Errorf("Workers=%d MaxRounds=%d, want 4/5", cfg.Workers, cfg.MaxRounds)
	}
	if cfg.ProvenanceDB != "adaptive_depth.db" {
		t.Errorf("ProvenanceDB = %q", cfg.ProvenanceDB)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JUDGE_URL", "http://judge.internal:9000/v1/chat/completions")
	t.Setenv("JUDGE_MODEL", "other-model")
	t.Setenv("EVAL_WORKERS", "8")
	t.Setenv("JUDGE_TIMEOUT", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JudgeURL != "http://judge.internal:9000/v1/chat/completions" {
		t.Errorf("JudgeURL = %q", cfg.JudgeURL)
	}
	if cfg.JudgeModel != "other-model" {
		t.Errorf("JudgeModel = %q", cfg.JudgeModel)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.JudgeTimeout != 90*time.Second {
		t.Errorf("JudgeTimeout = %v, want 90s", cfg.JudgeTimeout)
	}
}

func TestDerivedConfigs(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	jc := cfg.JudgeConfig()
	if jc.BaseURL != cfg.JudgeURL || jc.Model != cfg.JudgeModel || jc.MaxRetries != cfg.JudgeMaxRetries {
		t.Errorf("JudgeConfig = %+v", jc)
	}

	rc := cfg.RoundConfig()
	if rc.Workers != cfg.Workers || rc.MaxRounds != cfg.MaxRounds {
		t.Errorf("RoundConfig = %+v", rc)
	}
}

// #endregion load-tests
