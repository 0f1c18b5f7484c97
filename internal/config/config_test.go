package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  name: faceattend
  user: fa
  password: secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port = %d, want 5432", cfg.Database.Port)
	}

	rec := cfg.Recognition
	if rec.CombinedThreshold != 0.55 || rec.FaceWeight != 0.8 || rec.RecencyWeight != 0.2 {
		t.Errorf("recognition weights = %+v, want 0.55/0.8/0.2", rec)
	}
	if rec.RecencyBonus != 0.05 || rec.RecencyFloor != 0.5 {
		t.Errorf("recency bonus/floor = %v/%v, want 0.05/0.5", rec.RecencyBonus, rec.RecencyFloor)
	}
	if rec.DecayDays != 14 || rec.LookbackDays != 7 {
		t.Errorf("decay/lookback = %d/%d, want 14/7", rec.DecayDays, rec.LookbackDays)
	}

	lv := cfg.Liveness
	if lv.MinFaceSize != 50 || lv.Threshold != 0.3 {
		t.Errorf("liveness gate = %d/%v, want 50/0.3", lv.MinFaceSize, lv.Threshold)
	}
	if lv.SharpnessWeight != 0.6 || lv.TextureWeight != 0.3 || lv.EdgeWeight != 0.1 {
		t.Errorf("liveness weights = %v/%v/%v, want 0.6/0.3/0.1", lv.SharpnessWeight, lv.TextureWeight, lv.EdgeWeight)
	}
	if lv.SharpnessNorm != 70.0 || lv.TextureNorm != 70.0 || lv.EdgeNorm != 0.1 {
		t.Errorf("liveness norms = %v/%v/%v, want 70/70/0.1", lv.SharpnessNorm, lv.TextureNorm, lv.EdgeNorm)
	}
	if lv.FailOpen {
		t.Error("fail_open defaulted to true, want false")
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
recognition:
  combined_threshold: 0.7
  lookback_days: 3
liveness:
  fail_open: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Recognition.CombinedThreshold != 0.7 {
		t.Errorf("threshold = %v, want 0.7", cfg.Recognition.CombinedThreshold)
	}
	if cfg.Recognition.LookbackDays != 3 {
		t.Errorf("lookback = %d, want 3", cfg.Recognition.LookbackDays)
	}
	if !cfg.Liveness.FailOpen {
		t.Error("fail_open = false, want explicit true kept")
	}
	// untouched sections still get defaults
	if cfg.Recognition.FaceWeight != 0.8 {
		t.Errorf("face weight = %v, want default 0.8", cfg.Recognition.FaceWeight)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FA_DB_HOST", "db.internal")
	t.Setenv("FA_API_KEY", "kiosk-key")
	t.Setenv("FA_COMBINED_THRESHOLD", "0.62")
	t.Setenv("FA_LIVENESS_FAIL_OPEN", "true")

	path := writeConfig(t, `
server:
  api_key: file-key
database:
  host: localhost
recognition:
  combined_threshold: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("db host = %q, want env override", cfg.Database.Host)
	}
	if cfg.Server.APIKey != "kiosk-key" {
		t.Errorf("api key = %q, want env override", cfg.Server.APIKey)
	}
	if cfg.Recognition.CombinedThreshold != 0.62 {
		t.Errorf("threshold = %v, want 0.62", cfg.Recognition.CombinedThreshold)
	}
	if !cfg.Liveness.FailOpen {
		t.Error("fail_open not overridden by env")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load succeeded on a missing file")
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, Name: "faceattend", User: "fa", Password: "pw"}
	want := "postgres://fa:pw@localhost:5432/faceattend?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
