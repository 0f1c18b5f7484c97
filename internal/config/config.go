package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	NATS        NATSConfig        `yaml:"nats"`
	MinIO       MinIOConfig       `yaml:"minio"`
	Vision      VisionConfig      `yaml:"vision"`
	Liveness    LivenessConfig    `yaml:"liveness"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type VisionConfig struct {
	ModelsDir          string  `yaml:"models_dir"`
	DetectionThreshold float64 `yaml:"detection_threshold"`
}

// LivenessConfig holds the tunables of the anti-spoofing heuristics.
// The calibration constants were chosen empirically against webcam captures.
type LivenessConfig struct {
	MinFaceSize     int     `yaml:"min_face_size"`
	Threshold       float64 `yaml:"threshold"`
	SharpnessWeight float64 `yaml:"sharpness_weight"`
	TextureWeight   float64 `yaml:"texture_weight"`
	EdgeWeight      float64 `yaml:"edge_weight"`
	SharpnessNorm   float64 `yaml:"sharpness_norm"`
	TextureNorm     float64 `yaml:"texture_norm"`
	EdgeNorm        float64 `yaml:"edge_norm"`
	// FailOpen controls what happens when the heuristics themselves error:
	// true accepts the face (availability-favoring), false rejects it
	// (security-favoring).
	FailOpen bool `yaml:"fail_open"`
}

// RecognitionConfig holds the scoring weights and thresholds of the
// attendance decision engine.
type RecognitionConfig struct {
	CombinedThreshold float64 `yaml:"combined_threshold"`
	FaceWeight        float64 `yaml:"face_weight"`
	RecencyWeight     float64 `yaml:"recency_weight"`
	RecencyBonus      float64 `yaml:"recency_bonus"`
	RecencyFloor      float64 `yaml:"recency_floor"`
	DecayDays         int     `yaml:"decay_days"`
	LookbackDays      int     `yaml:"lookback_days"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Vision.DetectionThreshold == 0 {
		cfg.Vision.DetectionThreshold = 0.5
	}
	if cfg.Liveness.MinFaceSize == 0 {
		cfg.Liveness.MinFaceSize = 50
	}
	if cfg.Liveness.Threshold == 0 {
		cfg.Liveness.Threshold = 0.3
	}
	if cfg.Liveness.SharpnessWeight == 0 {
		cfg.Liveness.SharpnessWeight = 0.6
	}
	if cfg.Liveness.TextureWeight == 0 {
		cfg.Liveness.TextureWeight = 0.3
	}
	if cfg.Liveness.EdgeWeight == 0 {
		cfg.Liveness.EdgeWeight = 0.1
	}
	if cfg.Liveness.SharpnessNorm == 0 {
		cfg.Liveness.SharpnessNorm = 70.0
	}
	if cfg.Liveness.TextureNorm == 0 {
		cfg.Liveness.TextureNorm = 70.0
	}
	if cfg.Liveness.EdgeNorm == 0 {
		cfg.Liveness.EdgeNorm = 0.1
	}
	if cfg.Recognition.CombinedThreshold == 0 {
		cfg.Recognition.CombinedThreshold = 0.55
	}
	if cfg.Recognition.FaceWeight == 0 {
		cfg.Recognition.FaceWeight = 0.8
	}
	if cfg.Recognition.RecencyWeight == 0 {
		cfg.Recognition.RecencyWeight = 0.2
	}
	if cfg.Recognition.RecencyBonus == 0 {
		cfg.Recognition.RecencyBonus = 0.05
	}
	if cfg.Recognition.RecencyFloor == 0 {
		cfg.Recognition.RecencyFloor = 0.5
	}
	if cfg.Recognition.DecayDays == 0 {
		cfg.Recognition.DecayDays = 14
	}
	if cfg.Recognition.LookbackDays == 0 {
		cfg.Recognition.LookbackDays = 7
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FA_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("FA_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FA_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FA_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FA_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FA_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FA_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("FA_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("FA_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("FA_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("FA_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("FA_MODELS_DIR"); v != "" {
		cfg.Vision.ModelsDir = v
	}
	if v := os.Getenv("FA_COMBINED_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Recognition.CombinedThreshold = f
		}
	}
	if v := os.Getenv("FA_LIVENESS_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Liveness.Threshold = f
		}
	}
	if v := os.Getenv("FA_LIVENESS_FAIL_OPEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Liveness.FailOpen = b
		}
	}
}
