package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the OpeningCoach server.
type Config struct {
	Server  ServerConfig
	Jobs    JobsConfig
	Redis   RedisConfig
	Engine  EngineConfig
	Analyze AnalyzeConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type JobsConfig struct {
	Dir              string
	UploadsDir       string
	MaxWorkers       int
	Timeout          time.Duration
	RateLimitPerMin  int
	ReconcileOnStart bool
}

type RedisConfig struct {
	URL string // optional; empty disables the cache
}

type EngineConfig struct {
	Path       string // optional; empty falls back to material evaluation
	Depth      int
	MoveTimeMS int
}

type AnalyzeConfig struct {
	MinMoves           int
	MaxMoves           int
	MaxGames           int
	TopOpenings        int
	MinMovesPerOpening int
}

// Load reads configuration from environment variables and returns a
// validated Config. Returns an error with a descriptive message if any
// value is invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("OPENINGCOACH_PORT", 8080),
			Env:  envString("OPENINGCOACH_ENV", "development"),
		},
		Jobs: JobsConfig{
			Dir:              envString("JOBS_DIR", "data/jobs"),
			UploadsDir:       envString("UPLOADS_DIR", "data/uploads"),
			MaxWorkers:       envInt("MAX_WORKERS", 4),
			Timeout:          envDurationSecs("JOB_TIMEOUT_SECS", 30*time.Minute),
			RateLimitPerMin:  envInt("RATE_LIMIT_PER_MIN", 60),
			ReconcileOnStart: envBool("RECONCILE_ON_START", false),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Engine: EngineConfig{
			Path:       os.Getenv("STOCKFISH_PATH"),
			Depth:      envInt("ENGINE_DEPTH", 12),
			MoveTimeMS: envInt("ENGINE_MOVE_TIME_MS", 100),
		},
		Analyze: AnalyzeConfig{
			MinMoves:           envInt("ANALYSIS_MIN_MOVES", 10),
			MaxMoves:           envInt("ANALYSIS_MAX_MOVES", 40),
			MaxGames:           envInt("ANALYSIS_MAX_GAMES", 100),
			TopOpenings:        envInt("RECOMMEND_TOP_OPENINGS", 5),
			MinMovesPerOpening: envInt("RECOMMEND_MIN_MOVES", 10),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Jobs.Dir == "" {
		return fmt.Errorf("JOBS_DIR must not be empty")
	}
	if c.Jobs.UploadsDir == "" {
		return fmt.Errorf("UPLOADS_DIR must not be empty")
	}
	if c.Jobs.MaxWorkers < 1 {
		return fmt.Errorf("MAX_WORKERS must be at least 1, got %d", c.Jobs.MaxWorkers)
	}
	if c.Jobs.Timeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT_SECS must be positive, got %s", c.Jobs.Timeout)
	}
	if c.Engine.Path != "" {
		if c.Engine.Depth < 1 {
			return fmt.Errorf("ENGINE_DEPTH must be at least 1, got %d", c.Engine.Depth)
		}
		if c.Engine.MoveTimeMS < 1 {
			return fmt.Errorf("ENGINE_MOVE_TIME_MS must be at least 1, got %d", c.Engine.MoveTimeMS)
		}
	}
	if c.Analyze.MaxGames < 1 {
		return fmt.Errorf("ANALYSIS_MAX_GAMES must be at least 1, got %d", c.Analyze.MaxGames)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
