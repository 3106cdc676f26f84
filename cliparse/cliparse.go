package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	// DefaultSQLiteURL keeps sessions in memory for the life of the process
	DefaultSQLiteURL = "file:quickly-draw?mode=memory&cache=shared"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	SessionKeySalt string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	LabelTimeout   time.Duration
	SessionTTL     time.Duration
	KeywordsFile   string
	FallbackLabel  string

	// MaxSessionsPerIP caps live sessions created from one client address
	MaxSessionsPerIP int
}

// ParseFlags validates flags and fills in defaults from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickly-draw", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionKeySalt, "session-salt", "", "Session key salt (prefer env)")
	fs.StringVar(&cfg.GeminiAPIKey, "gemini-key", "", "Gemini API key (prefer env)")

	// Group naming
	fs.StringVar(&cfg.GeminiModel, "gemini-model", "", "Gemini model for group names")
	fs.StringVar(&cfg.GeminiBaseURL, "gemini-url", "", "Gemini API base URL override")
	fs.DurationVar(&cfg.LabelTimeout, "label-timeout", 0, "Timeout for group name generation")
	fs.StringVar(&cfg.FallbackLabel, "fallback-label", "", "Prefix for fallback group names")

	// Roster and sessions
	fs.StringVar(&cfg.KeywordsFile, "keywords", "", "YAML file with roster header keywords")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Idle time before a session expires")
	fs.IntVar(&cfg.MaxSessionsPerIP, "max-sessions-per-ip", 0, "Live sessions allowed per client address")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == DatabasePostgres {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLiteURL
	}

	// Secrets - MUST be provided
	if cfg.SessionKeySalt == "" {
		cfg.SessionKeySalt = os.Getenv("SESSION_KEY_SALT")
	}
	if cfg.SessionKeySalt == "" {
		return Config{}, errors.New("SESSION_KEY_SALT required")
	}

	// Optional: without a key, groups get fallback names
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = os.Getenv("GEMINI_MODEL")
	}
	if cfg.GeminiBaseURL == "" {
		cfg.GeminiBaseURL = os.Getenv("GEMINI_BASE_URL")
	}
	if cfg.FallbackLabel == "" {
		cfg.FallbackLabel = os.Getenv("FALLBACK_LABEL")
		if cfg.FallbackLabel == "" {
			cfg.FallbackLabel = "Group"
		}
	}
	if cfg.KeywordsFile == "" {
		cfg.KeywordsFile = os.Getenv("KEYWORDS_FILE")
	}

	var err error
	if cfg.LabelTimeout == 0 {
		if cfg.LabelTimeout, err = durationEnv("LABEL_TIMEOUT", 15*time.Second); err != nil {
			return Config{}, err
		}
	}
	if cfg.SessionTTL == 0 {
		if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 12*time.Hour); err != nil {
			return Config{}, err
		}
	}
	if cfg.SessionTTL < time.Minute {
		return Config{}, errors.New("session TTL must be at least 1m")
	}

	if cfg.MaxSessionsPerIP == 0 {
		if v := os.Getenv("MAX_SESSIONS_PER_IP"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid MAX_SESSIONS_PER_IP env variable")
			}
			cfg.MaxSessionsPerIP = n
		} else {
			cfg.MaxSessionsPerIP = 50 // default
		}
	}
	if cfg.MaxSessionsPerIP < 1 {
		return Config{}, errors.New("max sessions per IP must be at least 1")
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
