package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"extension_sunset/internal/domain/sunset"

	"github.com/joho/godotenv"
)

// State store drivers understood by STATE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel    string
	Environment string

	StateDriver string
	DatabaseURL string
	SQLitePath  string

	SunsetStart       time.Time
	TimelineDays      []int
	MinimumOffsetDays int
	Content           sunset.Content
	TickInitialDelay  time.Duration
	TickPeriod        time.Duration
	TickTimeout       time.Duration
	UninstallCommand  string // Optional shell command run before the process exits on uninstall

	TelegramToken   string // Empty means notifications are written to the log
	NotifyChatID    int64
	AdminTelegramID int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.StateDriver = strings.ToLower(strings.TrimSpace(getenv("STATE_DRIVER")))
	if cfg.StateDriver == "" {
		cfg.StateDriver = DriverSQLite
	}
	switch cfg.StateDriver {
	case DriverPostgres:
		cfg.DatabaseURL = getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case DriverSQLite, "sqlite3":
		cfg.StateDriver = DriverSQLite
		cfg.SQLitePath = getenv("SQLITE_PATH")
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = "data/sunset.db"
		}
	default:
		return nil, fmt.Errorf("unknown STATE_DRIVER %q", cfg.StateDriver)
	}

	startStr := strings.TrimSpace(getenv("SUNSET_START_DATE"))
	if startStr == "" {
		return nil, fmt.Errorf("SUNSET_START_DATE is not set")
	}
	cfg.SunsetStart, err = parseStartDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SUNSET_START_DATE: %w", err)
	}

	cfg.TimelineDays = append([]int(nil), sunset.DefaultOffsets...)
	if v := getenv("SUNSET_TIMELINE_DAYS"); v != "" {
		cfg.TimelineDays, err = parseIntList(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SUNSET_TIMELINE_DAYS: %w", err)
		}
	}

	cfg.MinimumOffsetDays = sunset.DefaultMinimumOffset
	if v := getenv("SUNSET_MIN_OFFSET_DAYS"); v != "" {
		cfg.MinimumOffsetDays, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid SUNSET_MIN_OFFSET_DAYS: %w", err)
		}
	}

	// Validate the schedule here so a bad deployment fails at startup, not on the first tick.
	if _, err := sunset.NewTimeline(cfg.SunsetStart, cfg.TimelineDays, cfg.MinimumOffsetDays); err != nil {
		return nil, fmt.Errorf("invalid sunset timeline: %w", err)
	}

	cfg.Content = sunset.DefaultContent(len(cfg.TimelineDays))
	if v := getenv("SUNSET_ICON"); v != "" {
		cfg.Content.Icon = v
	}
	for i := range cfg.Content.Stages {
		if v := getenv(fmt.Sprintf("SUNSET_STAGE_%d_TITLE", i)); v != "" {
			cfg.Content.Stages[i].Title = v
		}
		if v := getenv(fmt.Sprintf("SUNSET_STAGE_%d_MESSAGE", i)); v != "" {
			cfg.Content.Stages[i].Message = v
		}
	}

	if cfg.TickInitialDelay, err = durationOr(getenv, "TICK_INITIAL_DELAY", time.Minute); err != nil {
		return nil, err
	}
	if cfg.TickPeriod, err = durationOr(getenv, "TICK_PERIOD", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TickPeriod <= 0 {
		return nil, fmt.Errorf("TICK_PERIOD must be positive")
	}
	if cfg.TickTimeout, err = durationOr(getenv, "TICK_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	cfg.UninstallCommand = strings.TrimSpace(getenv("UNINSTALL_COMMAND"))

	cfg.TelegramToken = getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		chatIDStr := getenv("NOTIFY_CHAT_ID")
		if chatIDStr == "" {
			return nil, fmt.Errorf("NOTIFY_CHAT_ID is not set")
		}
		cfg.NotifyChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_CHAT_ID: %w", err)
		}

		if adminIDStr := getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
			cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
			}
		}
	}

	return cfg, nil
}

// Timeline builds the validated schedule from the loaded values.
func (c *AppConfig) Timeline() (sunset.Timeline, error) {
	return sunset.NewTimeline(c.SunsetStart, c.TimelineDays, c.MinimumOffsetDays)
}

func parseStartDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// A bare date means midnight local time, the way a release calendar reads.
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func durationOr(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
