// Package config handles application configuration from environment
// variables and the YAML sources file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration. It is built once at
// startup and never mutated afterwards.
type Config struct {
	TelegramBotToken string
	ChannelID        int64
	DatabasePath     string
	SourcesFile      string
	Timezone         string
	Location         *time.Location
	DailyLimit       int
	NightStartHour   int
	NightEndHour     int
	CheckInterval    time.Duration
	MaxPostsPerRun   int
	PostDelay        time.Duration
	MarkRejectedSeen bool
	LogLevel         string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	rawChannel := os.Getenv("TELEGRAM_CHANNEL_ID")
	if rawChannel == "" {
		return nil, fmt.Errorf("TELEGRAM_CHANNEL_ID is required")
	}
	channelID, err := strconv.ParseInt(rawChannel, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHANNEL_ID %q: %w", rawChannel, err)
	}

	tz := envOrDefault("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	dailyLimit, err := intEnv("DAILY_LIMIT", 30)
	if err != nil {
		return nil, err
	}
	if dailyLimit <= 0 {
		return nil, fmt.Errorf("DAILY_LIMIT must be positive, got %d", dailyLimit)
	}

	nightStart, err := hourEnv("NIGHT_START_HOUR", 0)
	if err != nil {
		return nil, err
	}
	nightEnd, err := hourEnv("NIGHT_END_HOUR", 7)
	if err != nil {
		return nil, err
	}

	intervalMin, err := intEnv("CHECK_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if intervalMin <= 0 {
		return nil, fmt.Errorf("CHECK_INTERVAL_MINUTES must be positive, got %d", intervalMin)
	}

	maxPerRun, err := intEnv("MAX_POSTS_PER_RUN", 3)
	if err != nil {
		return nil, err
	}
	if maxPerRun <= 0 {
		return nil, fmt.Errorf("MAX_POSTS_PER_RUN must be positive, got %d", maxPerRun)
	}

	delaySec, err := intEnv("MIN_DELAY_BETWEEN_POSTS", 2)
	if err != nil {
		return nil, err
	}

	markRejected := true
	if raw := os.Getenv("MARK_REJECTED_SEEN"); raw != "" {
		markRejected, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MARK_REJECTED_SEEN %q: %w", raw, err)
		}
	}

	return &Config{
		TelegramBotToken: token,
		ChannelID:        channelID,
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/state.db"),
		SourcesFile:      envOrDefault("SOURCES_FILE", "./sources.yaml"),
		Timezone:         tz,
		Location:         loc,
		DailyLimit:       dailyLimit,
		NightStartHour:   nightStart,
		NightEndHour:     nightEnd,
		CheckInterval:    time.Duration(intervalMin) * time.Minute,
		MaxPostsPerRun:   maxPerRun,
		PostDelay:        time.Duration(delaySec) * time.Second,
		MarkRejectedSeen: markRejected,
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func hourEnv(key string, def int) (int, error) {
	v, err := intEnv(key, def)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 23 {
		return 0, fmt.Errorf("%s must be between 0 and 23, got %d", key, v)
	}
	return v, nil
}
