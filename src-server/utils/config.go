package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"schedly/src-server/timezone"
)

type Config struct {
	port         string
	databasePath string

	location                 *time.Location
	metricCollectionInterval time.Duration
	scheduleConfigPath       string

	discordAppToken string
	discordClientID string
	discordGuildID  string
}

// NewConfig reads the environment. Everything has a default except the
// Discord settings, which are all-or-nothing: without DISCORD_APP_TOKEN the
// bot is simply not started.
func NewConfig() (*Config, error) {
	var errs []error
	c := &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		databasePath: func() string {
			path := os.Getenv("DATABASE_PATH")
			if path == "" {
				path = "./sqlite.db"
			}
			slog.Debug("env", "DATABASE_PATH", path)
			return filepath.Clean(path)
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			loc, fellBack, err := timezone.Resolve(timezoneStr)
			switch {
			case err != nil:
				errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", timezoneStr, err))
				return time.UTC
			case fellBack:
				slog.Warn("unknown TIMEZONE, using UTC", "timezone", timezoneStr)
			case timezoneStr == "":
				slog.Warn("TIMEZONE is not set, using UTC")
			}
			slog.Debug("env", "TIMEZONE", loc.String())
			return loc
		}(),
		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if interval == "" {
				interval = "5s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				errs = append(errs, fmt.Errorf("invalid METRIC_COLLECTION_INTERVAL %q", interval))
				return 0
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", interval, "duration", duration)
			return duration
		}(),
		scheduleConfigPath: func() string {
			path := os.Getenv("SCHEDULE_CONFIG")
			slog.Debug("env", "SCHEDULE_CONFIG", path)
			return path
		}(),

		discordAppToken: func() string {
			token := os.Getenv("DISCORD_APP_TOKEN")
			if len(token) > 3 {
				slog.Debug("env", "DISCORD_APP_TOKEN", token[0:3]+"...")
			}
			return token
		}(),
		discordClientID: os.Getenv("DISCORD_CLIENT_ID"),
		discordGuildID:  os.Getenv("DISCORD_GUILD_ID"),
	}
	if c.discordAppToken != "" && c.discordClientID == "" {
		errs = append(errs, errors.New("DISCORD_CLIENT_ID is required with DISCORD_APP_TOKEN"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("NewConfig: %w", errors.Join(errs...))
	}
	return c, nil
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get TIMEZONE env, the zone used when a request carries none
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get METRIC_COLLECTION_INTERVAL env, default to 5s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get SCHEDULE_CONFIG env
func (c *Config) GetScheduleConfigPath() string {
	return c.scheduleConfigPath
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CLIENT_ID env
func (c *Config) GetDiscordClientID() string {
	return c.discordClientID
}

// Get DISCORD_GUILD_ID env, blank registers commands globally
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

func (c *Config) DiscordEnabled() bool {
	return c.discordAppToken != ""
}
