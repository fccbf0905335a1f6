package cliparse

import (
	"errors"
	"time"

	"github.com/urfave/cli/v2"
)

type Config struct {
	Port                 int
	DatabaseURL          string
	DatabaseType         string
	TokenSecret          string
	TokenTTL             time.Duration
	AllowedOrigins       []string
	BroadcastConcurrency int
}

// ParseFlags reads flags, falling back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	app := &cli.App{
		Name:            "livepoll",
		Usage:           "live poll session server",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			// Network config (can be CLI args or env)
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 4000, EnvVars: []string{"PORT"}, Usage: "Server port"},
			&cli.StringFlag{Name: "database-url", Aliases: []string{"d"}, EnvVars: []string{"DATABASE_URL"}, Usage: "Database URL"},
			&cli.StringFlag{Name: "database-type", Aliases: []string{"t"}, Value: "sqlite", EnvVars: []string{"DATABASE_TYPE"}, Usage: "Database type (sqlite or postgres)"},

			// Secrets (prefer env variables, but allow CLI for dev)
			&cli.StringFlag{Name: "token-secret", EnvVars: []string{"TOKEN_SECRET"}, Usage: "Bearer token signing secret (prefer env)"},
			&cli.DurationFlag{Name: "token-ttl", Value: 24 * time.Hour, EnvVars: []string{"TOKEN_TTL"}, Usage: "Bearer token lifetime"},

			&cli.StringSliceFlag{Name: "origin", Value: cli.NewStringSlice("http://localhost:3000"), EnvVars: []string{"FRONTEND_URL"}, Usage: "Allowed CORS/websocket origin"},
			&cli.IntFlag{Name: "broadcast-concurrency", Value: 50, EnvVars: []string{"BROADCAST_CONCURRENCY"}, Usage: "Max concurrent sends per result broadcast"},
		},
		Action: func(c *cli.Context) error {
			cfg.Port = c.Int("port")
			cfg.DatabaseURL = c.String("database-url")
			cfg.DatabaseType = c.String("database-type")
			cfg.TokenSecret = c.String("token-secret")
			cfg.TokenTTL = c.Duration("token-ttl")
			cfg.AllowedOrigins = c.StringSlice("origin")
			cfg.BroadcastConcurrency = c.Int("broadcast-concurrency")
			return nil
		},
	}

	if err := app.Run(append([]string{app.Name}, args...)); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "sqlite"
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Secrets - MUST be provided
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}

	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("token TTL must be positive")
	}
	if cfg.BroadcastConcurrency <= 0 {
		return Config{}, errors.New("broadcast concurrency must be positive")
	}

	return cfg, nil
}
