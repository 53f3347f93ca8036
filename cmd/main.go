package main

import (
	"os"

	"github.com/atsukitanaka0922/primeselect/config"
	"github.com/atsukitanaka0922/primeselect/pkg/db"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := setupLogger("info")

	app := &cli.App{
		Name:  "primeselect",
		Usage: "storefront and admin backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API and the gRPC admin service",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(logger)
					if err != nil {
						return err
					}
					if c.Bool("migrate") {
						if err := db.MigrateUp(cfg.DatabaseURL, logger); err != nil {
							return err
						}
					}
					return serve(c.Context, cfg, logger)
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving"},
				},
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: func(c *cli.Context) error {
							cfg, err := loadConfig(logger)
							if err != nil {
								return err
							}
							return db.MigrateUp(cfg.DatabaseURL, logger)
						},
					},
					{
						Name:  "down",
						Usage: "roll back migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
						},
						Action: func(c *cli.Context) error {
							cfg, err := loadConfig(logger)
							if err != nil {
								return err
							}
							return db.MigrateDown(cfg.DatabaseURL, c.Int("steps"), logger)
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatalf("primeselect: %v", err)
	}
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func loadConfig(logger *logrus.Logger) (*config.Config, error) {
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		return nil, err
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid LOG_LEVEL '%s', keeping '%s'", cfg.LogLevel, logger.GetLevel())
	} else {
		logger.SetLevel(logLevel)
	}
	return cfg, nil
}
