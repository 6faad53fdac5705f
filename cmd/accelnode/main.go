package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/config"
	"github.com/zkaccel/accel-node/internal/logger"
)

func main() {
	var configPath string
	var cfg *config.Config
	var zapLogger *zap.Logger
	var rootLogger *zap.Logger

	app := &cli.App{
		Name:  "accelnode",
		Usage: "Inspect and exercise the zk accelerator device layer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to the accelnode config file",
				EnvVars:     []string{"ACCELNODE_CONFIG"},
				Destination: &configPath,
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			if configPath != "" {
				cfg, err = config.LoadConfig(configPath)
				if err != nil {
					return err
				}
			} else {
				cfg = config.Default()
			}
			zapLogger, err = logger.New(cfg.Logger.Verbosity)
			if err != nil {
				return err
			}
			rootLogger = zapLogger.Named("accelnode")
			return nil
		},
		Commands: []*cli.Command{
			infoCommand(&cfg, &rootLogger),
			benchCommand(&cfg, &rootLogger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("failed to run app", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
