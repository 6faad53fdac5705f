package main

import (
	"encoding/json"
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/config"
	"github.com/zkaccel/accel-node/internal/device"
)

func infoCommand(cfg **config.Config, log **zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Print the managed device inventory as JSON",
		Action: func(c *cli.Context) error {
			banner := figure.NewFigure("accelnode", "", true)
			banner.Print()

			manager, err := device.NewManager(*cfg, *log)
			if err != nil {
				return err
			}

			infos := manager.DeviceInfos(device.TypeNone)
			out, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
