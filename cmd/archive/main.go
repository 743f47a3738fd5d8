package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/RunnersNum40/Kubric-Pallets/internal/archive"
	"github.com/RunnersNum40/Kubric-Pallets/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "archive",
		Usage: "pack a generated dataset into one compressed container",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Value: "output", Usage: "dataset root holding scene_* directories"},
			&cli.StringFlag{Name: "out", Value: "dataset.tar.gz", Usage: "container to write"},
			&cli.StringFlag{Name: "log-level", Value: "info"},
		},
		Action: func(c *cli.Context) error {
			logger, err := logging.New(c.String("log-level"))
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			st, err := archive.Convert(c.String("data"), c.String("out"), logger)
			if err != nil {
				return err
			}
			fmt.Printf("Scenes: %d (skipped %d), objects: %d, cameras: %d, images: %d\n",
				st.Scenes, st.Skipped, st.Objects, st.Cameras, st.Images)
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
