package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/RunnersNum40/Kubric-Pallets/internal/batch"
	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/config"
	"github.com/RunnersNum40/Kubric-Pallets/internal/logging"
	"github.com/RunnersNum40/Kubric-Pallets/internal/output"
	"github.com/RunnersNum40/Kubric-Pallets/internal/pipeline"
	"github.com/RunnersNum40/Kubric-Pallets/internal/raster"
)

func main() {
	app := &cli.App{
		Name:  "generate",
		Usage: "render a synthetic multi-view warehouse dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to config.json"},
			&cli.StringFlag{Name: "assets", Usage: "asset root with pallet/rack/forklift and wood/metal/plastic/floor (default: assets)"},
			&cli.StringFlag{Name: "output", Usage: "output directory (default: output)"},
			&cli.IntFlag{Name: "scenes", Usage: "number of scenes (default: 1024)"},
			&cli.IntFlag{Name: "angles", Usage: "cameras per ring (default: 8)"},
			&cli.Float64SliceFlag{Name: "distance", Usage: "ring radius in meters, repeatable (default: 0.8 1.0 1.2 1.5)"},
			&cli.IntFlag{Name: "workers", Usage: "worker goroutines (default: NumCPU)"},
			&cli.Uint64Flag{Name: "seed", Usage: "batch seed; 0 picks one from the clock"},
			&cli.IntFlag{Name: "supersample", Usage: "render at N× and downsample (default: 1)"},
			&cli.BoolFlag{Name: "webp", Usage: "also write a lossless rgba.webp per camera"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (default: info)"},
			&cli.BoolFlag{Name: "strict", Usage: "exit non-zero when any scene fails"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// Load config
	var cfg config.Config
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		AssetDir:    c.String("assets"),
		OutputDir:   c.String("output"),
		NumScenes:   c.Int("scenes"),
		NumAngles:   c.Int("angles"),
		Distances:   c.Float64Slice("distance"),
		Workers:     c.Int("workers"),
		Seed:        c.Uint64("seed"),
		Supersample: c.Int("supersample"),
		WebPPreview: c.Bool("webp"),
		LogLevel:    c.String("log-level"),
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	// Catalogs are read-only from here on and shared by every worker.
	cat := catalog.Build(logger, cfg.AssetDir)
	if err := cat.Validate(); err != nil {
		return errors.Wrapf(err, "asset root %s", cfg.AssetDir)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	logger.Infow("starting batch",
		"scenes", cfg.NumScenes,
		"workers", cfg.Workers,
		"angles", cfg.NumAngles,
		"distances", cfg.Distances,
		"resolution", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"seed", cfg.Seed,
		"output", cfg.OutputDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		OutputDir: cfg.OutputDir,
		NumAngles: cfg.NumAngles,
		Distances: cfg.Distances,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Seed:      cfg.Seed,
		Ranges:    cfg.Ranges,
		Writer:    output.Writer{WebPPreview: cfg.WebPPreview},
	}
	factory := func(worker int) (batch.SceneGenerator, error) {
		wlog := logger.With("worker", worker)
		r := raster.New(raster.Options{Supersample: cfg.Supersample, MaxTextureSize: cfg.MaxTextureSize}, wlog)
		return pipeline.NewGenerator(cat, r, opts, wlog), nil
	}

	summary := batch.Run(ctx, batch.Config{NumScenes: cfg.NumScenes, Workers: cfg.Workers}, factory, logger)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", summary.Elapsed.Seconds())
	fmt.Printf("Generated: %d/%d\n", summary.Succeeded(), cfg.NumScenes)

	failed := summary.Failed()
	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(20, len(failed))
		for _, r := range failed[:limit] {
			fmt.Printf("  scene_%d: %v\n", r.SceneIndex, r.Err)
		}
		if c.Bool("strict") {
			return summary.Err()
		}
	}
	return nil
}
