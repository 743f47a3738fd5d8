// Package batch fans scene generation out over a fixed pool of workers.
package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Config holds the shape of a batch run.
type Config struct {
	NumScenes        int
	Workers          int
	ProgressInterval time.Duration // <= 0 uses 2s
}

// SceneGenerator produces one scene. Each worker owns its own.
type SceneGenerator interface {
	Generate(ctx context.Context, sceneIndex int) error
}

// GeneratorFactory builds the generator for one worker.
type GeneratorFactory func(worker int) (SceneGenerator, error)

// Result holds the outcome of one scene.
type Result struct {
	SceneIndex int
	Success    bool
	Err        error
	Duration   time.Duration
}

// Summary is every scene's result, indexed by scene.
type Summary struct {
	Results []Result
	Elapsed time.Duration
}

// Failed returns the results of scenes that did not complete.
func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// Succeeded counts completed scenes.
func (s Summary) Succeeded() int {
	return len(s.Results) - len(s.Failed())
}

// Err combines every scene failure, or nil.
func (s Summary) Err() error {
	var err error
	for _, r := range s.Failed() {
		err = multierr.Append(err, errors.Wrapf(r.Err, "scene %d", r.SceneIndex))
	}
	return err
}

// Run generates scenes 0..NumScenes-1. A scene that errors or panics is
// logged and recorded; it never stops the other scenes.
func Run(ctx context.Context, cfg Config, factory GeneratorFactory, logger *zap.SugaredLogger) Summary {
	total := cfg.NumScenes
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()
	interval := cfg.ProgressInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					logger.Infow("progress",
						"done", p,
						"total", total,
						"rate", fmt.Sprintf("%.2f scenes/sec", float64(p)/elapsed),
					)
				}
			}
		}
	}()

	// Worker pool
	sceneChan := make(chan int, max(1, cfg.Workers)*2)
	var wg sync.WaitGroup

	for w := 0; w < max(1, cfg.Workers); w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			gen, err := factory(worker)
			if err != nil {
				err = errors.Wrapf(err, "worker %d setup", worker)
				logger.Errorw("worker unavailable", "worker", worker, "error", err)
			}
			for idx := range sceneChan {
				if err != nil {
					results[idx] = Result{SceneIndex: idx, Err: err}
				} else {
					results[idx] = runScene(ctx, gen, idx, logger)
				}
				processed.Add(1)
			}
		}(w)
	}

	// Send work
	for i := 0; i < total; i++ {
		sceneChan <- i
	}
	close(sceneChan)

	wg.Wait()
	close(done)

	s := Summary{Results: results, Elapsed: time.Since(start)}
	logger.Infow("batch finished",
		"scenes", total,
		"succeeded", s.Succeeded(),
		"failed", len(s.Failed()),
		"elapsed", s.Elapsed.Round(time.Millisecond),
	)
	return s
}

func runScene(ctx context.Context, gen SceneGenerator, idx int, logger *zap.SugaredLogger) (res Result) {
	start := time.Now()
	res.SceneIndex = idx
	defer func() {
		if p := recover(); p != nil {
			res.Err = errors.Errorf("panic: %v", p)
			res.Success = false
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			logger.Errorw("scene failed", "scene", idx, "error", res.Err)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if err := gen.Generate(ctx, idx); err != nil {
		res.Err = err
		return res
	}
	res.Success = true
	return res
}
