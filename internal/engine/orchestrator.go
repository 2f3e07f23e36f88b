package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
)

// Orchestrator runs all strategy families concurrently over one engine.
type Orchestrator struct {
	engine *Engine
	logger *zap.Logger
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(engine *Engine, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, logger: logger}
}

// RunAll starts every family as its own task and waits for all of them.
// A failed family does not interrupt the others; the combined error is
// returned after all families finish.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	start := time.Now()
	families := crawler.Families()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, family := range families {
		wg.Add(1)
		go func(family crawler.Family) {
			defer wg.Done()
			if err := o.engine.Run(ctx, family); err != nil {
				o.logger.Error("Family run failed",
					zap.String("family", string(family)),
					zap.Error(err),
				)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(family)
	}
	wg.Wait()

	o.logger.Info("Crawl cycle finished",
		zap.Int("families", len(families)),
		zap.Int("failed", len(errs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return errors.Join(errs...)
}
