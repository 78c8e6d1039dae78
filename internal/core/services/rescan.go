package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driving"
	"github.com/custodia-labs/cerebro/internal/logger"
)

// Rescanner re-runs corpus ingestion on a fixed interval so documents
// added while the watcher was not looking still get picked up.
type Rescanner struct {
	interval time.Duration
	ingestor driving.Ingestor

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRescanner creates a rescanner driving the given ingestor.
func NewRescanner(interval time.Duration, ingestor driving.Ingestor) (*Rescanner, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: rescan interval must be positive", domain.ErrInvalidInput)
	}
	return &Rescanner{interval: interval, ingestor: ingestor}, nil
}

// Start begins the rescan loop. It blocks until the context is
// cancelled or Stop is called.
func (r *Rescanner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	r.wg.Add(1)
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info("Periodic rescan every %s", r.interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			report, err := r.ingestor.Scan(ctx)
			if err != nil {
				logger.Error("Periodic rescan failed: %v", err)
				continue
			}
			if report.Ingested > 0 {
				logger.Info("Periodic rescan ingested %d documents", report.Ingested)
			}
		}
	}
}

// Stop ends the loop and waits for it to exit.
func (r *Rescanner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
}
