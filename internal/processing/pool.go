// Package processing runs image archival in-process for deployments without
// Redis: a small goroutine pool standing in for the asynq worker.
package processing

import (
	"context"

	"github.com/rs/zerolog"

	"fujao/internal/worker"
)

// Pool consumes archive jobs on background goroutines.
type Pool struct {
	archiver *worker.Archiver
	jobs     chan int64
	workers  int
	log      zerolog.Logger
}

// New builds a Pool with queue capacity tied to worker count.
func New(archiver *worker.Archiver, workers int, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		archiver: archiver,
		jobs:     make(chan int64, workers*4),
		workers:  workers,
		log:      log,
	}
}

// Start launches the worker goroutines; they exit when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.run(ctx)
	}
}

// Submit queues a report for archival. When the buffer is full the job is
// dropped with a warning; the inline image is still stored on the record, so
// nothing is lost beyond the archived copy.
func (p *Pool) Submit(animalID int64) {
	select {
	case p.jobs <- animalID:
	default:
		p.log.Warn().Int64("animal_id", animalID).Msg("archive queue full, dropping job")
	}
}

func (p *Pool) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-p.jobs:
			if err := p.archiver.Archive(ctx, id); err != nil {
				p.log.Error().Err(err).Int64("animal_id", id).Msg("in-process archive failed")
			}
		}
	}
}
