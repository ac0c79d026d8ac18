package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/zipstream/internal/interfaces/infra"
)

var _ infra.JobRegistry = (*inmemRegistry)(nil)

type jobEntry struct {
	archive   string
	startedAt time.Time
}

type inmemRegistry struct {
	logger *zap.Logger
	jobs   map[string]jobEntry
	mu     sync.Mutex

	// drained закрывается, когда активных задач не остаётся.
	drained chan struct{}
}

func New(log *zap.Logger) infra.JobRegistry {
	drained := make(chan struct{})
	close(drained)
	return &inmemRegistry{
		logger:  log,
		jobs:    make(map[string]jobEntry),
		drained: drained,
	}
}

func (r *inmemRegistry) Track(id, archive string) error {
	if id == "" {
		return ErrJobIDEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, id)
	}
	if len(r.jobs) == 0 {
		r.drained = make(chan struct{})
	}
	r.jobs[id] = jobEntry{archive: archive, startedAt: time.Now()}

	r.logger.Debug("задача сжатия зарегистрирована",
		zap.String("job_id", id),
		zap.String("archive", archive),
		zap.Int("active_jobs", len(r.jobs)),
	)
	return nil
}

func (r *inmemRegistry) Release(id string) error {
	if id == "" {
		return ErrJobIDEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.jobs[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	delete(r.jobs, id)
	if len(r.jobs) == 0 {
		close(r.drained)
	}

	r.logger.Debug("задача сжатия завершена",
		zap.String("job_id", id),
		zap.String("archive", entry.archive),
		zap.Duration("duration", time.Since(entry.startedAt)),
		zap.Int("active_jobs", len(r.jobs)),
	)
	return nil
}

func (r *inmemRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Wait блокируется, пока все зарегистрированные задачи не будут освобождены.
func (r *inmemRegistry) Wait(ctx context.Context) error {
	r.mu.Lock()
	drained := r.drained
	r.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	}
}
