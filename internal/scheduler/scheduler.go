// Package scheduler runs background maintenance for the engine.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Task func(ctx context.Context) error

// Every runs task on a fixed interval until ctx is done. The first run
// happens immediately.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	go run(ctx, name, task)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run(ctx, name, task)
		}
	}
}

func run(ctx context.Context, name string, task Task) {
	if err := task(ctx); err != nil {
		log.Printf("[%s] error: %v", name, err)
	}
}

type job struct {
	name string
	spec string
	task Task
}

// Scheduler wraps robfig/cron. Tasks registered with Add run on their spec
// once Start is called.
type Scheduler struct {
	cron *cron.Cron

	mu   sync.Mutex
	jobs []job
	ctx  context.Context
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))}
}

// Add registers task under spec, e.g. "@daily" or "0 3 * * *".
func (s *Scheduler) Add(spec, name string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if ctx == nil {
			ctx = context.Background()
		}
		run(ctx, name, task)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc %s: %w", name, err)
	}
	s.jobs = append(s.jobs, job{name: name, spec: spec, task: task})
	return nil
}

// Start begins firing jobs. ctx is passed to every run.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	n := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	log.Printf("[scheduler] cron started jobs=%d", n)
}

// RunAll runs every registered task once, in registration order.
func (s *Scheduler) RunAll(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]job(nil), s.jobs...)
	s.mu.Unlock()

	for _, j := range jobs {
		run(ctx, j.name, j.task)
	}
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] cron stopped")
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
