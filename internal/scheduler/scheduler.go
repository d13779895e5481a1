// Package scheduler runs the bot's periodic maintenance: idle-session
// pruning and a daily catalog census.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	pruneFunc  func() int
	censusFunc func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetPruneFunction installs the hourly session pruner; it returns how many
// sessions were dropped.
func (s *Scheduler) SetPruneFunction(f func() int) {
	s.pruneFunc = f
}

// SetCensusFunction installs the daily catalog census job.
func (s *Scheduler) SetCensusFunction(f func(ctx context.Context) error) {
	s.censusFunc = f
}

func (s *Scheduler) Start() error {
	if s.pruneFunc != nil {
		if _, err := s.cron.AddFunc("@hourly", func() {
			if n := s.pruneFunc(); n > 0 {
				log.Printf("🧹 pruned %d idle session(s)", n)
			}
		}); err != nil {
			return err
		}
	}

	if s.censusFunc != nil {
		// Daily at 21:00 UTC
		if _, err := s.cron.AddFunc("0 21 * * *", func() {
			if err := s.censusFunc(s.ctx); err != nil {
				log.Printf("❌ daily catalog census failed: %v", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Println("📅 Scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}
