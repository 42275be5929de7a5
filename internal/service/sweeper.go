package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/logger"
	"gameserver/internal/metrics"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper по расписанию прерывает матчи, которые не набрали игроков за
// waitingTTL или простаивают дольше idleTTL
type Sweeper struct {
	matches    *MatchService
	waitingTTL time.Duration
	idleTTL    time.Duration
	interval   time.Duration
	attempts   uint
	now        func() time.Time
	sched      gocron.Scheduler
}

func NewSweeper(matches *MatchService, waitingTTL, idleTTL, interval time.Duration, attempts uint) *Sweeper {
	return &Sweeper{
		matches:    matches,
		waitingTTL: waitingTTL,
		idleTTL:    idleTTL,
		interval:   interval,
		attempts:   attempts,
		now:        time.Now,
	}
}

func (s *Sweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			defer cancel()
			if _, err := s.Sweep(ctx); err != nil {
				logger.Error("sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	sched.Start()
	s.sched = sched
	logger.Info("sweeper started", "interval", s.interval, "waiting_ttl", s.waitingTTL, "idle_ttl", s.idleTTL)
	return nil
}

func (s *Sweeper) Stop() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}

// Sweep делает один проход и возвращает число прерванных матчей
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	passes := []struct {
		reason string
		filter domain.MatchFilter
		ttl    time.Duration
	}{
		{"waiting_timeout", domain.MatchFilter{Status: domain.MatchWaiting, CreatedBefore: now.Add(-s.waitingTTL)}, s.waitingTTL},
		{"idle_timeout", domain.MatchFilter{Status: domain.MatchInProgress, UpdatedBefore: now.Add(-s.idleTTL)}, s.idleTTL},
	}

	swept := 0
	for _, p := range passes {
		if p.ttl <= 0 {
			continue
		}
		stale, err := s.matches.ListMatches(ctx, p.filter)
		if err != nil {
			return swept, err
		}
		for _, m := range stale {
			_, err := Retry(ctx, s.attempts, "sweep", func(ctx context.Context) (*domain.Match, error) {
				return s.matches.AbandonMatch(ctx, m.ID, domain.SystemActor)
			})
			switch {
			case err == nil:
				swept++
				metrics.SweptMatches.WithLabelValues(p.reason).Inc()
				logger.Info("stale match abandoned", "match_id", m.ID, "reason", p.reason)
			case errors.Is(err, domain.ErrFinished):
				// успел завершиться между выборкой и записью
			case errors.Is(err, domain.ErrStoreUnavailable):
				return swept, err
			default:
				logger.Warn("abandon stale match failed", "match_id", m.ID, "error", err)
			}
		}
	}
	return swept, nil
}
