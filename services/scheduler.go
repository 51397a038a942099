// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRebuildScheduler refreshes the Redis leaderboard cache on an interval.
// A no-op when no Redis client is configured.
func (s *LeaderboardService) StartRebuildScheduler() {
	if s.Redis == nil {
		return
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] could not start, leaderboard cache will go stale: %v", err)
		return
	}
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.RebuildCache(ctx); err != nil {
				log.Printf("[Scheduler] leaderboard rebuild failed: %v", err)
			}
		}),
	)
}
