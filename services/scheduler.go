package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"sports-match-system/store"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the periodic maintenance jobs: expiring unanswered
// challenges and freeing recording locks whose holder went away.
type Scheduler struct {
	scheduler gocron.Scheduler
	matches   store.MatchStore

	challengeExpiry time.Duration
	lockTimeout     time.Duration
}

func NewScheduler(matches store.MatchStore) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler:       sched,
		matches:         matches,
		challengeExpiry: envMinutes("CHALLENGE_EXPIRY_MINUTES", 2880), // 48h
		lockTimeout:     envMinutes("RECORDING_LOCK_TIMEOUT_MINUTES", 60),
	}, nil
}

func envMinutes(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(def) * time.Minute
}

// Start registers the jobs and begins running them. Both jobs tick every
// minute; the cutoffs decide what is actually stale.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(s.expirePendingChallenges),
	)
	if err != nil {
		return err
	}
	_, err = s.scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(s.releaseStaleRecordingLocks),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	log.Printf("⏰ Scheduler started (challenge expiry %s, lock timeout %s)",
		s.challengeExpiry, s.lockTimeout)
	return nil
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) expirePendingChallenges() {
	cutoff := time.Now().Add(-s.challengeExpiry)
	n, err := s.matches.ExpirePending(cutoff)
	if err != nil {
		log.Printf("❌ Failed to expire pending challenges: %v", err)
		return
	}
	if n > 0 {
		log.Printf("⏰ Expired %d unanswered challenges", n)
	}
}

func (s *Scheduler) releaseStaleRecordingLocks() {
	cutoff := time.Now().Add(-s.lockTimeout)
	n, err := s.matches.ReleaseStaleRecording(cutoff)
	if err != nil {
		log.Printf("❌ Failed to release stale recording locks: %v", err)
		return
	}
	if n > 0 {
		log.Printf("⏰ Released %d stale recording locks", n)
	}
}
