// Package scheduler runs background jobs, currently the daily billing
// reminder pass
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	businessflow "github.com/redelink/redelink/business_flow"
	"github.com/redelink/redelink/config"
	"github.com/redelink/redelink/utils"
)

// ReminderScheduler runs the daily billing reminder pass. It ticks every
// interval, and once the configured pass hour is reached it runs the pass
// for the current UTC date. Two guards keep concurrent deployments from
// double-sending: a redis SetNX lock as the fast path and the unique
// pass_date index in reminder_pass_runs as the authoritative one.
type ReminderScheduler struct {
	flow     businessflow.ReminderFlow
	redis    *redis.Client
	logger   *log.Logger
	interval time.Duration
	passHour int
	lockTTL  time.Duration
	prefix   string

	logFile *os.File
}

func NewReminderScheduler(
	flow businessflow.ReminderFlow,
	redisClient *redis.Client,
	cfg config.SchedulerConfig,
	cachePrefix string,
) *ReminderScheduler {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Minute
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 2 * time.Hour
	}

	s := &ReminderScheduler{
		flow:     flow,
		redis:    redisClient,
		interval: interval,
		passHour: cfg.PassHourUTC,
		lockTTL:  lockTTL,
		prefix:   cachePrefix,
	}

	// Initialize scheduler-specific logger (to stdout and persistent file)
	if err := s.initSchedulerLogger(cfg.LogPath); err != nil {
		// Fallback to default stdout logger if file logger init fails
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a persistent file
func (s *ReminderScheduler) initSchedulerLogger(logPath string) error {
	candidates := []string{logPath, filepath.Join("data", "scheduler.log"), "/data/scheduler.log"}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		s.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
		s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create scheduler log file in any candidate directory")
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *ReminderScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				s.closeLogFile()
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ReminderScheduler) closeLogFile() {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

func (s *ReminderScheduler) runOnce(ctx context.Context) {
	now := utils.UTCNow()
	if now.Hour() < s.passHour {
		return
	}

	passDate := utils.DateOnly(now)
	if !s.acquireLock(ctx, passDate) {
		return
	}

	run, err := s.flow.RunPass(ctx, now)
	if err != nil {
		if errors.Is(err, businessflow.ErrPassAlreadyRan) {
			// Another process claimed the date between the lock and the
			// insert; nothing to do.
			return
		}
		s.logger.Printf("scheduler: reminder pass failed for %s: %v", passDate.Format("2006-01-02"), err)
		s.releaseLock(ctx, passDate)
		return
	}

	s.logger.Printf("scheduler: pass %s done: evaluated=%d computed=%d sent=%d cooldown=%d invalid_phone=%d errored=%d",
		passDate.Format("2006-01-02"),
		run.ContractsEvaluated,
		run.RemindersComputed,
		run.RemindersSent,
		run.SkippedCooldown,
		run.SkippedInvalidPhone,
		run.Errored,
	)

	recordPassMetrics(run)
}

func (s *ReminderScheduler) lockKey(passDate time.Time) string {
	return s.prefix + "reminder_pass_lock:" + passDate.Format("2006-01-02")
}

// acquireLock takes the per-date redis lock. When redis is down the lock is
// treated as acquired; the database unique index still prevents a double
// pass.
func (s *ReminderScheduler) acquireLock(ctx context.Context, passDate time.Time) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, s.lockKey(passDate), utils.UTCNowRFC3339(), s.lockTTL).Result()
	if err != nil {
		s.logger.Printf("scheduler: redis lock failed, falling back to database guard: %v", err)
		return true
	}
	return ok
}

// releaseLock drops the redis lock after a failed pass so the next tick can
// retry the date.
func (s *ReminderScheduler) releaseLock(ctx context.Context, passDate time.Time) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(context.WithoutCancel(ctx), s.lockKey(passDate)).Err(); err != nil {
		s.logger.Printf("scheduler: redis unlock failed: %v", err)
	}
}
