package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/transfer"
)

// Scheduler owns the in-memory triggers recomputed from durable schedule
// definitions. Each transfer gets its own cron runner so replacing or removing
// one schedule never disturbs the others. A worker semaphore bounds concurrent
// executions and a per-transfer lock skips runs that would overlap themselves.
type Scheduler struct {
	scheduleRepo repository.ScheduleRepository
	transferRepo repository.TransferRepository
	engine       *transfer.Engine

	mu      sync.Mutex
	runners map[uint]*cron.Cron
	running map[uint]*sync.Mutex
	workers chan struct{}
}

var (
	instance *Scheduler
	once     sync.Once
)

// Get returns the singleton scheduler instance.
func Get() *Scheduler {
	once.Do(func() {
		instance = &Scheduler{
			scheduleRepo: repository.NewScheduleRepository(),
			transferRepo: repository.NewTransferRepository(),
			engine:       transfer.NewEngine(),
			runners:      map[uint]*cron.Cron{},
			running:      map[uint]*sync.Mutex{},
			workers:      make(chan struct{}, config.Cfg.SchedulerWorkers),
		}
	})
	return instance
}

// LoadAllSchedules registers every enabled, non-manual schedule. Called once
// at startup to rebuild triggers from durable state.
func (s *Scheduler) LoadAllSchedules() error {
	schedules, err := s.scheduleRepo.ListEnabled(nil)
	if err != nil {
		return err
	}
	registered := 0
	for _, sched := range schedules {
		if err := s.RegisterSchedule(&sched); err != nil {
			logger.Errorf("Skipping schedule for transfer %d: %v", sched.TransferID, err)
			continue
		}
		registered++
	}
	logger.Infof("Scheduler started with %d of %d schedules", registered, len(schedules))
	return nil
}

// RegisterSchedule installs or replaces the trigger of one transfer. Manual or
// disabled schedules just remove any existing trigger.
func (s *Scheduler) RegisterSchedule(sched *models.Schedule) error {
	s.Unregister(sched.TransferID)
	if !sched.Enabled || sched.Frequency == models.FrequencyManual {
		return nil
	}

	spec, err := BuildCronSpec(sched)
	if err != nil {
		return err
	}
	parsed, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	transferID := sched.TransferID
	runner := cron.New()
	runner.Schedule(parsed, cron.FuncJob(func() {
		s.fire(transferID, parsed)
	}))
	runner.Start()

	s.mu.Lock()
	s.runners[transferID] = runner
	if s.running[transferID] == nil {
		s.running[transferID] = &sync.Mutex{}
	}
	s.mu.Unlock()

	next := parsed.Next(time.Now())
	if err := s.scheduleRepo.UpdateRunTimes(nil, transferID, sched.LastRunAt, &next); err != nil {
		logger.Warnf("Failed to persist next run time for transfer %d: %v", transferID, err)
	}
	logger.Infof("Registered schedule for transfer %d: %s (next %s)", transferID, spec, next.Format(time.RFC3339))
	return nil
}

// Unregister stops and removes the trigger of one transfer, if any.
func (s *Scheduler) Unregister(transferID uint) {
	s.mu.Lock()
	runner := s.runners[transferID]
	delete(s.runners, transferID)
	s.mu.Unlock()
	if runner != nil {
		runner.Stop()
	}
}

// StopAll stops every trigger. In-flight executions finish on their own.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	runners := s.runners
	s.runners = map[uint]*cron.Cron{}
	s.mu.Unlock()
	for _, runner := range runners {
		runner.Stop()
	}
	logger.Infof("Scheduler stopped")
}

// fire runs one scheduled execution. A transfer still running from its
// previous tick is skipped, not queued.
func (s *Scheduler) fire(transferID uint, parsed cron.Schedule) {
	s.mu.Lock()
	lock := s.running[transferID]
	if lock == nil {
		lock = &sync.Mutex{}
		s.running[transferID] = lock
	}
	s.mu.Unlock()

	if !lock.TryLock() {
		logger.Warnf("Transfer %d still running, skipping scheduled tick", transferID)
		return
	}
	defer lock.Unlock()

	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	// Re-read the transfer: it may have been deactivated or deleted since
	// the trigger was installed.
	t, err := s.transferRepo.GetByID(nil, transferID)
	if err != nil {
		logger.Warnf("Scheduled transfer %d no longer exists, removing trigger", transferID)
		s.Unregister(transferID)
		return
	}
	if !t.Active {
		logger.Infof("Transfer %s inactive, skipping scheduled run", t.Code)
		return
	}

	run, err := s.engine.Run(transferID, "schedule")
	if err != nil {
		logger.Errorf("Scheduled run of transfer %s failed to start: %v", t.Code, err)
		return
	}
	now := time.Now()
	next := parsed.Next(now)
	if err := s.scheduleRepo.UpdateRunTimes(nil, transferID, &now, &next); err != nil {
		logger.Warnf("Failed to persist run times for transfer %d: %v", transferID, err)
	}
	logger.Infof("Scheduled run %s of transfer %s finished with status %s", run.RunUID, t.Code, run.Status)
}

// BuildCronSpec renders a durable schedule definition as a 5-field cron
// expression. Frequency cron passes its expression through.
func BuildCronSpec(sched *models.Schedule) (string, error) {
	switch sched.Frequency {
	case models.FrequencyHourly:
		interval := sched.IntervalHours
		if interval < 1 {
			interval = 1
		}
		if interval == 1 {
			return fmt.Sprintf("%d * * * *", sched.Minute), nil
		}
		return fmt.Sprintf("%d */%d * * *", sched.Minute, interval), nil
	case models.FrequencyDaily:
		return fmt.Sprintf("%d %d * * *", sched.Minute, sched.Hour), nil
	case models.FrequencyWeekly:
		return fmt.Sprintf("%d %d * * %d", sched.Minute, sched.Hour, sched.DayOfWeek), nil
	case models.FrequencyMonthly:
		day := sched.DayOfMonth
		if day < 1 {
			day = 1
		}
		return fmt.Sprintf("%d %d %d * *", sched.Minute, sched.Hour, day), nil
	case models.FrequencyCron:
		if sched.CronExpr == "" {
			return "", fmt.Errorf("cron frequency needs an expression")
		}
		return sched.CronExpr, nil
	default:
		return "", fmt.Errorf("frequency %s has no trigger", sched.Frequency)
	}
}
