package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/application/service"
)

// InboxSource lists pending records across modules
type InboxSource interface {
	Inbox(approver string) []service.PendingItem
}

// Reminder sends one overdue reminder to an approver
type Reminder interface {
	Remind(ctx context.Context, item service.PendingItem) error
}

// OverdueRecorder receives the overdue count per module after each sweep
type OverdueRecorder interface {
	SetOverdue(counts map[string]int)
}

// OverdueSweeper periodically scans the pending inbox for records past their
// SLA due date. Each overdue record is reminded once per due date.
type OverdueSweeper struct {
	inbox    InboxSource
	reminder Reminder
	recorder OverdueRecorder
	logger   *zap.Logger
	interval time.Duration

	mu       sync.Mutex
	reminded map[string]bool
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewOverdueSweeper creates a sweeper; reminder and recorder may be nil
func NewOverdueSweeper(inbox InboxSource, reminder Reminder, recorder OverdueRecorder, interval time.Duration, logger *zap.Logger) *OverdueSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &OverdueSweeper{
		inbox:    inbox,
		reminder: reminder,
		recorder: recorder,
		logger:   logger,
		interval: interval,
		reminded: make(map[string]bool),
	}
}

// Name returns the worker name for identification
func (s *OverdueSweeper) Name() string {
	return "OverdueSweeper"
}

// Start sweeps once and then on every interval until ctx is done or Stop
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("overdue sweeper is already running")
	}

	var runCtx context.Context
	runCtx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	s.logger.Info("OverdueSweeper started", zap.Duration("interval", s.interval))
	go s.loop(runCtx, s.done)
	return nil
}

// Stop cancels the loop and waits for it to exit
func (s *OverdueSweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

func (s *OverdueSweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one scan and returns how many reminders were sent
func (s *OverdueSweeper) Sweep(ctx context.Context) int {
	items := s.inbox.Inbox("")

	counts := make(map[string]int)
	current := make(map[string]bool)
	var due []service.PendingItem
	for _, it := range items {
		if !it.Overdue {
			continue
		}
		counts[it.Module.String()]++
		key := it.Module.String() + "/" + it.RecordID + "/" + it.DueDate
		current[key] = true
		if !s.wasReminded(key) {
			due = append(due, it)
		}
	}
	if s.recorder != nil {
		s.recorder.SetOverdue(counts)
	}

	sent := 0
	for _, it := range due {
		if s.reminder == nil {
			break
		}
		if err := s.reminder.Remind(ctx, it); err != nil {
			s.logger.Warn("Overdue reminder failed",
				zap.String("module", it.Module.String()),
				zap.String("record_id", it.RecordID),
				zap.Error(err))
			continue
		}
		s.markReminded(it.Module.String() + "/" + it.RecordID + "/" + it.DueDate)
		sent++
	}

	s.prune(current)
	if len(current) > 0 {
		s.logger.Info("Overdue sweep finished",
			zap.Int("overdue", len(current)),
			zap.Int("reminders_sent", sent))
	}
	return sent
}

func (s *OverdueSweeper) wasReminded(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminded[key]
}

func (s *OverdueSweeper) markReminded(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminded[key] = true
}

// prune forgets records that are no longer overdue
func (s *OverdueSweeper) prune(current map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.reminded {
		if !current[key] {
			delete(s.reminded, key)
		}
	}
}
