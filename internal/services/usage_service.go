package services

import (
	"context"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const usageQueueSize = 1024

// UsageEvent is one successful translation to account for.
type UsageEvent struct {
	ID       string
	UserID   string
	Chars    int64
	Provider string
}

// UsageService applies usage events to tenant counters asynchronously.
// Submission is non-blocking; events are dropped with a counter when the
// queue is full. Accounting is best-effort by design.
type UsageService struct {
	tenantService *TenantService
	queue         chan UsageEvent
	dropped       atomic.Int64
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewUsageService creates a new UsageService.
func NewUsageService(tenantService *TenantService) *UsageService {
	return &UsageService{
		tenantService: tenantService,
		queue:         make(chan UsageEvent, usageQueueSize),
		stopChan:      make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (s *UsageService) Start() {
	s.wg.Add(1)
	go s.runLoop()
}

// Stop drains the queue and stops the worker.
func (s *UsageService) Stop(ctx context.Context) {
	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("UsageService stopped gracefully.")
	case <-ctx.Done():
		logrus.Warn("UsageService stop timed out.")
	}
}

// Submit queues a usage event without blocking the caller.
func (s *UsageService) Submit(userID, text, provider string) {
	if userID == "" {
		return
	}

	event := UsageEvent{
		ID:       uuid.NewString(),
		UserID:   userID,
		Chars:    int64(utf8.RuneCountInString(text)),
		Provider: provider,
	}

	select {
	case s.queue <- event:
	default:
		dropped := s.dropped.Add(1)
		logrus.WithFields(logrus.Fields{
			"event_id":      event.ID,
			"dropped_total": dropped,
		}).Warn("Usage queue full, event dropped")
	}
}

// Dropped returns the total number of dropped usage events.
func (s *UsageService) Dropped() int64 {
	return s.dropped.Load()
}

func (s *UsageService) runLoop() {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.queue:
			s.apply(event)
		case <-s.stopChan:
			// Drain what is already queued before exiting
			for {
				select {
				case event := <-s.queue:
					s.apply(event)
				default:
					return
				}
			}
		}
	}
}

func (s *UsageService) apply(event UsageEvent) {
	s.tenantService.RecordUsage(event.UserID, 1, event.Chars, event.Provider)
}
