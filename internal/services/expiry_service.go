package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"lingo-relay/internal/i18n"
	"lingo-relay/internal/messenger"

	"github.com/sirupsen/logrus"
)

const expiryCheckInterval = time.Hour

// ExpiryService periodically downgrades expired subscriptions and pushes
// reminder notices.
type ExpiryService struct {
	tenantService *TenantService
	messenger     messenger.Messenger
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewExpiryService creates a new ExpiryService.
func NewExpiryService(tenantService *TenantService, messenger messenger.Messenger) *ExpiryService {
	return &ExpiryService{
		tenantService: tenantService,
		messenger:     messenger,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the hourly check loop.
func (s *ExpiryService) Start() {
	s.wg.Add(1)
	go s.runLoop()
}

// Stop stops the check loop.
func (s *ExpiryService) Stop(ctx context.Context) {
	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("ExpiryService stopped gracefully.")
	case <-ctx.Done():
		logrus.Warn("ExpiryService stop timed out.")
	}
}

func (s *ExpiryService) runLoop() {
	defer s.wg.Done()

	// Initial check on start
	s.check()

	ticker := time.NewTicker(expiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.check()
		case <-s.stopChan:
			return
		}
	}
}

func (s *ExpiryService) check() {
	results := s.tenantService.CheckExpirationsAndRemind()
	for _, r := range results {
		var text string
		if r.Expired {
			text = i18n.TDefault("bot.expired")
		} else {
			text = i18n.TDefault("bot.expire_soon", map[string]any{"Days": strconv.Itoa(r.RemindDays)})
		}
		if err := s.messenger.Push(r.UserID, text); err != nil {
			logrus.WithError(err).WithField("user_id", r.UserID).Warn("Failed to push expiry notice")
		}
	}
}
