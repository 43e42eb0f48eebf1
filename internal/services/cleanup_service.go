package services

import (
	"context"
	"sync"
	"time"

	"lingo-relay/internal/types"

	"github.com/sirupsen/logrus"
)

const cleanupInterval = 12 * time.Hour

// CleanupService purges groups that have been inactive past the configured
// retention window.
type CleanupService struct {
	groupService *GroupService
	inactiveDays int
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewCleanupService creates a new CleanupService.
func NewCleanupService(groupService *GroupService, configManager types.ConfigManager) *CleanupService {
	return &CleanupService{
		groupService: groupService,
		inactiveDays: configManager.GetBotConfig().InactiveGroupDays,
		stopChan:     make(chan struct{}),
	}
}

// Start launches the periodic purge loop.
func (s *CleanupService) Start() {
	s.wg.Add(1)
	go s.runLoop()
}

// Stop stops the purge loop.
func (s *CleanupService) Stop(ctx context.Context) {
	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("CleanupService stopped gracefully.")
	case <-ctx.Done():
		logrus.Warn("CleanupService stop timed out.")
	}
}

func (s *CleanupService) runLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.groupService.PurgeInactiveGroups(s.inactiveDays)
		case <-s.stopChan:
			return
		}
	}
}
