package services

import (
	"errors"
	"time"

	"lingo-relay/internal/models"
	"lingo-relay/internal/store"
	"lingo-relay/internal/types"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	activityThrottleKeyPrefix = "group:active:"
	activityThrottleTTL       = 10 * time.Minute
)

// GroupService manages per-group translation configuration.
type GroupService struct {
	db               *gorm.DB
	store            store.Store
	defaultLanguages []string
}

// NewGroupService creates a new GroupService.
func NewGroupService(db *gorm.DB, store store.Store, configManager types.ConfigManager) *GroupService {
	return &GroupService{
		db:               db,
		store:            store,
		defaultLanguages: configManager.GetBotConfig().DefaultLanguages,
	}
}

// DefaultLanguages returns a copy of the deployment default language list.
func (s *GroupService) DefaultLanguages() []string {
	out := make([]string, len(s.defaultLanguages))
	copy(out, s.defaultLanguages)
	return out
}

// GetGroup loads a group row, creating an in-memory default when absent.
func (s *GroupService) GetGroup(groupID string) (*models.Group, error) {
	var group models.Group
	err := s.db.Where("group_id = ?", groupID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		group = models.Group{
			GroupID:       groupID,
			EnginePref:    models.EngineGoogle,
			AutoTranslate: true,
			LastActiveAt:  time.Now().UTC(),
		}
		group.SetLanguages(s.DefaultLanguages())
		return &group, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetLanguages returns the group's ordered target languages, or the
// deployment default when the group has no configuration.
func (s *GroupService) GetLanguages(groupID string) []string {
	group, err := s.GetGroup(groupID)
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to load group languages")
		return s.DefaultLanguages()
	}
	langs := group.GetLanguages()
	if len(langs) == 0 {
		return s.DefaultLanguages()
	}
	return langs
}

// ToggleLanguage adds the code when absent and removes it when present.
// Returns true when the code is now enabled.
func (s *GroupService) ToggleLanguage(groupID, code string) (bool, error) {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return false, err
	}

	langs := group.GetLanguages()
	if len(langs) == 0 {
		langs = s.DefaultLanguages()
	}

	enabled := false
	next := make([]string, 0, len(langs)+1)
	for _, l := range langs {
		if l == code {
			continue
		}
		next = append(next, l)
	}
	if len(next) == len(langs) {
		next = append(next, code)
		enabled = true
	}

	group.SetLanguages(next)
	if err := s.db.Save(group).Error; err != nil {
		return false, err
	}
	return enabled, nil
}

// ResetLanguages restores the deployment default language list.
func (s *GroupService) ResetLanguages(groupID string) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}
	group.SetLanguages(s.DefaultLanguages())
	return s.db.Save(group).Error
}

// SetEnginePref sets the preferred translation engine. Unrecognized values
// are coerced to google.
func (s *GroupService) SetEnginePref(groupID, engine string) (string, error) {
	if !models.ValidEngine(engine) {
		engine = models.EngineGoogle
	}

	group, err := s.GetGroup(groupID)
	if err != nil {
		return "", err
	}
	group.EnginePref = engine
	if err := s.db.Save(group).Error; err != nil {
		return "", err
	}
	return engine, nil
}

// SetAutoTranslate toggles automatic translation of group messages.
func (s *GroupService) SetAutoTranslate(groupID string, on bool) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}
	group.AutoTranslate = on
	return s.db.Save(group).Error
}

// SetVoiceTranslation toggles the voice translation flag. The flag is
// persisted for future use; no media pipeline consumes it yet.
func (s *GroupService) SetVoiceTranslation(groupID string, on bool) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}
	group.VoiceTranslation = on
	return s.db.Save(group).Error
}

// TouchActivity records group activity. Writes are throttled through the
// store so a busy group does not hit the database on every message.
func (s *GroupService) TouchActivity(groupID string) {
	ok, err := s.store.SetNX(activityThrottleKeyPrefix+groupID, []byte("1"), activityThrottleTTL)
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Debug("Activity throttle check failed")
		return
	}
	if !ok {
		return
	}

	now := time.Now().UTC()
	err = s.db.Model(&models.Group{}).
		Where("group_id = ?", groupID).
		Update("last_active_at", now).Error
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to update group activity")
	}
}

// PurgeInactiveGroups deletes groups with no activity for the given number
// of days. Returns the number of purged rows.
func (s *GroupService) PurgeInactiveGroups(days int) int64 {
	if days <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	result := s.db.Where("last_active_at < ?", cutoff).Delete(&models.Group{})
	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to purge inactive groups")
		return 0
	}
	if result.RowsAffected > 0 {
		logrus.WithField("count", result.RowsAffected).Info("Purged inactive groups")
	}
	return result.RowsAffected
}
