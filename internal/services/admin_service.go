package services

import (
	"errors"
	"strings"

	"lingo-relay/internal/models"
	"lingo-relay/internal/types"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdminService manages group admin claims and privilege checks.
type AdminService struct {
	db            *gorm.DB
	masterUserIDs map[string]struct{}
}

// NewAdminService creates a new AdminService.
func NewAdminService(db *gorm.DB, configManager types.ConfigManager) *AdminService {
	masters := make(map[string]struct{})
	for _, id := range configManager.GetBotConfig().MasterUserIDs {
		masters[strings.TrimSpace(id)] = struct{}{}
	}
	return &AdminService{db: db, masterUserIDs: masters}
}

// IsMaster reports whether the user is a deployment operator.
func (s *AdminService) IsMaster(userID string) bool {
	_, ok := s.masterUserIDs[userID]
	return ok
}

// IsWhitelisted reports whether the user is on the global whitelist.
func (s *AdminService) IsWhitelisted(userID string) bool {
	var entry models.WhitelistEntry
	err := s.db.Where("user_id = ?", userID).First(&entry).Error
	return err == nil
}

// AddToWhitelist inserts a user into the global whitelist.
func (s *AdminService) AddToWhitelist(userID, note string) error {
	entry := models.WhitelistEntry{UserID: userID, Note: note}
	err := s.db.Create(&entry).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

// GetAdmin returns the group's admin user ID, empty when unclaimed.
func (s *AdminService) GetAdmin(groupID string) string {
	var admin models.GroupAdmin
	if err := s.db.Where("group_id = ?", groupID).First(&admin).Error; err != nil {
		return ""
	}
	return admin.UserID
}

// Claim makes the user the group's temporary admin. Only the transition
// from unclaimed succeeds; the unique index on group_id enforces this even
// under concurrent claims. Returns true when the claim won.
func (s *AdminService) Claim(groupID, userID string) bool {
	admin := models.GroupAdmin{GroupID: groupID, UserID: userID}
	err := s.db.Create(&admin).Error
	if err == nil {
		logrus.WithFields(logrus.Fields{"group_id": groupID, "user_id": userID}).Info("Group admin claimed")
		return true
	}
	if isUniqueViolation(err) {
		return false
	}
	logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to claim group admin")
	return false
}

// Reassign replaces the group's admin. Restricted to privileged callers;
// the handler enforces that restriction.
func (s *AdminService) Reassign(groupID, newUserID string) error {
	var admin models.GroupAdmin
	err := s.db.Where("group_id = ?", groupID).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.GroupAdmin{GroupID: groupID, UserID: newUserID}).Error
	}
	if err != nil {
		return err
	}
	admin.UserID = newUserID
	return s.db.Save(&admin).Error
}

// IsPrivileged reports whether the user may change the group's settings:
// master operators, whitelisted users, and the group admin qualify.
func (s *AdminService) IsPrivileged(groupID, userID string) bool {
	if s.IsMaster(userID) || s.IsWhitelisted(userID) {
		return true
	}
	return s.GetAdmin(groupID) == userID
}

// isUniqueViolation detects unique-index conflicts across the supported
// drivers without importing driver-specific error types everywhere.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
