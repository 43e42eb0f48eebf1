// Package services contains the domain services for tenants, groups,
// admins, and usage tracking.
package services

import (
	"errors"
	"fmt"
	"time"

	app_errors "lingo-relay/internal/errors"
	"lingo-relay/internal/models"
	"lingo-relay/internal/store"
	"lingo-relay/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	tenantTokenLength     = 22
	transferCodeLength    = 8
	transferProposalTTL   = 10 * time.Minute
	transferCodeKeyPrefix = "transfer:code:"
	transferUserKeyPrefix = "transfer:user:"
	defaultGroupQuota     = 3
	subscriptionMonthDays = 30
)

// TenantService manages tenant entitlements and usage counters.
type TenantService struct {
	db    *gorm.DB
	store store.Store
}

// NewTenantService creates a new TenantService.
func NewTenantService(db *gorm.DB, store store.Store) *TenantService {
	return &TenantService{db: db, store: store}
}

// CreateOrRenew grants or extends a premium subscription. A new token is
// issued, the expiry moves to now + 30 days per month, and reminder flags
// are cleared so the new period gets fresh reminders.
func (s *TenantService) CreateOrRenew(userID string, months int) (*models.Tenant, error) {
	if months < 1 {
		return nil, app_errors.NewValidationError("months must be at least 1")
	}

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 0, subscriptionMonthDays*months)

	var tenant models.Tenant
	err := s.db.Where("user_id = ?", userID).First(&tenant).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		tenant = models.Tenant{
			UserID:     userID,
			GroupQuota: defaultGroupQuota,
		}
	case err != nil:
		return nil, err
	}

	tenant.Token = utils.GenerateSecureRandomString(tenantTokenLength)
	tenant.Plan = models.PlanPremium
	tenant.IsActive = true
	tenant.ExpiresAt = expiresAt
	tenant.Reminded7Day = false
	tenant.Reminded1Day = false

	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"months":     months,
		"expires_at": expiresAt,
	}).Info("Subscription granted")

	return &tenant, nil
}

// IsValid reports whether the user holds an active, unexpired subscription.
func (s *TenantService) IsValid(userID string) bool {
	var tenant models.Tenant
	if err := s.db.Where("user_id = ?", userID).First(&tenant).Error; err != nil {
		return false
	}
	return tenant.IsValidAt(time.Now().UTC())
}

// GetTenant looks up a tenant by user ID.
func (s *TenantService) GetTenant(userID string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.Where("user_id = ?", userID).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetOwner returns the tenant owning a group, or nil when unbound.
func (s *TenantService) GetOwner(groupID string) (*models.Tenant, error) {
	var group models.Group
	err := s.db.Where("group_id = ?", groupID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && group.OwnerUserID == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tenant models.Tenant
	err = s.db.Where("user_id = ?", group.OwnerUserID).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// BindGroup attaches a group to the user's subscription. Returns false when
// the user has no valid subscription or the quota is exhausted. A group the
// user already owns is always rebindable; taking over a group owned by
// another tenant is last-write-wins.
func (s *TenantService) BindGroup(userID, groupID string) bool {
	tenant, err := s.GetTenant(userID)
	if err != nil || !tenant.IsValidAt(time.Now().UTC()) {
		return false
	}

	var group models.Group
	err = s.db.Where("group_id = ?", groupID).First(&group).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).WithField("group_id", groupID).Error("Failed to load group for binding")
		return false
	}
	newGroup := errors.Is(err, gorm.ErrRecordNotFound)

	if !newGroup && group.OwnerUserID == userID {
		return true
	}

	var owned int64
	if err := s.db.Model(&models.Group{}).Where("owner_user_id = ?", userID).Count(&owned).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to count bound groups")
		return false
	}
	if owned >= int64(tenant.GroupQuota) {
		return false
	}

	if newGroup {
		group = models.Group{GroupID: groupID, EnginePref: models.EngineGoogle, AutoTranslate: true, LastActiveAt: time.Now().UTC()}
	}
	group.OwnerUserID = userID

	if err := s.db.Save(&group).Error; err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Error("Failed to bind group")
		return false
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "group_id": groupID}).Info("Group bound to tenant")
	return true
}

// RecordUsage applies usage deltas to the tenant counters, resetting the
// daily character counter on the first write of each UTC day. Persistence
// failures are logged and swallowed; usage accounting is best-effort.
func (s *TenantService) RecordUsage(userID string, translateDelta, charDelta int64, provider string) {
	if userID == "" {
		return
	}

	tenant, err := s.GetTenant(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to load tenant for usage recording")
		}
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	if tenant.LastResetDate != today {
		tenant.TodayCharCount = 0
		tenant.LastResetDate = today
	}

	tenant.TranslateCount += translateDelta
	tenant.CharCount += charDelta
	tenant.TodayCharCount += charDelta

	if provider != "" {
		stats := tenant.GetProviderStats()
		stats[provider] += translateDelta
		tenant.SetProviderStats(stats)
	}

	if err := s.db.Save(tenant).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to persist usage counters")
	}
}

// ProposeTransfer starts a two-step ownership transfer. The returned code
// must be confirmed by the new account within the proposal TTL.
func (s *TenantService) ProposeTransfer(fromUserID string) (string, error) {
	tenant, err := s.GetTenant(fromUserID)
	if err != nil {
		return "", fmt.Errorf("no subscription to transfer")
	}
	if !tenant.IsValidAt(time.Now().UTC()) {
		return "", fmt.Errorf("subscription is not active")
	}

	code := utils.GenerateSecureRandomString(transferCodeLength)

	ok, err := s.store.SetNX(transferUserKeyPrefix+fromUserID, []byte(code), transferProposalTTL)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("a transfer proposal is already pending")
	}
	if err := s.store.Set(transferCodeKeyPrefix+code, []byte(fromUserID), transferProposalTTL); err != nil {
		return "", err
	}

	logrus.WithField("user_id", fromUserID).Info("Ownership transfer proposed")
	return code, nil
}

// ConfirmTransfer completes a transfer: the tenant identity moves to the
// new user in place, reminder flags clear, and the proposal is consumed.
// It is rejected when the target user already has a distinct tenant.
func (s *TenantService) ConfirmTransfer(code, newUserID string) error {
	raw, err := s.store.Get(transferCodeKeyPrefix + code)
	if err != nil {
		return fmt.Errorf("transfer code is invalid or expired")
	}
	fromUserID := string(raw)

	if fromUserID == newUserID {
		return fmt.Errorf("cannot transfer to the same account")
	}

	var existing models.Tenant
	err = s.db.Where("user_id = ?", newUserID).First(&existing).Error
	if err == nil {
		return fmt.Errorf("target account already has a subscription")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	tenant, err := s.GetTenant(fromUserID)
	if err != nil {
		return fmt.Errorf("source subscription no longer exists")
	}

	tenant.UserID = newUserID
	tenant.Reminded7Day = false
	tenant.Reminded1Day = false
	if err := s.db.Save(tenant).Error; err != nil {
		return err
	}

	if err := s.db.Model(&models.Group{}).
		Where("owner_user_id = ?", fromUserID).
		Update("owner_user_id", newUserID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to move group bindings during transfer")
	}

	if err := s.store.Delete(transferCodeKeyPrefix + code); err != nil {
		logrus.WithError(err).Debug("Failed to delete transfer code key")
	}
	if err := s.store.Delete(transferUserKeyPrefix + fromUserID); err != nil {
		logrus.WithError(err).Debug("Failed to delete transfer user key")
	}

	logrus.WithFields(logrus.Fields{"from": fromUserID, "to": newUserID}).Info("Ownership transferred")
	return nil
}

// CancelTransfer withdraws a pending transfer proposal.
func (s *TenantService) CancelTransfer(fromUserID string) error {
	raw, err := s.store.Get(transferUserKeyPrefix + fromUserID)
	if err != nil {
		return fmt.Errorf("no pending transfer proposal")
	}
	code := string(raw)

	if err := s.store.Delete(transferCodeKeyPrefix + code); err != nil {
		logrus.WithError(err).Debug("Failed to delete transfer code key")
	}
	return s.store.Delete(transferUserKeyPrefix + fromUserID)
}

// ExpirationResult describes what CheckExpirationsAndRemind did for one tenant.
type ExpirationResult struct {
	UserID     string
	Expired    bool
	RemindDays int
}

// CheckExpirationsAndRemind downgrades expired premium tenants to the free
// plan and returns reminder work for tenants near expiry. Each reminder
// threshold fires at most once per subscription period.
func (s *TenantService) CheckExpirationsAndRemind() []ExpirationResult {
	now := time.Now().UTC()
	var results []ExpirationResult

	var tenants []models.Tenant
	if err := s.db.Where("plan = ? AND is_active = ?", models.PlanPremium, true).Find(&tenants).Error; err != nil {
		logrus.WithError(err).Error("Failed to load tenants for expiration check")
		return nil
	}

	for i := range tenants {
		tenant := &tenants[i]
		remaining := tenant.ExpiresAt.Sub(now)

		switch {
		case remaining <= 0:
			tenant.Plan = models.PlanFree
			if err := s.db.Save(tenant).Error; err != nil {
				logrus.WithError(err).WithField("user_id", tenant.UserID).Warn("Failed to downgrade expired tenant")
				continue
			}
			results = append(results, ExpirationResult{UserID: tenant.UserID, Expired: true})

		case remaining <= 24*time.Hour && !tenant.Reminded1Day:
			tenant.Reminded1Day = true
			if err := s.db.Save(tenant).Error; err != nil {
				logrus.WithError(err).WithField("user_id", tenant.UserID).Warn("Failed to mark 1-day reminder")
				continue
			}
			results = append(results, ExpirationResult{UserID: tenant.UserID, RemindDays: 1})

		case remaining <= 7*24*time.Hour && !tenant.Reminded7Day:
			tenant.Reminded7Day = true
			if err := s.db.Save(tenant).Error; err != nil {
				logrus.WithError(err).WithField("user_id", tenant.UserID).Warn("Failed to mark 7-day reminder")
				continue
			}
			results = append(results, ExpirationResult{UserID: tenant.UserID, RemindDays: 7})
		}
	}

	return results
}
