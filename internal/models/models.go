// Package models defines the persistent data model.
package models

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Plan constants.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Translation engine preference constants.
const (
	EngineGoogle = "google"
	EngineDeepL  = "deepl"
)

// ValidEngine reports whether the engine preference is recognized.
func ValidEngine(engine string) bool {
	return engine == EngineGoogle || engine == EngineDeepL
}

// Tenant corresponds to the tenants table. A tenant is a paying user who
// can bind a quota of groups to the premium plan.
type Tenant struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"user_id"`
	Token          string         `gorm:"type:varchar(64);not null" json:"token"`
	Plan           string         `gorm:"type:varchar(16);not null;default:'premium'" json:"plan"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	GroupQuota     int            `gorm:"not null;default:3" json:"group_quota"`
	ExpiresAt      time.Time      `gorm:"not null" json:"expires_at"`
	Reminded7Day   bool           `gorm:"not null;default:false" json:"reminded_7day"`
	Reminded1Day   bool           `gorm:"not null;default:false" json:"reminded_1day"`
	TranslateCount int64          `gorm:"not null;default:0" json:"translate_count"`
	CharCount      int64          `gorm:"not null;default:0" json:"char_count"`
	TodayCharCount int64          `gorm:"not null;default:0" json:"today_char_count"`
	LastResetDate  string         `gorm:"type:varchar(10)" json:"last_reset_date"`
	ProviderStats  datatypes.JSON `gorm:"type:json" json:"provider_stats"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsValidAt reports whether the tenant entitles premium features at t.
func (t *Tenant) IsValidAt(now time.Time) bool {
	return t.IsActive && now.Before(t.ExpiresAt)
}

// GetProviderStats decodes the per-provider usage counters.
func (t *Tenant) GetProviderStats() map[string]int64 {
	stats := make(map[string]int64)
	if len(t.ProviderStats) == 0 {
		return stats
	}
	if err := json.Unmarshal(t.ProviderStats, &stats); err != nil {
		logrus.WithError(err).WithField("user_id", t.UserID).Warn("Failed to decode provider stats")
		return make(map[string]int64)
	}
	return stats
}

// SetProviderStats encodes the per-provider usage counters.
func (t *Tenant) SetProviderStats(stats map[string]int64) {
	data, err := json.Marshal(stats)
	if err != nil {
		logrus.WithError(err).WithField("user_id", t.UserID).Warn("Failed to encode provider stats")
		return
	}
	t.ProviderStats = data
}

// Group corresponds to the chat groups table. Each group carries its own
// translation configuration and, optionally, a binding to a tenant.
type Group struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID          string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"group_id"`
	OwnerUserID      string         `gorm:"type:varchar(64);index" json:"owner_user_id"`
	Languages        datatypes.JSON `gorm:"type:json" json:"languages"`
	EnginePref       string         `gorm:"type:varchar(16);not null;default:'google'" json:"engine_pref"`
	AutoTranslate    bool           `gorm:"not null;default:true" json:"auto_translate"`
	VoiceTranslation bool           `gorm:"not null;default:false" json:"voice_translation"`
	LastActiveAt     time.Time      `json:"last_active_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// GetLanguages decodes the ordered target language list.
func (g *Group) GetLanguages() []string {
	if len(g.Languages) == 0 {
		return nil
	}
	var langs []string
	if err := json.Unmarshal(g.Languages, &langs); err != nil {
		logrus.WithError(err).WithField("group_id", g.GroupID).Warn("Failed to decode group languages")
		return nil
	}
	return langs
}

// SetLanguages encodes the ordered target language list.
func (g *Group) SetLanguages(langs []string) {
	data, err := json.Marshal(langs)
	if err != nil {
		logrus.WithError(err).WithField("group_id", g.GroupID).Warn("Failed to encode group languages")
		return
	}
	g.Languages = data
}

// GroupAdmin corresponds to the group_admins table. The unique index on
// group_id enforces the first-claim transition.
type GroupAdmin struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID   string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"group_id"`
	UserID    string    `gorm:"type:varchar(64);not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WhitelistEntry corresponds to the whitelist table. Whitelisted users may
// change group settings in any group.
type WhitelistEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"user_id"`
	Note      string    `gorm:"type:varchar(255)" json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
