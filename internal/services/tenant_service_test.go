package services

import (
	"testing"
	"time"

	"lingo-relay/internal/models"
	"lingo-relay/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.Group{}, &models.GroupAdmin{}, &models.WhitelistEntry{}))
	return db
}

func newTestTenantService(t *testing.T) *TenantService {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })
	return NewTenantService(newServicesTestDB(t), st)
}

func TestCreateOrRenew(t *testing.T) {
	s := newTestTenantService(t)

	tenant, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)

	assert.Equal(t, models.PlanPremium, tenant.Plan)
	assert.True(t, tenant.IsActive)
	assert.Equal(t, defaultGroupQuota, tenant.GroupQuota)
	assert.NotEmpty(t, tenant.Token)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 30), tenant.ExpiresAt, time.Minute)

	assert.True(t, s.IsValid("U1"))
	assert.False(t, s.IsValid("U-unknown"))
}

func TestCreateOrRenewExtendsAndRotatesToken(t *testing.T) {
	s := newTestTenantService(t)

	first, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)

	// Mark reminders as fired so renewal can be seen clearing them.
	first.Reminded7Day = true
	first.Reminded1Day = true
	require.NoError(t, s.db.Save(first).Error)

	second, err := s.CreateOrRenew("U1", 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "renewal must reuse the existing row")
	assert.NotEqual(t, first.Token, second.Token)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 60), second.ExpiresAt, time.Minute)
	assert.False(t, second.Reminded7Day)
	assert.False(t, second.Reminded1Day)
}

func TestCreateOrRenewRejectsInvalidMonths(t *testing.T) {
	s := newTestTenantService(t)

	_, err := s.CreateOrRenew("U1", 0)
	assert.Error(t, err)
}

func TestBindGroup(t *testing.T) {
	s := newTestTenantService(t)

	assert.False(t, s.BindGroup("U-nosub", "G1"), "binding requires a valid subscription")

	_, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)

	assert.True(t, s.BindGroup("U1", "G1"))
	assert.True(t, s.BindGroup("U1", "G1"), "rebinding an owned group always succeeds")
	assert.True(t, s.BindGroup("U1", "G2"))
	assert.True(t, s.BindGroup("U1", "G3"))
	assert.False(t, s.BindGroup("U1", "G4"), "quota of 3 must be enforced")

	owner, err := s.GetOwner("G1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "U1", owner.UserID)
}

func TestBindGroupTakeover(t *testing.T) {
	s := newTestTenantService(t)

	_, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)
	_, err = s.CreateOrRenew("U2", 1)
	require.NoError(t, err)

	require.True(t, s.BindGroup("U1", "G1"))
	require.True(t, s.BindGroup("U2", "G1"), "takeover is last-write-wins")

	owner, err := s.GetOwner("G1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "U2", owner.UserID)
}

func TestGetOwnerUnbound(t *testing.T) {
	s := newTestTenantService(t)

	owner, err := s.GetOwner("G-none")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestRecordUsage(t *testing.T) {
	s := newTestTenantService(t)

	_, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)

	s.RecordUsage("U1", 1, 10, "google")
	s.RecordUsage("U1", 1, 5, "deepl")

	tenant, err := s.GetTenant("U1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tenant.TranslateCount)
	assert.Equal(t, int64(15), tenant.CharCount)
	assert.Equal(t, int64(15), tenant.TodayCharCount)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), tenant.LastResetDate)

	stats := tenant.GetProviderStats()
	assert.Equal(t, int64(1), stats["google"])
	assert.Equal(t, int64(1), stats["deepl"])
}

func TestRecordUsageDailyReset(t *testing.T) {
	s := newTestTenantService(t)

	tenant, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)

	// Simulate counters carried over from a previous day.
	tenant.TodayCharCount = 100
	tenant.CharCount = 100
	tenant.LastResetDate = "2020-01-01"
	require.NoError(t, s.db.Save(tenant).Error)

	s.RecordUsage("U1", 1, 7, "google")

	tenant, err = s.GetTenant("U1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), tenant.TodayCharCount, "daily counter resets on the first write of a new day")
	assert.Equal(t, int64(107), tenant.CharCount, "lifetime counter never resets")
}

func TestRecordUsageUnknownUser(t *testing.T) {
	s := newTestTenantService(t)
	// Must not panic or create rows.
	s.RecordUsage("U-ghost", 1, 5, "google")

	var count int64
	require.NoError(t, s.db.Model(&models.Tenant{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransferLifecycle(t *testing.T) {
	s := newTestTenantService(t)

	_, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)
	require.True(t, s.BindGroup("U1", "G1"))

	code, err := s.ProposeTransfer("U1")
	require.NoError(t, err)
	require.NotEmpty(t, code)

	_, err = s.ProposeTransfer("U1")
	assert.Error(t, err, "only one proposal may be pending per user")

	require.NoError(t, s.ConfirmTransfer(code, "U2"))

	assert.True(t, s.IsValid("U2"))
	assert.False(t, s.IsValid("U1"))

	owner, err := s.GetOwner("G1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "U2", owner.UserID, "group bindings follow the transfer")

	assert.Error(t, s.ConfirmTransfer(code, "U3"), "a consumed code cannot be reused")
}

func TestConfirmTransferRejections(t *testing.T) {
	s := newTestTenantService(t)

	_, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)
	_, err = s.CreateOrRenew("U2", 1)
	require.NoError(t, err)

	code, err := s.ProposeTransfer("U1")
	require.NoError(t, err)

	assert.Error(t, s.ConfirmTransfer(code, "U1"), "self-transfer is rejected")
	assert.Error(t, s.ConfirmTransfer(code, "U2"), "target with an existing subscription is rejected")
	assert.Error(t, s.ConfirmTransfer("bogus", "U3"))
}

func TestCancelTransfer(t *testing.T) {
	s := newTestTenantService(t)

	_, err := s.CreateOrRenew("U1", 1)
	require.NoError(t, err)

	code, err := s.ProposeTransfer("U1")
	require.NoError(t, err)

	require.NoError(t, s.CancelTransfer("U1"))
	assert.Error(t, s.ConfirmTransfer(code, "U2"), "canceled code is no longer valid")

	_, err = s.ProposeTransfer("U1")
	assert.NoError(t, err, "cancellation frees the proposal slot")
}

func TestCheckExpirationsAndRemind(t *testing.T) {
	s := newTestTenantService(t)

	seed := func(userID string, remaining time.Duration) {
		tenant, err := s.CreateOrRenew(userID, 1)
		require.NoError(t, err)
		tenant.ExpiresAt = time.Now().UTC().Add(remaining)
		require.NoError(t, s.db.Save(tenant).Error)
	}

	seed("U-expired", -time.Hour)
	seed("U-1day", 12*time.Hour)
	seed("U-7day", 5*24*time.Hour)
	seed("U-far", 20*24*time.Hour)

	results := s.CheckExpirationsAndRemind()
	byUser := make(map[string]ExpirationResult)
	for _, r := range results {
		byUser[r.UserID] = r
	}

	require.Len(t, byUser, 3)
	assert.True(t, byUser["U-expired"].Expired)
	assert.Equal(t, 1, byUser["U-1day"].RemindDays)
	assert.Equal(t, 7, byUser["U-7day"].RemindDays)

	expired, err := s.GetTenant("U-expired")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, expired.Plan)

	// Each reminder threshold fires once.
	assert.Empty(t, s.CheckExpirationsAndRemind())
}
