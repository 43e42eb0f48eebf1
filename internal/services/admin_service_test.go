package services

import (
	"testing"

	"lingo-relay/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(t *testing.T, masters ...string) *AdminService {
	t.Helper()
	cfg := config.NewMockConfig()
	cfg.Bot.MasterUserIDs = masters
	return NewAdminService(newServicesTestDB(t), cfg)
}

func TestClaimFirstWins(t *testing.T) {
	s := newTestAdminService(t)

	assert.True(t, s.Claim("G1", "U1"))
	assert.False(t, s.Claim("G1", "U2"), "a claimed group cannot be claimed again")
	assert.Equal(t, "U1", s.GetAdmin("G1"))

	assert.True(t, s.Claim("G2", "U2"), "claims are per group")
}

func TestReassign(t *testing.T) {
	s := newTestAdminService(t)

	require.True(t, s.Claim("G1", "U1"))
	require.NoError(t, s.Reassign("G1", "U2"))
	assert.Equal(t, "U2", s.GetAdmin("G1"))

	// Reassigning an unclaimed group creates the admin record.
	require.NoError(t, s.Reassign("G2", "U3"))
	assert.Equal(t, "U3", s.GetAdmin("G2"))
}

func TestIsPrivileged(t *testing.T) {
	s := newTestAdminService(t, "U-master")

	require.True(t, s.Claim("G1", "U-admin"))
	require.NoError(t, s.AddToWhitelist("U-white", "partner"))

	assert.True(t, s.IsPrivileged("G1", "U-master"))
	assert.True(t, s.IsPrivileged("G1", "U-white"))
	assert.True(t, s.IsPrivileged("G1", "U-admin"))
	assert.False(t, s.IsPrivileged("G1", "U-random"))

	assert.True(t, s.IsPrivileged("G-other", "U-master"), "masters are privileged everywhere")
	assert.False(t, s.IsPrivileged("G-other", "U-admin"), "group admin privilege is scoped to the group")
}

func TestAddToWhitelistIdempotent(t *testing.T) {
	s := newTestAdminService(t)

	require.NoError(t, s.AddToWhitelist("U1", "first"))
	require.NoError(t, s.AddToWhitelist("U1", "again"))
	assert.True(t, s.IsWhitelisted("U1"))
	assert.False(t, s.IsWhitelisted("U2"))
}
