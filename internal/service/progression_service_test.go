package service

import (
	"testing"

	"manara_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardXPLevelInvariant(t *testing.T) {
	env := newTestEnv(t, testConfig())
	user := env.seedUser(t, model.Student)

	cases := []struct {
		award     int
		wantXP    int
		wantLevel int
	}{
		{award: 100, wantXP: 100, wantLevel: 1},
		{award: 399, wantXP: 499, wantLevel: 1},
		{award: 1, wantXP: 500, wantLevel: 2},
		{award: 499, wantXP: 999, wantLevel: 2},
		{award: 1, wantXP: 1000, wantLevel: 3},
		{award: 1600, wantXP: 2600, wantLevel: 6},
	}

	for _, tc := range cases {
		require.NoError(t, env.progression.AwardXP(user.ID, tc.award))
		got := env.reloadUser(t, user.ID)
		assert.Equal(t, tc.wantXP, got.XP)
		assert.Equal(t, tc.wantLevel, got.Level, "level must equal xp/500+1 at xp=%d", got.XP)
		assert.Equal(t, got.XP, got.Points, "points mirror xp gains")
	}
}

func TestAwardXPIgnoresNonPositiveAmounts(t *testing.T) {
	env := newTestEnv(t, testConfig())
	user := env.seedUser(t, model.Student)

	require.NoError(t, env.progression.AwardXP(user.ID, 0))
	require.NoError(t, env.progression.AwardXP(user.ID, -50))

	got := env.reloadUser(t, user.ID)
	assert.Equal(t, 0, got.XP)
	assert.Equal(t, 1, got.Level)
}

func TestAwardXPMissingUserIsNoOp(t *testing.T) {
	env := newTestEnv(t, testConfig())

	assert.NoError(t, env.progression.AwardXP(99999, 100))
}

func TestProgressionSummary(t *testing.T) {
	env := newTestEnv(t, testConfig())
	user := env.seedUser(t, model.Student)

	require.NoError(t, env.progression.AwardXP(user.ID, 750))
	got := env.reloadUser(t, user.ID)

	summary := env.progression.Summary(got)
	assert.Equal(t, 750, summary.XP)
	assert.Equal(t, 2, summary.Level)
	assert.Equal(t, 1000, summary.NextLevelXP)
}
