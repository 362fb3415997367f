package database

import (
	"path/filepath"
	"testing"

	"admod-bot/models"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "moderation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestTopicGetOrCreate(t *testing.T) {
	store := newTestStore(t)

	policy, err := store.Topic(42)
	require.NoError(t, err)
	require.Equal(t, models.DefaultTopicPolicy(42), policy)

	// The defaults were persisted, not just returned.
	topics, err := store.ListTopics()
	require.NoError(t, err)
	require.Len(t, topics, 1)
	require.Equal(t, policy, topics[0])

	// A second read returns the same row.
	again, err := store.Topic(42)
	require.NoError(t, err)
	require.Equal(t, policy, again)
}

func TestTopicSetters(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Topic(42)
	require.NoError(t, err)

	require.NoError(t, store.SetBlockDays(42, 0))
	require.NoError(t, store.SetWarningsLimit(42, 10))
	require.NoError(t, store.SetAdRepeatWindowDays(42, 1))

	policy, err := store.Topic(42)
	require.NoError(t, err)
	require.Zero(t, policy.BlockDays)
	require.Equal(t, 10, policy.WarningsLimit)
	require.Equal(t, 1, policy.AdRepeatWindowDays)

	enabled, err := store.ToggleEnabled(42)
	require.NoError(t, err)
	require.False(t, enabled)

	enabled, err = store.ToggleEnabled(42)
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestTopicSetterBounds(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Topic(42)
	require.NoError(t, err)

	require.Error(t, store.SetBlockDays(42, -1))
	require.Error(t, store.SetBlockDays(42, 366))
	require.Error(t, store.SetWarningsLimit(42, 0))
	require.Error(t, store.SetWarningsLimit(42, 11))
	require.Error(t, store.SetAdRepeatWindowDays(42, 0))
	require.Error(t, store.SetAdRepeatWindowDays(42, 11))
}

func TestTopicSettersOnUnseenThread(t *testing.T) {
	store := newTestStore(t)

	require.ErrorIs(t, store.SetBlockDays(99, 5), ErrNoResult)
	require.ErrorIs(t, store.SetWarningsLimit(99, 3), ErrNoResult)
	require.ErrorIs(t, store.SetAdRepeatWindowDays(99, 5), ErrNoResult)

	_, err := store.ToggleEnabled(99)
	require.ErrorIs(t, err, ErrNoResult)
}

func TestAdHistoryWindowAndMatching(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordAd(1, 10, "selling sofa call 5551234", "", 1000))
	require.NoError(t, store.RecordAd(1, 10, "", "sofa.jpg/102400", 2000))

	// Exact text match inside the window.
	match, err := store.FindRecentMatch(1, "", "selling sofa call 5551234", 500)
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, int64(10), match.ThreadID)

	// The same lookup outside the window misses.
	match, err = store.FindRecentMatch(1, "", "selling sofa call 5551234", 1500)
	require.NoError(t, err)
	require.Nil(t, match)

	// Photo fingerprints are matched ahead of text.
	match, err = store.FindRecentMatch(1, "sofa.jpg/102400", "", 500)
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, "sofa.jpg/102400", match.PhotoID)

	// Another user's history is invisible.
	match, err = store.FindRecentMatch(2, "", "selling sofa call 5551234", 500)
	require.NoError(t, err)
	require.Nil(t, match)

	records, err := store.ListRecent(1, 1500)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestAdRelocate(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordAd(1, 10, "selling sofa call 5551234", "", 1000))

	match, err := store.FindRecentMatch(1, "", "selling sofa call 5551234", 0)
	require.NoError(t, err)
	require.NotNil(t, match)

	require.NoError(t, store.Relocate(match.ID, 20, 3000))

	moved, err := store.FindRecentMatch(1, "", "selling sofa call 5551234", 0)
	require.NoError(t, err)
	require.NotNil(t, moved)
	require.Equal(t, match.ID, moved.ID)
	require.Equal(t, int64(20), moved.ThreadID)
	require.Equal(t, int64(3000), moved.Timestamp)
}

func TestWarningLedger(t *testing.T) {
	store := newTestStore(t)

	count, err := store.WarningCount(1, "selling sofa")
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = store.IncrementWarning(1, "selling sofa", 1000)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = store.IncrementWarning(1, "selling sofa", 2000)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// Different keys climb independent ladders.
	count, err = store.IncrementWarning(1, "sofa.jpg/102400", 2000)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, store.ResetWarnings(1, "selling sofa"))

	count, err = store.WarningCount(1, "selling sofa")
	require.NoError(t, err)
	require.Zero(t, count)

	// Resetting an absent entry is a no-op.
	require.NoError(t, store.ResetWarnings(1, "selling sofa"))
}

func TestBans(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddBan(models.BanRecord{UserID: 1, FirstName: "Timed", BannedUntil: 5000, Reason: "spam"}))
	require.NoError(t, store.AddBan(models.BanRecord{UserID: 2, FirstName: "Forever", BannedUntil: 0, Reason: "spam"}))

	// Open-ended bans stay active no matter the clock.
	active, err := store.ListActiveBans(6000)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, int64(2), active[0].UserID)
	require.True(t, active[0].Permanent())

	expired, err := store.ExpiredBans(6000)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, int64(1), expired[0].UserID)

	require.NoError(t, store.RemoveBan(1))
	require.NoError(t, store.RemoveBan(2))

	active, err = store.ListActiveBans(0)
	require.NoError(t, err)
	require.Empty(t, active)
}
