package moderation

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"admod-bot/database"
	"admod-bot/models"

	"github.com/stretchr/testify/require"
)

const (
	testThread = int64(100)
	sofaAd     = "Selling sofa, call 555-1234"
	sofaKey    = "selling sofa call 5551234"
)

type testClock struct {
	now time.Time
}

func newTestEngine(t *testing.T) (*Engine, *database.Store, *testClock) {
	t.Helper()

	store, err := database.Open(filepath.Join(t.TempDir(), "moderation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	engine := NewEngine(store, store, store, store)
	engine.now = func() time.Time { return clock.now }

	return engine, store, clock
}

func postEvent(userID int64, text, photoID string) models.PostEvent {
	return models.PostEvent{
		UserID:    userID,
		FirstName: "Tester",
		ThreadID:  testThread,
		MessageID: "1",
		Text:      text,
		PhotoID:   photoID,
	}
}

func TestEngineWarningLadderToBan(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	verdict, err := engine.Evaluate(postEvent(1, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	// Repeats 2 and 3 climb the ladder.
	for want := 1; want <= 2; want++ {
		clock.now = clock.now.Add(time.Hour)

		verdict, err = engine.Evaluate(postEvent(1, sofaAd, ""))
		require.NoError(t, err)
		require.Equal(t, models.OutcomeWarned, verdict.Outcome)
		require.Equal(t, want, verdict.WarningCount)
		require.Equal(t, 3, verdict.WarningsLimit)
		require.NotEmpty(t, verdict.Reason)

		count, err := store.WarningCount(1, sofaKey)
		require.NoError(t, err)
		require.Equal(t, want, count)
	}

	// The fourth repeat reaches the limit.
	clock.now = clock.now.Add(time.Hour)

	verdict, err = engine.Evaluate(postEvent(1, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeBanned, verdict.Outcome)
	require.Equal(t, 3, verdict.WarningCount)
	require.Equal(t, 5, verdict.BlockDays)
	require.Equal(t, clock.now.Unix()+5*24*3600, verdict.BannedUntil)

	// The ladder reset with the ban.
	count, err := store.WarningCount(1, sofaKey)
	require.NoError(t, err)
	require.Zero(t, count)

	bans, err := store.ListActiveBans(clock.now.Unix())
	require.NoError(t, err)
	require.Len(t, bans, 1)
	require.Equal(t, int64(1), bans[0].UserID)

	// Re-offending starts over at warning 1.
	clock.now = clock.now.Add(time.Hour)

	verdict, err = engine.Evaluate(postEvent(1, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeWarned, verdict.Outcome)
	require.Equal(t, 1, verdict.WarningCount)
}

func TestEngineFuzzyMatchKeyedOnEarlierText(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	original := "Selling comfortable blue sofa, call 555-1234 today"
	paraphrase := "Selling comfortable blue sofa, call 555-1234 tomorrow"

	verdict, err := engine.Evaluate(postEvent(2, original, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	clock.now = clock.now.Add(time.Hour)

	verdict, err = engine.Evaluate(postEvent(2, paraphrase, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeWarned, verdict.Outcome)
	require.Contains(t, verdict.Reason, "too similar")

	// The ledger entry is keyed on the earlier text, not the new one.
	count, err := store.WarningCount(2, Normalize(original))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = store.WarningCount(2, Normalize(paraphrase))
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEngineReviewBandFlagsWithoutEnforcement(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	first := "Selling wooden table, nice condition, call 555-7788 today"
	second := "Selling bicycle, almost new, nice condition, call 555-7788"

	verdict, err := engine.Evaluate(postEvent(3, first, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)
	require.Empty(t, verdict.Review)

	clock.now = clock.now.Add(time.Hour)

	verdict, err = engine.Evaluate(postEvent(3, second, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)
	require.Len(t, verdict.Review, 1)
	require.Equal(t, Normalize(first), verdict.Review[0].MatchedText)
	require.GreaterOrEqual(t, verdict.Review[0].Score, ReviewThreshold)
	require.Less(t, verdict.Review[0].Score, ViolationThreshold)

	// Flagged but accepted: both posts are in the history, no warnings.
	records, err := store.ListRecent(3, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	count, err := store.WarningCount(3, Normalize(first))
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEngineShortPostIgnored(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	verdict, err := engine.Evaluate(postEvent(4, "wtb sofa", ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	records, err := store.ListRecent(4, 0)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestEnginePhotoDuplicate(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	verdict, err := engine.Evaluate(postEvent(5, "", "sofa.jpg/102400"))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	clock.now = clock.now.Add(time.Hour)

	verdict, err = engine.Evaluate(postEvent(5, "", "sofa.jpg/102400"))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeWarned, verdict.Outcome)
	require.Contains(t, verdict.Reason, "photo")

	count, err := store.WarningCount(5, "sofa.jpg/102400")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestEngineDisabledTopicAllowsEverything(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	_, err := store.Topic(testThread)
	require.NoError(t, err)
	_, err = store.ToggleEnabled(testThread)
	require.NoError(t, err)

	for repeat := 0; repeat < 2; repeat++ {
		verdict, err := engine.Evaluate(postEvent(6, sofaAd, ""))
		require.NoError(t, err)
		require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

		clock.now = clock.now.Add(time.Hour)
	}

	// Disabled topics take no record at all.
	records, err := store.ListRecent(6, 0)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestEnginePermanentBan(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	_, err := store.Topic(testThread)
	require.NoError(t, err)
	require.NoError(t, store.SetBlockDays(testThread, 0))
	require.NoError(t, store.SetWarningsLimit(testThread, 1))

	verdict, err := engine.Evaluate(postEvent(7, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	clock.now = clock.now.Add(time.Hour)

	// One warning allowed means the first violation already bans.
	verdict, err = engine.Evaluate(postEvent(7, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeBanned, verdict.Outcome)
	require.Zero(t, verdict.BannedUntil)
	require.Zero(t, verdict.BlockDays)

	bans, err := store.ListActiveBans(clock.now.Unix())
	require.NoError(t, err)
	require.Len(t, bans, 1)
	require.True(t, bans[0].Permanent())
}

func TestEngineRepeatOutsideWindowAllowed(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	verdict, err := engine.Evaluate(postEvent(8, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	// The default repeat window is five days.
	clock.now = clock.now.Add(6 * 24 * time.Hour)

	verdict, err = engine.Evaluate(postEvent(8, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	records, err := store.ListRecent(8, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

type failingLedger struct{}

func (failingLedger) IncrementWarning(int64, string, int64) (int, error) {
	return 0, errors.New("ledger offline")
}

func (failingLedger) ResetWarnings(int64, string) error { return nil }

func TestEngineFailedWarningWriteLeavesHistoryUntouched(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	verdict, err := engine.Evaluate(postEvent(10, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)
	recordedAt := clock.now.Unix()

	clock.now = clock.now.Add(time.Hour)

	broken := NewEngine(store, failingLedger{}, store, store)
	broken.now = func() time.Time { return clock.now }

	event := postEvent(10, sofaAd, "")
	event.ThreadID = testThread + 1

	_, err = broken.Evaluate(event)
	require.Error(t, err)

	// The failed evaluation wrote nothing: the stored ad still carries its
	// original thread and timestamp, so redelivery starts from scratch.
	records, err := store.ListRecent(10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, testThread, records[0].ThreadID)
	require.Equal(t, recordedAt, records[0].Timestamp)

	count, err := store.WarningCount(10, sofaKey)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEngineDuplicateInOtherThreadRelocatesRecord(t *testing.T) {
	engine, store, clock := newTestEngine(t)

	verdict, err := engine.Evaluate(postEvent(9, sofaAd, ""))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAllowed, verdict.Outcome)

	clock.now = clock.now.Add(time.Hour)

	event := postEvent(9, sofaAd, "")
	event.ThreadID = testThread + 1

	verdict, err = engine.Evaluate(event)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeWarned, verdict.Outcome)
	require.Contains(t, verdict.Reason, "another topic")

	// The stored ad now points at where the duplicate was last seen.
	records, err := store.ListRecent(9, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, testThread+1, records[0].ThreadID)
	require.Equal(t, clock.now.Unix(), records[0].Timestamp)
}
