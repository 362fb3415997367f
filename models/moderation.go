package models

// AdRecord represents a stored advertisement post in the ads table.
type AdRecord struct {
	ID        int64
	UserID    int64
	ThreadID  int64
	Text      string // normalized text, empty for photo-only ads
	PhotoID   string // platform fingerprint, empty for text-only ads
	Timestamp int64
}

// TopicPolicy represents the per-thread moderation settings row.
type TopicPolicy struct {
	ThreadID           int64
	Enabled            bool
	BlockDays          int // 0 means a permanent block
	WarningsLimit      int // warnings before a block is issued
	AdRepeatWindowDays int
}

// DefaultTopicPolicy returns the settings applied to a thread the first time
// it is observed.
func DefaultTopicPolicy(threadID int64) TopicPolicy {
	return TopicPolicy{
		ThreadID:           threadID,
		Enabled:            true,
		BlockDays:          5,
		WarningsLimit:      3,
		AdRepeatWindowDays: 5,
	}
}

// WarningEntry represents a row of the warnings ledger. One entry exists per
// (user, ad key) pair while the user is climbing the warning ladder.
type WarningEntry struct {
	UserID      int64
	AdKey       string // normalized text or photo fingerprint
	Count       int
	LastWarning int64
}

// BanRecord represents an issued restriction.
type BanRecord struct {
	UserID      int64
	FirstName   string
	BannedUntil int64 // unix seconds, 0 means permanent
	Reason      string
}

// Permanent reports whether the ban has no expiry.
func (b BanRecord) Permanent() bool {
	return b.BannedUntil == 0
}
