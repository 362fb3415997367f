package models

// PostEvent is an inbound group post handed to the moderation engine.
type PostEvent struct {
	UserID    int64
	FirstName string
	ThreadID  int64
	MessageID string
	Text      string // raw text or caption, not yet normalized
	PhotoID   string // opaque platform fingerprint, empty if no photo
}

// Outcome is the terminal state of a post evaluation.
type Outcome int

const (
	OutcomeAllowed Outcome = iota
	OutcomeWarned
	OutcomeBanned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWarned:
		return "warned"
	case OutcomeBanned:
		return "banned"
	default:
		return "allowed"
	}
}

// ReviewFlag marks a post that scored in the suspicious band against an
// earlier ad. It is informational only and carries no enforcement.
type ReviewFlag struct {
	Score       float64
	MatchedText string
}

// Verdict is the engine's decision for a single post event. Review flags are
// emitted independently of the outcome and may accompany an allowed post.
type Verdict struct {
	Outcome       Outcome
	Reason        string
	WarningCount  int
	WarningsLimit int
	BannedUntil   int64 // unix seconds, 0 means permanent
	BlockDays     int
	Review        []ReviewFlag
}
