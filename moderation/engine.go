package moderation

import (
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"admod-bot/models"
)

// MinAdLength is the pre-filter: a post with no photo and fewer raw
// characters than this is too short to be an ad and is never evaluated.
const MinAdLength = 20

const secondsPerDay = 24 * 60 * 60

// AdHistory is the durable record of prior accepted posts per user.
type AdHistory interface {
	// FindRecentMatch returns the newest ad of the user matching the photo
	// fingerprint (preferred) or the exact normalized text, no older than
	// since. A nil record means no match.
	FindRecentMatch(userID int64, photoID, text string, since int64) (*models.AdRecord, error)
	// ListRecent returns all ads of the user no older than since.
	ListRecent(userID int64, since int64) ([]models.AdRecord, error)
	// RecordAd appends a newly accepted post.
	RecordAd(userID, threadID int64, text, photoID string, now int64) error
	// Relocate moves an existing record's last-seen pointer to a new thread
	// and refreshes its timestamp.
	Relocate(recordID, threadID, now int64) error
}

// WarningLedger tracks per-(user, ad key) warning counts.
type WarningLedger interface {
	IncrementWarning(userID int64, adKey string, now int64) (int, error)
	ResetWarnings(userID int64, adKey string) error
}

// PolicyStore resolves per-thread moderation settings, creating the row with
// defaults the first time a thread is seen.
type PolicyStore interface {
	Topic(threadID int64) (models.TopicPolicy, error)
}

// BanStore persists issued restrictions for reporting.
type BanStore interface {
	AddBan(ban models.BanRecord) error
}

// Engine decides whether an incoming group post is a repeated advertisement
// and walks offenders up the warning ladder. It owns every store mutation of
// an evaluation; applying the verdict (deleting the message, restricting the
// member, notifying anyone) is the caller's job.
type Engine struct {
	history  AdHistory
	ledger   WarningLedger
	policies PolicyStore
	bans     BanStore

	now func() time.Time

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// NewEngine creates an Engine over the given stores.
func NewEngine(history AdHistory, ledger WarningLedger, policies PolicyStore, bans BanStore) *Engine {
	return &Engine{
		history:  history,
		ledger:   ledger,
		policies: policies,
		bans:     bans,
		now:      time.Now,
		users:    make(map[int64]*sync.Mutex),
	}
}

// Evaluate runs one post event through the duplicate checks and the warning
// ladder and returns the verdict. Evaluations for the same user are
// serialized so concurrent posts cannot race the ledger. A returned error
// means the store was unreachable and the event was not processed; no
// partial writes were made and the event is safe to redeliver.
func (e *Engine) Evaluate(event models.PostEvent) (models.Verdict, error) {
	verdict := models.Verdict{Outcome: models.OutcomeAllowed}

	if event.PhotoID == "" && utf8.RuneCountInString(event.Text) < MinAdLength {
		return verdict, nil
	}

	unlock := e.lockUser(event.UserID)
	defer unlock()

	policy, err := e.policies.Topic(event.ThreadID)
	if err != nil {
		return verdict, fmt.Errorf("resolve topic %d policy: %w", event.ThreadID, err)
	}
	if !policy.Enabled {
		return verdict, nil
	}

	now := e.now().Unix()
	since := now - int64(policy.AdRepeatWindowDays)*secondsPerDay
	normText := Normalize(event.Text)

	var (
		violation  bool
		adKey      string
		reason     string
		relocateID int64
	)

	if normText != "" {
		match, errMatch := e.history.FindRecentMatch(event.UserID, "", normText, since)
		if errMatch != nil {
			return verdict, fmt.Errorf("find matching ad text: %w", errMatch)
		}

		if match != nil {
			violation = true
			adKey = normText
			reason = duplicateReason("this ad", match.ThreadID == event.ThreadID, match.Timestamp)
			relocateID = match.ID
		} else {
			previous, errList := e.history.ListRecent(event.UserID, since)
			if errList != nil {
				return verdict, fmt.Errorf("list recent ads: %w", errList)
			}

			// First candidate over the violation threshold wins; the scan is
			// not a best-match search.
			for _, prev := range previous {
				if prev.Text == "" || prev.PhotoID != "" {
					continue
				}

				score := Similarity(prev.Text, normText)
				if !score.Computable {
					continue
				}

				if score.Value >= ViolationThreshold {
					violation = true
					adKey = prev.Text
					reason = similarityReason(score.Value, prev.ThreadID == event.ThreadID, prev.Timestamp)

					break
				}

				if score.Value >= ReviewThreshold {
					verdict.Review = append(verdict.Review, models.ReviewFlag{
						Score:       score.Value,
						MatchedText: prev.Text,
					})
				}
			}
		}
	}

	if event.PhotoID != "" && !violation {
		match, errMatch := e.history.FindRecentMatch(event.UserID, event.PhotoID, "", since)
		if errMatch != nil {
			return verdict, fmt.Errorf("find matching photo: %w", errMatch)
		}

		if match != nil {
			violation = true
			adKey = event.PhotoID
			reason = duplicateReason("this photo", match.ThreadID == event.ThreadID, match.Timestamp)
			relocateID = match.ID
		}
	}

	if !violation {
		if errRecord := e.history.RecordAd(event.UserID, event.ThreadID, normText, event.PhotoID, now); errRecord != nil {
			return verdict, fmt.Errorf("record ad: %w", errRecord)
		}

		return verdict, nil
	}

	count, err := e.ledger.IncrementWarning(event.UserID, adKey, now)
	if err != nil {
		return verdict, fmt.Errorf("increment warnings: %w", err)
	}

	// Refresh the last-seen pointer of the recurring ad only once the
	// violation is on the ledger; a failed evaluation must leave the
	// history exactly as it found it.
	if relocateID != 0 {
		if errMove := e.history.Relocate(relocateID, event.ThreadID, now); errMove != nil {
			log.Printf("Failed to relocate ad %d: %v", relocateID, errMove)
		}
	}

	verdict.Reason = reason
	verdict.WarningsLimit = policy.WarningsLimit

	if count >= policy.WarningsLimit {
		var bannedUntil int64
		if policy.BlockDays > 0 {
			bannedUntil = now + int64(policy.BlockDays)*secondsPerDay
		}

		verdict.Outcome = models.OutcomeBanned
		verdict.WarningCount = count
		verdict.BannedUntil = bannedUntil
		verdict.BlockDays = policy.BlockDays

		if errBan := e.bans.AddBan(models.BanRecord{
			UserID:      event.UserID,
			FirstName:   event.FirstName,
			BannedUntil: bannedUntil,
			Reason:      "Repeated rule violations",
		}); errBan != nil {
			// The restriction itself is applied by the caller; a missing
			// report row must not stop the ban.
			log.Printf("Failed to persist ban record for user %d: %v", event.UserID, errBan)
		}

		// The ladder restarts once the ban is issued.
		if errReset := e.ledger.ResetWarnings(event.UserID, adKey); errReset != nil {
			log.Printf("Failed to reset warnings for user %d: %v", event.UserID, errReset)
		}

		return verdict, nil
	}

	verdict.Outcome = models.OutcomeWarned
	verdict.WarningCount = count

	return verdict, nil
}

// lockUser serializes evaluation per user id.
func (e *Engine) lockUser(userID int64) func() {
	e.mu.Lock()
	lock, ok := e.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.users[userID] = lock
	}
	e.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

func duplicateReason(what string, sameThread bool, postedAt int64) string {
	where := "another topic"
	if sameThread {
		where = "this topic"
	}

	return fmt.Sprintf("you already posted %s in %s on %s.", what, where, formatPostedAt(postedAt))
}

func similarityReason(score float64, sameThread bool, postedAt int64) string {
	where := "another topic"
	if sameThread {
		where = "this topic"
	}

	return fmt.Sprintf("your message is too similar (%d%% match) to an ad you posted in %s on %s.",
		int(score*100), where, formatPostedAt(postedAt))
}

func formatPostedAt(ts int64) string {
	return time.Unix(ts, 0).Format("02.01.2006 at 15:04")
}
