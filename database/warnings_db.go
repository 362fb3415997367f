package database

import (
	"database/sql"
	"errors"
)

// WarningCount returns the current warning count for a (user, ad key) pair,
// 0 if no entry exists.
func (s *Store) WarningCount(userID int64, adKey string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT warning_count FROM warnings WHERE user_id=? AND ad_key=?", userID, adKey).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("query warning count", err)
	}

	return count, nil
}

// IncrementWarning creates the ledger entry at count 1 or bumps an existing
// one, refreshing the last-warning timestamp, and returns the new count. The
// read and the write run in one transaction so concurrent violations of the
// same key cannot observe the same count.
func (s *Store) IncrementWarning(userID int64, adKey string, now int64) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, storeErr("begin warning tx", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow("SELECT warning_count FROM warnings WHERE user_id=? AND ad_key=?", userID, adKey).Scan(&count)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(
			"INSERT INTO warnings (user_id, ad_key, warning_count, last_warning) VALUES (?, ?, ?, ?)",
			userID, adKey, 1, now,
		); err != nil {
			return 0, storeErr("insert warning", err)
		}
	case err != nil:
		return 0, storeErr("query warning count", err)
	default:
		if _, err := tx.Exec(
			"UPDATE warnings SET warning_count = warning_count + 1, last_warning=? WHERE user_id=? AND ad_key=?",
			now, userID, adKey,
		); err != nil {
			return 0, storeErr("update warning", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit warning tx", err)
	}

	return count + 1, nil
}

// ResetWarnings drops the ledger entry for a (user, ad key) pair. Resetting
// an absent entry is a no-op.
func (s *Store) ResetWarnings(userID int64, adKey string) error {
	if _, err := s.db.Exec("DELETE FROM warnings WHERE user_id=? AND ad_key=?", userID, adKey); err != nil {
		return storeErr("reset warnings", err)
	}

	return nil
}
