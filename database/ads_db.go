package database

import (
	"database/sql"
	"errors"

	"admod-bot/models"
)

// FindRecentMatch returns the user's most recent ad matching the photo
// fingerprint (checked first when supplied) or the exact normalized text,
// no older than since. A nil record means no match.
func (s *Store) FindRecentMatch(userID int64, photoID, text string, since int64) (*models.AdRecord, error) {
	if photoID != "" {
		record, err := s.queryAd(
			"SELECT id, user_id, thread_id, text, photo_id, timestamp FROM ads WHERE user_id=? AND photo_id=? AND timestamp >= ? ORDER BY timestamp DESC LIMIT 1",
			userID, photoID, since,
		)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}

	if text != "" {
		return s.queryAd(
			"SELECT id, user_id, thread_id, text, photo_id, timestamp FROM ads WHERE user_id=? AND text=? AND timestamp >= ? ORDER BY timestamp DESC LIMIT 1",
			userID, text, since,
		)
	}

	return nil, nil
}

// ListRecent returns every ad of the user no older than since, oldest first.
func (s *Store) ListRecent(userID int64, since int64) ([]models.AdRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, thread_id, text, photo_id, timestamp FROM ads WHERE user_id=? AND timestamp >= ? ORDER BY id",
		userID, since,
	)
	if err != nil {
		return nil, storeErr("list recent ads", err)
	}
	defer rows.Close()

	var records []models.AdRecord
	for rows.Next() {
		var record models.AdRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.ThreadID, &record.Text, &record.PhotoID, &record.Timestamp); err != nil {
			return nil, storeErr("scan ad row", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate ad rows", err)
	}

	return records, nil
}

// RecordAd appends a newly accepted post to the history.
func (s *Store) RecordAd(userID, threadID int64, text, photoID string, now int64) error {
	stmt, err := s.db.Prepare("INSERT INTO ads (user_id, thread_id, text, photo_id, timestamp) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return storeErr("prepare ad insert", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(userID, threadID, text, photoID, now); err != nil {
		return storeErr("insert ad", err)
	}

	return nil
}

// Relocate refreshes an existing ad's thread and timestamp, keeping track of
// where the recurring content was last seen.
func (s *Store) Relocate(recordID, threadID, now int64) error {
	if _, err := s.db.Exec("UPDATE ads SET timestamp=?, thread_id=? WHERE id=?", now, threadID, recordID); err != nil {
		return storeErr("relocate ad", err)
	}

	return nil
}

func (s *Store) queryAd(query string, args ...any) (*models.AdRecord, error) {
	var record models.AdRecord
	err := s.db.QueryRow(query, args...).Scan(
		&record.ID, &record.UserID, &record.ThreadID, &record.Text, &record.PhotoID, &record.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("query ad", err)
	}

	return &record, nil
}
