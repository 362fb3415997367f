package database

import (
	"admod-bot/models"
)

// AddBan records an issued restriction for reporting. The chat platform
// remains the source of truth for whether the user is actually restricted.
func (s *Store) AddBan(ban models.BanRecord) error {
	stmt, err := s.db.Prepare("INSERT INTO bans (user_id, first_name, banned_until, reason) VALUES (?, ?, ?, ?)")
	if err != nil {
		return storeErr("prepare ban insert", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(ban.UserID, ban.FirstName, ban.BannedUntil, ban.Reason); err != nil {
		return storeErr("insert ban", err)
	}

	return nil
}

// RemoveBan deletes every ban record of a user, typically after an unban.
func (s *Store) RemoveBan(userID int64) error {
	if _, err := s.db.Exec("DELETE FROM bans WHERE user_id=?", userID); err != nil {
		return storeErr("remove ban", err)
	}

	return nil
}

// ListActiveBans returns bans that are still in force: open-ended ones and
// those expiring after now.
func (s *Store) ListActiveBans(now int64) ([]models.BanRecord, error) {
	return s.listBans("SELECT user_id, first_name, banned_until, reason FROM bans WHERE banned_until > ? OR banned_until = 0", now)
}

// ExpiredBans returns timed bans whose expiry has passed.
func (s *Store) ExpiredBans(now int64) ([]models.BanRecord, error) {
	return s.listBans("SELECT user_id, first_name, banned_until, reason FROM bans WHERE banned_until > 0 AND banned_until <= ?", now)
}

func (s *Store) listBans(query string, args ...any) ([]models.BanRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storeErr("list bans", err)
	}
	defer rows.Close()

	var bans []models.BanRecord
	for rows.Next() {
		var ban models.BanRecord
		if err := rows.Scan(&ban.UserID, &ban.FirstName, &ban.BannedUntil, &ban.Reason); err != nil {
			return nil, storeErr("scan ban row", err)
		}
		bans = append(bans, ban)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate ban rows", err)
	}

	return bans, nil
}
