package database

import (
	"database/sql"
	"errors"
	"fmt"

	"admod-bot/models"
)

// Bounds for the configurable topic settings.
const (
	MaxBlockDays          = 365
	MinWarningsLimit      = 1
	MaxWarningsLimit      = 10
	MinAdRepeatWindowDays = 1
	MaxAdRepeatWindowDays = 10
)

// Topic returns the moderation settings of a thread, lazily inserting the
// default row the first time the thread is observed.
func (s *Store) Topic(threadID int64) (models.TopicPolicy, error) {
	policy, err := s.queryTopic(threadID)
	if err == nil {
		return policy, nil
	}
	if !errors.Is(err, ErrNoResult) {
		return models.TopicPolicy{}, err
	}

	policy = models.DefaultTopicPolicy(threadID)
	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO topics (thread_id, enabled, block_days, warnings_limit, ad_frequency_days) VALUES (?, 1, ?, ?, ?)",
		threadID, policy.BlockDays, policy.WarningsLimit, policy.AdRepeatWindowDays,
	); err != nil {
		return models.TopicPolicy{}, storeErr("insert topic defaults", err)
	}

	return policy, nil
}

// ListTopics returns the settings of every observed thread.
func (s *Store) ListTopics() ([]models.TopicPolicy, error) {
	rows, err := s.db.Query("SELECT thread_id, enabled, block_days, warnings_limit, ad_frequency_days FROM topics ORDER BY thread_id")
	if err != nil {
		return nil, storeErr("list topics", err)
	}
	defer rows.Close()

	var topics []models.TopicPolicy
	for rows.Next() {
		var (
			policy  models.TopicPolicy
			enabled int
		)
		if err := rows.Scan(&policy.ThreadID, &enabled, &policy.BlockDays, &policy.WarningsLimit, &policy.AdRepeatWindowDays); err != nil {
			return nil, storeErr("scan topic row", err)
		}
		policy.Enabled = enabled != 0
		topics = append(topics, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate topic rows", err)
	}

	return topics, nil
}

// SetBlockDays sets the restriction length for a topic, 0 meaning permanent.
// Returns ErrNoResult if the thread has never been observed.
func (s *Store) SetBlockDays(threadID int64, days int) error {
	if days < 0 || days > MaxBlockDays {
		return fmt.Errorf("block days must be between 0 and %d", MaxBlockDays)
	}

	return s.updateTopic("UPDATE topics SET block_days=? WHERE thread_id=?", days, threadID)
}

// SetWarningsLimit sets the number of warnings before a restriction is
// issued. Returns ErrNoResult if the thread has never been observed.
func (s *Store) SetWarningsLimit(threadID int64, limit int) error {
	if limit < MinWarningsLimit || limit > MaxWarningsLimit {
		return fmt.Errorf("warnings limit must be between %d and %d", MinWarningsLimit, MaxWarningsLimit)
	}

	return s.updateTopic("UPDATE topics SET warnings_limit=? WHERE thread_id=?", limit, threadID)
}

// SetAdRepeatWindowDays sets the minimum allowed interval between identical
// ads from one user. Returns ErrNoResult if the thread has never been
// observed.
func (s *Store) SetAdRepeatWindowDays(threadID int64, days int) error {
	if days < MinAdRepeatWindowDays || days > MaxAdRepeatWindowDays {
		return fmt.Errorf("repeat window must be between %d and %d days", MinAdRepeatWindowDays, MaxAdRepeatWindowDays)
	}

	return s.updateTopic("UPDATE topics SET ad_frequency_days=? WHERE thread_id=?", days, threadID)
}

// ToggleEnabled flips the enabled flag of a topic and returns the new state.
// Returns ErrNoResult if the thread has never been observed.
func (s *Store) ToggleEnabled(threadID int64) (bool, error) {
	policy, err := s.queryTopic(threadID)
	if err != nil {
		return false, err
	}

	enabled := 0
	if !policy.Enabled {
		enabled = 1
	}

	if err := s.updateTopic("UPDATE topics SET enabled=? WHERE thread_id=?", enabled, threadID); err != nil {
		return false, err
	}

	return enabled != 0, nil
}

func (s *Store) queryTopic(threadID int64) (models.TopicPolicy, error) {
	var (
		policy  models.TopicPolicy
		enabled int
	)
	err := s.db.QueryRow(
		"SELECT thread_id, enabled, block_days, warnings_limit, ad_frequency_days FROM topics WHERE thread_id=?",
		threadID,
	).Scan(&policy.ThreadID, &enabled, &policy.BlockDays, &policy.WarningsLimit, &policy.AdRepeatWindowDays)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TopicPolicy{}, ErrNoResult
	}
	if err != nil {
		return models.TopicPolicy{}, storeErr("query topic", err)
	}
	policy.Enabled = enabled != 0

	return policy, nil
}

func (s *Store) updateTopic(query string, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return storeErr("update topic", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storeErr("update topic", err)
	}
	if affected == 0 {
		return ErrNoResult
	}

	return nil
}
