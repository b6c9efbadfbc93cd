package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"signalbot/internal/models"
)

// LogAction дописывает запись в журнал действий. details сериализуется в JSON.
func (db *DB) LogAction(ctx context.Context, telegramID int64, action string, details interface{}) error {
	var raw sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal log details: %w", err)
		}
		raw = sql.NullString{String: string(data), Valid: true}
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO user_logs (telegram_id, action, details, timestamp) VALUES (?, ?, ?, ?)`,
		telegramID, action, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to log action %s: %w", action, err)
	}
	return nil
}

// RecentUserLogs последние записи пользователя, новые сначала.
func (db *DB) RecentUserLogs(ctx context.Context, telegramID int64, limit int) ([]*models.ActionLog, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, telegram_id, action, details, timestamp
		FROM user_logs WHERE telegram_id = ? ORDER BY id DESC LIMIT ?`, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ActionLog
	for rows.Next() {
		var (
			l       models.ActionLog
			details sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.TelegramID, &l.Action, &details, &l.Timestamp); err != nil {
			return nil, err
		}
		if details.Valid {
			l.Details = json.RawMessage(details.String)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// UserActions действия пользователя в хронологическом порядке.
func (db *DB) UserActions(ctx context.Context, telegramID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT action FROM user_logs WHERE telegram_id = ? ORDER BY id ASC`, telegramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// RecentLogs страница общего журнала для админки.
func (db *DB) RecentLogs(ctx context.Context, offset, limit int) ([]*models.ActionLog, error) {
	rows, err := db.QueryContext(ctx, `SELECT l.id, l.telegram_id, l.action, l.details, l.timestamp,
			COALESCE(u.username, ''), COALESCE(u.first_name, '')
		FROM user_logs l LEFT JOIN users u ON u.telegram_id = l.telegram_id
		ORDER BY l.id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ActionLog
	for rows.Next() {
		var (
			l       models.ActionLog
			details sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.TelegramID, &l.Action, &details, &l.Timestamp, &l.Username, &l.FirstName); err != nil {
			return nil, err
		}
		if details.Valid {
			l.Details = json.RawMessage(details.String)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func (db *DB) CountLogs(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_logs`).Scan(&n)
	return n, err
}

// CleanupOldLogs удаляет записи старше olderThan и возвращает их количество.
func (db *DB) CleanupOldLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := db.ExecContext(ctx, `DELETE FROM user_logs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup logs: %w", err)
	}
	return res.RowsAffected()
}
