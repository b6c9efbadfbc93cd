package database

import (
	"context"
	"fmt"
	"time"

	"signalbot/internal/models"
)

func (db *DB) GetStats(ctx context.Context) (*models.Stats, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var s models.Stats
	err := db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN phone IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(is_subscribed), 0),
			COALESCE(SUM(is_registered), 0),
			COALESCE(SUM(has_deposit), 0),
			COALESCE(SUM(vip_status), 0),
			COALESCE(SUM(CASE WHEN registration_date >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN last_activity >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(first_deposit_amount), 0)
		FROM users`, startOfDay, startOfDay).Scan(
		&s.TotalUsers, &s.WithPhone, &s.Subscribed, &s.Registered, &s.Deposited, &s.VIP,
		&s.NewToday, &s.ActiveToday, &s.TotalDeposits,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_logs WHERE timestamp >= ?`,
		now.Add(-24*time.Hour)).Scan(&s.LogsLast24Hours)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent logs: %w", err)
	}
	return &s, nil
}
