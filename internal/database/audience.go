package database

import (
	"context"
	"fmt"

	"signalbot/internal/models"
)

// audienceFilters только фиксированные условия, пользовательский ввод в SQL не попадает.
var audienceFilters = map[models.Audience]string{
	models.AudienceAll:        "1 = 1",
	models.AudiencePhone:      "phone IS NOT NULL",
	models.AudienceSubscribed: "is_subscribed = 1",
	models.AudienceRegistered: "is_registered = 1",
	models.AudienceDeposit:    "has_deposit = 1",
	models.AudienceVIP:        "vip_status = 1",
}

func audienceWhere(audience models.Audience) (string, error) {
	where, ok := audienceFilters[audience]
	if !ok {
		return "", fmt.Errorf("unknown audience %q", audience)
	}
	return where, nil
}

func (db *DB) CountAudience(ctx context.Context, audience models.Audience) (int, error) {
	where, err := audienceWhere(audience)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+where).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audience %s: %w", audience, err)
	}
	return n, nil
}

// AudienceIDs id получателей в порядке регистрации.
func (db *DB) AudienceIDs(ctx context.Context, audience models.Audience) ([]int64, error) {
	where, err := audienceWhere(audience)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT telegram_id FROM users WHERE `+where+` ORDER BY registration_date ASC, telegram_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audience %s: %w", audience, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
