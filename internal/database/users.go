package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"signalbot/internal/models"
)

const userColumns = `telegram_id, username, first_name, last_name, phone, language, language_selected,
	is_subscribed, is_registered, has_deposit, vip_status, partner_id, partner_status,
	first_deposit_amount, first_deposit_date, partner_registered_at, registration_date, last_activity`

// UpsertUser создает пользователя или обновляет имя и время активности.
// Телефон, язык и флаги воронки при этом не трогаются.
func (db *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (
				telegram_id, username, first_name, last_name, language,
				registration_date, last_activity
			) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(telegram_id) DO UPDATE SET
				username = excluded.username,
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				last_activity = excluded.last_activity`

	language := user.Language
	if language == "" {
		language = models.LangRU
	}
	now := time.Now().UTC()

	_, err := db.ExecContext(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		language,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (db *DB) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = ?`
	user, err := scanUser(db.QueryRowContext(ctx, query, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", telegramID, err)
	}
	return user, nil
}

// FindUserByPhone ищет владельца телефона. Телефон должен быть уже нормализован.
func (db *DB) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = ?`
	user, err := scanUser(db.QueryRowContext(ctx, query, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return user, nil
}

// UpdateUserPhone сохраняет телефон. Занятый другим пользователем номер дает ErrPhoneTaken.
func (db *DB) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET phone = ?, last_activity = ? WHERE telegram_id = ?`,
		phone, time.Now().UTC(), telegramID)
	if isUniqueViolation(err) {
		return ErrPhoneTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update phone: %w", err)
	}
	return expectAffected(res)
}

func (db *DB) SetUserLanguage(ctx context.Context, telegramID int64, language string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET language = ?, language_selected = 1 WHERE telegram_id = ?`,
		language, telegramID)
	if err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	return expectAffected(res)
}

func (db *DB) SetSubscribed(ctx context.Context, telegramID int64, subscribed bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET is_subscribed = ? WHERE telegram_id = ?`, subscribed, telegramID)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	return nil
}

// MarkRegistered фиксирует регистрацию у партнёра.
func (db *DB) MarkRegistered(ctx context.Context, telegramID int64, partnerID string, at time.Time) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET
			partner_status = ?, partner_id = ?, partner_registered_at = ?, is_registered = 1
		WHERE telegram_id = ?`,
		models.PartnerStatusRegistered, nullString(partnerID), at.UTC(), telegramID)
	if err != nil {
		return fmt.Errorf("failed to mark registration: %w", err)
	}
	return expectAffected(res)
}

// MarkFirstDeposit фиксирует первый депозит и выдает VIP.
func (db *DB) MarkFirstDeposit(ctx context.Context, telegramID int64, amount float64, at time.Time) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET
			partner_status = ?, first_deposit_amount = ?, first_deposit_date = ?,
			has_deposit = 1, vip_status = 1
		WHERE telegram_id = ?`,
		models.PartnerStatusDeposited, amount, at.UTC(), telegramID)
	if err != nil {
		return fmt.Errorf("failed to mark first deposit: %w", err)
	}
	return expectAffected(res)
}

func (db *DB) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET last_activity = ? WHERE telegram_id = ?`, time.Now().UTC(), telegramID)
	return err
}

// ListUsers страница пользователей, новые сначала.
func (db *DB) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		ORDER BY registration_date DESC, telegram_id DESC LIMIT ? OFFSET ?`
	return db.queryUsers(ctx, query, limit, offset)
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY registration_date ASC, telegram_id ASC`
	return db.queryUsers(ctx, query)
}

func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                 models.User
		username, first   sql.NullString
		last, phone       sql.NullString
		partnerID, status sql.NullString
		depositDate       sql.NullTime
		registeredAt      sql.NullTime
	)
	err := row.Scan(
		&u.TelegramID, &username, &first, &last, &phone, &u.Language, &u.LanguageSelected,
		&u.IsSubscribed, &u.IsRegistered, &u.HasDeposit, &u.VIPStatus, &partnerID, &status,
		&u.FirstDepositAmount, &depositDate, &registeredAt, &u.RegistrationDate, &u.LastActivity,
	)
	if err != nil {
		return nil, err
	}
	u.Username = username.String
	u.FirstName = first.String
	u.LastName = last.String
	u.Phone = phone.String
	u.PartnerID = partnerID.String
	u.PartnerStatus = status.String
	if depositDate.Valid {
		t := depositDate.Time
		u.FirstDepositDate = &t
	}
	if registeredAt.Valid {
		t := registeredAt.Time
		u.PartnerRegisteredAt = &t
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
