package database

import (
	"context"
	"testing"
	"time"

	"signalbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		TelegramID: 12345,
		Username:   "testuser",
		FirstName:  "Test",
		LastName:   "User",
	}

	require.NoError(t, db.UpsertUser(ctx, user))

	found, err := db.GetUser(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "testuser", found.Username)
	assert.Equal(t, models.LangRU, found.Language)
	assert.False(t, found.LanguageSelected)
	assert.False(t, found.HasPhone())
	assert.False(t, found.RegistrationDate.IsZero())

	// повторный upsert обновляет имя, но не трогает язык и телефон
	require.NoError(t, db.SetUserLanguage(ctx, 12345, models.LangEN))
	require.NoError(t, db.UpdateUserPhone(ctx, 12345, "+79991234567"))
	user.Username = "renamed"
	require.NoError(t, db.UpsertUser(ctx, user))

	found, err = db.GetUser(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Username)
	assert.Equal(t, models.LangEN, found.Language)
	assert.True(t, found.LanguageSelected)
	assert.Equal(t, "+79991234567", found.Phone)

	require.NoError(t, db.UpdateUserActivity(ctx, 12345))
	require.NoError(t, db.SetSubscribed(ctx, 12345, true))
	found, _ = db.GetUser(ctx, 12345)
	assert.True(t, found.IsSubscribed)
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.SetUserLanguage(context.Background(), 1, models.LangEN)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserPhone_Unique(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: 1, FirstName: "A"}))
	require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: 2, FirstName: "B"}))

	require.NoError(t, db.UpdateUserPhone(ctx, 1, "+79991234567"))
	err := db.UpdateUserPhone(ctx, 2, "+79991234567")
	assert.ErrorIs(t, err, ErrPhoneTaken)

	// владелец может сохранить тот же номер повторно
	assert.NoError(t, db.UpdateUserPhone(ctx, 1, "+79991234567"))

	owner, err := db.FindUserByPhone(ctx, "+79991234567")
	require.NoError(t, err)
	assert.Equal(t, int64(1), owner.TelegramID)

	_, err = db.FindUserByPhone(ctx, "+10000000001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartnerTransitions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: 42, FirstName: "P"}))

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, db.MarkRegistered(ctx, 42, "player-9", at))

	u, err := db.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.True(t, u.IsRegistered)
	assert.Equal(t, models.PartnerStatusRegistered, u.PartnerStatus)
	assert.Equal(t, "player-9", u.PartnerID)
	require.NotNil(t, u.PartnerRegisteredAt)
	assert.True(t, at.Equal(*u.PartnerRegisteredAt))

	require.NoError(t, db.MarkFirstDeposit(ctx, 42, 150.5, at))
	u, err = db.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.True(t, u.HasDeposit)
	assert.True(t, u.VIPStatus)
	assert.Equal(t, models.PartnerStatusDeposited, u.PartnerStatus)
	assert.InDelta(t, 150.5, u.FirstDepositAmount, 0.001)
	require.NotNil(t, u.FirstDepositDate)

	assert.ErrorIs(t, db.MarkFirstDeposit(ctx, 999, 1, at), ErrNotFound)
}

func TestListUsers_Paging(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	for i := int64(1); i <= 15; i++ {
		require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: i, FirstName: "U"}))
	}

	total, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, total)

	page1, err := db.ListUsers(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, page1, 10)

	page2, err := db.ListUsers(ctx, 10, 10)
	require.NoError(t, err)
	assert.Len(t, page2, 5)

	all, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func TestAudience(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := int64(1); i <= 6; i++ {
		require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: i, FirstName: "U"}))
	}
	require.NoError(t, db.UpdateUserPhone(ctx, 1, "+79990000001"))
	require.NoError(t, db.UpdateUserPhone(ctx, 2, "+79990000002"))
	require.NoError(t, db.SetSubscribed(ctx, 3, true))
	require.NoError(t, db.MarkRegistered(ctx, 4, "p4", time.Now()))
	require.NoError(t, db.MarkRegistered(ctx, 5, "p5", time.Now()))
	require.NoError(t, db.MarkFirstDeposit(ctx, 5, 10, time.Now()))

	cases := map[models.Audience]int{
		models.AudienceAll:        6,
		models.AudiencePhone:      2,
		models.AudienceSubscribed: 1,
		models.AudienceRegistered: 2,
		models.AudienceDeposit:    1,
		models.AudienceVIP:        1,
	}
	for audience, want := range cases {
		n, err := db.CountAudience(ctx, audience)
		require.NoError(t, err)
		assert.Equal(t, want, n, audience)

		ids, err := db.AudienceIDs(ctx, audience)
		require.NoError(t, err)
		assert.Len(t, ids, want, audience)
	}

	_, err := db.CountAudience(ctx, models.Audience("nope"))
	assert.Error(t, err)
}

func TestLogsAndStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: 1, Username: "one"}))

	require.NoError(t, db.LogAction(ctx, 1, models.ActionStartCommand, nil))
	require.NoError(t, db.LogAction(ctx, 1, models.ActionPhoneShared, map[string]string{"phone": "+7999"}))

	actions, err := db.UserActions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ActionStartCommand, models.ActionPhoneShared}, actions)

	recent, err := db.RecentUserLogs(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.ActionPhoneShared, recent[0].Action)
	assert.JSONEq(t, `{"phone":"+7999"}`, string(recent[0].Details))

	page, err := db.RecentLogs(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "one", page[0].Username)

	n, err := db.CountLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.NewToday)
	assert.Equal(t, 2, stats.LogsLast24Hours)

	// старые записи уходят, свежие остаются
	_, err = db.ExecContext(ctx, `UPDATE user_logs SET timestamp = ? WHERE action = ?`,
		time.Now().UTC().AddDate(0, 0, -40), models.ActionStartCommand)
	require.NoError(t, err)
	removed, err := db.CleanupOldLogs(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSettings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetSetting(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SetSetting(ctx, "k", "v1"))
	require.NoError(t, db.SetSetting(ctx, "k", "v2"))
	v, err := db.GetSetting(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	list, err := db.ListSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, db.DeleteSetting(ctx, "k"))
	_, err = db.GetSetting(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
