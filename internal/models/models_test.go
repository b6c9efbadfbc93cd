package models

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestUserState_GetString(t *testing.T) {
	state := &UserState{
		TempData: map[string]interface{}{
			StateKeyAudience: "vip",
			"count":          3,
		},
	}

	assert.Equal(t, "vip", state.GetString(StateKeyAudience))
	assert.Equal(t, "", state.GetString("count"))
	assert.Equal(t, "", state.GetString("missing"))
	assert.Equal(t, "", (&UserState{}).GetString("any"))

	var nilState *UserState
	assert.Equal(t, "", nilState.GetString("any"))
}

func TestUserState_Expired(t *testing.T) {
	now := time.Now()
	s := &UserState{UpdatedAt: now.Add(-2 * time.Hour)}
	assert.True(t, s.Expired(now, StateIdleTimeout))

	s.UpdatedAt = now.Add(-30 * time.Minute)
	assert.False(t, s.Expired(now, StateIdleTimeout))

	assert.False(t, (&UserState{}).Expired(now, StateIdleTimeout))
}

func TestAudience_Valid(t *testing.T) {
	for _, a := range Audiences {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, Audience("everyone").Valid())
}

func TestBroadcastPayload(t *testing.T) {
	p := BroadcastPayload{Text: "hi"}
	assert.False(t, p.HasMedia())
	assert.Equal(t, 0, p.ButtonCount())

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("a", "https://a.example"),
			tgbotapi.NewInlineKeyboardButtonURL("b", "https://b.example"),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("c", "c")),
	)
	p = BroadcastPayload{PhotoID: "file", ReplyMarkup: &kb}
	assert.True(t, p.HasMedia())
	assert.Equal(t, 3, p.ButtonCount())
}

func TestBroadcastJob_Lifecycle(t *testing.T) {
	job := NewBroadcastJob("job-1", 1, 1, AudienceAll, BroadcastPayload{Text: "x"}, []int64{10, 20}, 1)
	snap := job.Snapshot()
	assert.Equal(t, BroadcastPending, snap.Status)
	assert.Equal(t, 2, snap.Stats.Total)
	assert.Equal(t, 1, snap.Stats.Invalid)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(cancel, time.Now())
	assert.Equal(t, BroadcastRunning, job.Snapshot().Status)

	stats := job.Update(func(s *BroadcastStats) { s.Sent++ })
	assert.Equal(t, 1, stats.Sent)

	assert.True(t, job.Cancel())
	assert.Error(t, ctx.Err())

	job.Finish(BroadcastAborted, time.Now())
	assert.Equal(t, BroadcastAborted, job.Snapshot().Status)
	assert.False(t, job.Cancel())
}
