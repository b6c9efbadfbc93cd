package bot

import (
	"context"
	"encoding/json"
	"testing"

	"signalbot/internal/events"
	"signalbot/internal/i18n"
	"signalbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu_EditsTrackedMessage(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 10, "+79161112200")

	env.callback(10, ScreenFreeGuide)

	assert.Equal(t, i18n.T("ru", "free_guide"), env.sender.lastText(10))
	id, ok := env.bot.menus.Get(10)
	require.True(t, ok)
	assert.Equal(t, 5, id)
	assert.Empty(t, env.sender.deletes())
}

func TestMenu_EditFailureSendsNewAndDeletesOld(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 10, "+79161112200")
	env.sender.failEdits = true

	env.callback(10, ScreenAboutStrategy)

	deletes := env.sender.deletes()
	require.Len(t, deletes, 1)
	assert.Equal(t, 5, deletes[0].MessageID)

	id, ok := env.bot.menus.Get(10)
	require.True(t, ok)
	assert.NotEqual(t, 5, id)
}

func TestMenu_InteractionAudit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 11, "+79161112211")

	env.callback(11, ScreenVIPBonus)
	assert.Contains(t, env.sender.lastText(11), "ATY737")

	logs, err := env.db.RecentUserLogs(ctx, 11, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	var details map[string]string
	require.NoError(t, json.Unmarshal(logs[0].Details, &details))
	assert.Equal(t, ScreenVIPBonus, details["callback_data"])
	assert.Equal(t, "bonus", details["menu_type"])
}

func TestMenu_FAQItem(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 12, "+79161112212")

	env.callback(12, faqCallback(3))
	text := env.sender.lastText(12)
	assert.Contains(t, text, i18n.T("ru", "faq_q_3"))
	assert.Contains(t, text, i18n.T("ru", "faq_a_3"))

	env.callback(12, faqCallback(i18n.FAQCount+1))
	answers := env.sender.callbackAnswers()
	assert.Equal(t, i18n.T("ru", "invalid_data"), answers[len(answers)-1].Text)
}

func TestMenu_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 13, "+79161112213")

	for i := 0; i < 30; i++ {
		env.callback(13, ScreenFAQ)
	}
	env.callback(13, ScreenFAQ)

	answers := env.sender.callbackAnswers()
	last := answers[len(answers)-1]
	assert.True(t, last.ShowAlert)
	assert.Equal(t, i18n.T("ru", "too_many_attempts"), last.Text)
}

func TestMenu_PocketOptionLinkHasUserID(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 14, "+79161112214")

	keyboard := env.bot.registrationKeyboard("ru", "btn_po_register", 14)
	require.NotEmpty(t, keyboard.InlineKeyboard)
	require.NotNil(t, keyboard.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://po.example/register?click_id=14", *keyboard.InlineKeyboard[0][0].URL)
}

func TestMenu_ChangeLanguageFromSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 15, "+79161112215")

	env.callback(15, ScreenChangeLanguage)
	env.callback(15, "lang_en")

	user, err := env.db.GetUser(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, "en", user.Language)
	assert.Contains(t, env.sender.lastText(15), "*Welcome to Trading Bot*")
	assert.Equal(t, models.StateMainMenu, env.bot.stateService.CurrentStep(ctx, 15))
}

func TestNotifications_FirstDepositSendsInvite(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Telegram.VIPChannelID = -100123
	env.sender.requestResult = json.RawMessage(`{"invite_link":"https://t.me/+vipInvite"}`)

	require.NoError(t, env.bus.PublishJSON(events.EventPostbackFirstDeposit, models.PostbackNotice{
		UserID:   16,
		Event:    models.PostbackFirstDeposit,
		Amount:   150,
		Language: "en",
	}))

	texts := env.sender.texts(16)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "$150.00")
	assert.Contains(t, texts[1], "https://t.me/+vipInvite")

	var invite *tgbotapi.CreateChatInviteLinkConfig
	for _, r := range env.sender.requests {
		if c, ok := r.(tgbotapi.CreateChatInviteLinkConfig); ok {
			invite = &c
		}
	}
	require.NotNil(t, invite)
	assert.Equal(t, 1, invite.MemberLimit)
	assert.Equal(t, int64(-100123), invite.ChatID)
}

func TestNotifications_Registration(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.bus.PublishJSON(events.EventPostbackRegistration, models.PostbackNotice{
		UserID:   17,
		Event:    models.PostbackRegistration,
		Language: "ru",
	}))

	assert.Equal(t, []string{i18n.T("ru", "registration_confirmed")}, env.sender.texts(17))
}
