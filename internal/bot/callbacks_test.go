package bot

import (
	"testing"

	"signalbot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want Callback
	}{
		{"noop", Callback{Kind: CallbackNoop}},
		{"lang_en", Callback{Kind: CallbackLanguage, Language: "en"}},
		{"lang_de", Callback{Kind: CallbackLanguage, Language: "de"}},
		{"check_subscription", Callback{Kind: CallbackCheckSubscription}},
		{"subscription_help", Callback{Kind: CallbackSubscriptionHelp}},
		{"copy_trades", Callback{Kind: CallbackMenu, Screen: ScreenCopyTrades}},
		{"main_menu", Callback{Kind: CallbackMenu, Screen: ScreenMainMenu}},
		{"faq", Callback{Kind: CallbackMenu, Screen: ScreenFAQ}},
		{"faq_7", Callback{Kind: CallbackFAQItem, Screen: ScreenFAQ, FAQ: 7}},
		{"faq_0", Callback{Kind: CallbackUnknown}},
		{"faq_x", Callback{Kind: CallbackUnknown}},
		{"admin_menu", Callback{Kind: CallbackAdmin, Screen: AdminMenu}},
		{"admin_users_3", Callback{Kind: CallbackAdmin, Screen: AdminUsers, Page: 3}},
		{"admin_logs_0", Callback{Kind: CallbackAdmin, Screen: AdminLogs}},
		{"admin_unknown", Callback{Kind: CallbackUnknown}},
		{"broadcast_confirm", Callback{Kind: CallbackBroadcastConfirm}},
		{"broadcast_cancel", Callback{Kind: CallbackBroadcastCancel}},
		{"broadcast_vip", Callback{Kind: CallbackBroadcastAudience, Audience: models.AudienceVIP}},
		{"broadcast_everyone", Callback{Kind: CallbackUnknown}},
		{"", Callback{Kind: CallbackUnknown}},
		{"something", Callback{Kind: CallbackUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			tt.want.Raw = tt.data
			assert.Equal(t, tt.want, ParseCallback(tt.data))
		})
	}
}

func TestMenuType(t *testing.T) {
	assert.Equal(t, "trading", MenuType(ScreenCopyTrades))
	assert.Equal(t, "vip", MenuType(ScreenPrivateSignals))
	assert.Equal(t, "registration", MenuType(ScreenPocketOption))
	assert.Equal(t, "unknown", MenuType("nope"))
}

func TestCallbackBuilders_RoundTrip(t *testing.T) {
	for _, a := range models.Audiences {
		cb := ParseCallback(audienceCallback(a))
		assert.Equal(t, CallbackBroadcastAudience, cb.Kind)
		assert.Equal(t, a, cb.Audience)
	}

	cb := ParseCallback(pageCallback(AdminLogs, 12))
	assert.Equal(t, AdminLogs, cb.Screen)
	assert.Equal(t, 12, cb.Page)

	assert.Equal(t, 4, ParseCallback(faqCallback(4)).FAQ)
}

func TestCallbackKindString(t *testing.T) {
	assert.Equal(t, "broadcast_audience", CallbackBroadcastAudience.String())
	assert.Equal(t, "unknown", CallbackKind(99).String())
}

func TestTelegramLink(t *testing.T) {
	assert.Equal(t, "https://t.me/signals", telegramLink("@signals"))
	assert.Equal(t, "https://t.me/signals", telegramLink("signals"))
}
