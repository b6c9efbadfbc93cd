package bot

import (
	"strconv"
	"strings"

	"signalbot/internal/models"
)

// CallbackKind вид нажатой inline-кнопки.
type CallbackKind int

const (
	CallbackUnknown CallbackKind = iota
	CallbackNoop
	CallbackLanguage
	CallbackCheckSubscription
	CallbackSubscriptionHelp
	CallbackMenu
	CallbackFAQItem
	CallbackAdmin
	CallbackBroadcastAudience
	CallbackBroadcastConfirm
	CallbackBroadcastCancel
)

var callbackKindNames = map[CallbackKind]string{
	CallbackUnknown:           "unknown",
	CallbackNoop:              "noop",
	CallbackLanguage:          "language",
	CallbackCheckSubscription: "check_subscription",
	CallbackSubscriptionHelp:  "subscription_help",
	CallbackMenu:              "menu",
	CallbackFAQItem:           "faq_item",
	CallbackAdmin:             "admin",
	CallbackBroadcastAudience: "broadcast_audience",
	CallbackBroadcastConfirm:  "broadcast_confirm",
	CallbackBroadcastCancel:   "broadcast_cancel",
}

func (k CallbackKind) String() string {
	if name, ok := callbackKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Экраны пользовательского меню.
const (
	ScreenMainMenu       = "main_menu"
	ScreenCopyTrades     = "copy_trades"
	ScreenPrivateSignals = "private_signals"
	ScreenFreeGuide      = "free_guide"
	ScreenAboutStrategy  = "about_strategy"
	ScreenVIPBonus       = "vip_bonus"
	ScreenFAQ            = "faq"
	ScreenPocketOption   = "pocket_option"
	ScreenSettings       = "settings"
	ScreenChangeLanguage = "change_language"
)

// Экраны админки. Для списков страница идёт суффиксом: admin_users_2.
const (
	AdminMenu      = "admin_menu"
	AdminStats     = "admin_stats"
	AdminUsers     = "admin_users"
	AdminLogs      = "admin_logs"
	AdminSettings  = "admin_settings"
	AdminBroadcast = "admin_broadcast"
	AdminJobs      = "admin_jobs"
	AdminExport    = "admin_export"
)

const (
	cbNoop              = "noop"
	cbLanguagePrefix    = "lang_"
	cbCheckSubscription = "check_subscription"
	cbSubscriptionHelp  = "subscription_help"
	cbFAQPrefix         = "faq_"
	cbAdminPrefix       = "admin_"
	cbBroadcastPrefix   = "broadcast_"
	cbBroadcastConfirm  = "broadcast_confirm"
	cbBroadcastCancel   = "broadcast_cancel"
)

var menuScreens = map[string]string{
	ScreenCopyTrades:     "trading",
	ScreenPrivateSignals: "vip",
	ScreenFreeGuide:      "education",
	ScreenAboutStrategy:  "info",
	ScreenVIPBonus:       "bonus",
	ScreenFAQ:            "info",
	ScreenPocketOption:   "registration",
	ScreenSettings:       "settings",
	ScreenChangeLanguage: "settings",
	ScreenMainMenu:       "navigation",
}

var adminScreens = map[string]bool{
	AdminMenu: true, AdminStats: true, AdminUsers: true, AdminLogs: true,
	AdminSettings: true, AdminBroadcast: true, AdminJobs: true, AdminExport: true,
}

// Callback разобранные данные кнопки. Заполнены только поля своего вида.
type Callback struct {
	Kind     CallbackKind
	Raw      string
	Language string
	Screen   string
	Page     int
	FAQ      int
	Audience models.Audience
}

// ParseCallback разбирает callback data один раз на входе в роутер.
func ParseCallback(data string) Callback {
	cb := Callback{Kind: CallbackUnknown, Raw: data}

	switch {
	case data == cbNoop:
		cb.Kind = CallbackNoop

	case strings.HasPrefix(data, cbLanguagePrefix):
		cb.Kind = CallbackLanguage
		cb.Language = strings.TrimPrefix(data, cbLanguagePrefix)

	case data == cbCheckSubscription:
		cb.Kind = CallbackCheckSubscription

	case data == cbSubscriptionHelp:
		cb.Kind = CallbackSubscriptionHelp

	case data == cbBroadcastConfirm:
		cb.Kind = CallbackBroadcastConfirm

	case data == cbBroadcastCancel:
		cb.Kind = CallbackBroadcastCancel

	case strings.HasPrefix(data, cbBroadcastPrefix):
		audience := models.Audience(strings.TrimPrefix(data, cbBroadcastPrefix))
		if audience.Valid() {
			cb.Kind = CallbackBroadcastAudience
			cb.Audience = audience
		}

	case strings.HasPrefix(data, cbAdminPrefix):
		screen, page := splitPage(data)
		if adminScreens[screen] {
			cb.Kind = CallbackAdmin
			cb.Screen = screen
			cb.Page = page
		}

	case strings.HasPrefix(data, cbFAQPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(data, cbFAQPrefix))
		if err == nil && n > 0 {
			cb.Kind = CallbackFAQItem
			cb.Screen = ScreenFAQ
			cb.FAQ = n
		}

	default:
		if _, ok := menuScreens[data]; ok {
			cb.Kind = CallbackMenu
			cb.Screen = data
		}
	}

	return cb
}

// MenuType категория экрана для аналитики menu_interaction.
func MenuType(screen string) string {
	if t, ok := menuScreens[screen]; ok {
		return t
	}
	return "unknown"
}

func pageCallback(screen string, page int) string {
	return screen + "_" + strconv.Itoa(page)
}

func audienceCallback(a models.Audience) string {
	return cbBroadcastPrefix + string(a)
}

func faqCallback(n int) string {
	return cbFAQPrefix + strconv.Itoa(n)
}

// splitPage отделяет числовой суффикс: admin_users_3 -> admin_users, 3.
func splitPage(data string) (string, int) {
	idx := strings.LastIndex(data, "_")
	if idx < 0 {
		return data, 0
	}
	page, err := strconv.Atoi(data[idx+1:])
	if err != nil || page < 0 {
		return data, 0
	}
	return data[:idx], page
}
