package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"signalbot/internal/events"
	"signalbot/internal/i18n"
	"signalbot/internal/models"
)

// SettingLastBroadcast ключ настройки с итогом последней рассылки.
const SettingLastBroadcast = "last_broadcast"

const notifyTimeout = 10 * time.Second

func (b *Bot) subscribeEvents() {
	b.eventBus.Subscribe(events.EventPostbackRegistration, b.onRegistration)
	b.eventBus.Subscribe(events.EventPostbackFirstDeposit, b.onFirstDeposit)
	b.eventBus.Subscribe(events.EventBroadcastFinished, b.onBroadcastFinished)
}

func (b *Bot) onRegistration(event *events.Event) error {
	var notice models.PostbackNotice
	if err := event.Decode(&notice); err != nil {
		return fmt.Errorf("decode registration notice: %w", err)
	}

	lang := i18n.Normalize(notice.Language)
	if _, err := b.tgService.SendMessage(notice.UserID, i18n.T(lang, "registration_confirmed")); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", notice.UserID).Msg("Failed to notify registration")
		return err
	}
	return nil
}

// onFirstDeposit сообщает о VIP и, если задан VIP канал, выдаёт одноразовую ссылку.
func (b *Bot) onFirstDeposit(event *events.Event) error {
	var notice models.PostbackNotice
	if err := event.Decode(&notice); err != nil {
		return fmt.Errorf("decode deposit notice: %w", err)
	}

	lang := i18n.Normalize(notice.Language)
	text := i18n.T(lang, "vip_unlocked", i18n.Params{"amount": fmt.Sprintf("%.2f", notice.Amount)})
	if _, err := b.tgService.SendMarkdown(notice.UserID, text); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", notice.UserID).Msg("Failed to notify VIP unlock")
		return err
	}

	channelID := b.config.Telegram.VIPChannelID
	if channelID == 0 {
		return nil
	}

	link, err := b.tgService.CreateInviteLink(channelID, models.VIPInviteTTL, 1)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", notice.UserID).Msg("Failed to create VIP invite link")
		return err
	}
	if _, err := b.tgService.SendMarkdown(notice.UserID, i18n.T(lang, "vip_invite", i18n.Params{"link": escapeMarkdown(link)})); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", notice.UserID).Msg("Failed to send VIP invite")
		return err
	}
	return nil
}

func (b *Bot) onBroadcastFinished(event *events.Event) error {
	var payload events.BroadcastFinishedPayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("decode broadcast result: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := b.userService.SetSetting(ctx, SettingLastBroadcast, string(raw)); err != nil {
		b.logger.Error().Err(err).Str("job_id", payload.JobID).Msg("Failed to store broadcast result")
		return err
	}
	return nil
}
