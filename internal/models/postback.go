package models

import "time"

// PostbackEvent тип события от партнёрской сети.
type PostbackEvent string

const (
	PostbackRegistration PostbackEvent = "registration"
	PostbackFirstDeposit PostbackEvent = "first_deposit"
	PostbackDeposit      PostbackEvent = "deposit"
	PostbackUnknown      PostbackEvent = "unknown"
)

const PartnerPocketOption = "pocketoption"

// PostbackResult ответ на успешно обработанный postback.
type PostbackResult struct {
	Status      string        `json:"status"`
	Event       PostbackEvent `json:"event"`
	UserID      int64         `json:"user_id"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// PostbackNotice событие для бота: что сообщить пользователю после postback.
type PostbackNotice struct {
	UserID   int64         `json:"user_id"`
	Event    PostbackEvent `json:"event"`
	Amount   float64       `json:"amount,omitempty"`
	PlayerID string        `json:"player_id,omitempty"`
	Language string        `json:"language"`
}
