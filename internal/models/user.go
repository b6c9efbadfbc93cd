package models

import (
	"encoding/json"
	"time"
)

// Статусы пользователя у партнёра.
const (
	PartnerStatusNone       = ""
	PartnerStatusRegistered = "registered"
	PartnerStatusDeposited  = "deposited"
)

type User struct {
	TelegramID          int64      `json:"telegram_id"`
	Username            string     `json:"username"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Phone               string     `json:"phone,omitempty"`
	Language            string     `json:"language"`
	LanguageSelected    bool       `json:"language_selected"`
	IsSubscribed        bool       `json:"is_subscribed"`
	IsRegistered        bool       `json:"is_registered"`
	HasDeposit          bool       `json:"has_deposit"`
	VIPStatus           bool       `json:"vip_status"`
	PartnerID           string     `json:"partner_id,omitempty"`
	PartnerStatus       string     `json:"partner_status,omitempty"`
	FirstDepositAmount  float64    `json:"first_deposit_amount"`
	FirstDepositDate    *time.Time `json:"first_deposit_date,omitempty"`
	PartnerRegisteredAt *time.Time `json:"partner_registered_at,omitempty"`
	RegistrationDate    time.Time  `json:"registration_date"`
	LastActivity        time.Time  `json:"last_activity"`
}

// DisplayName возвращает имя для админских списков.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

func (u *User) HasPhone() bool {
	return u.Phone != ""
}

// ActionLog запись журнала действий пользователя.
type ActionLog struct {
	ID         int64           `json:"id"`
	TelegramID int64           `json:"telegram_id"`
	Action     string          `json:"action"`
	Details    json.RawMessage `json:"details,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`

	// Заполняется только в выборке для админки.
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats агрегаты для админской статистики.
type Stats struct {
	TotalUsers      int
	WithPhone       int
	Subscribed      int
	Registered      int
	Deposited       int
	VIP             int
	NewToday        int
	ActiveToday     int
	TotalDeposits   float64
	LogsLast24Hours int
}
