package models

import "time"

// StateKeyAudience аудитория черновика рассылки в данных состояния администратора.
const StateKeyAudience = "audience"

// UserState хранит шаг диалога пользователя и временные данные к нему.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data,omitempty"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// GetString строковое значение из TempData, "" если ключа нет или тип другой.
func (s *UserState) GetString(key string) string {
	if s == nil || s.TempData == nil {
		return ""
	}
	str, _ := s.TempData[key].(string)
	return str
}

// Expired сообщает, простаивало ли состояние дольше ttl.
func (s *UserState) Expired(now time.Time, ttl time.Duration) bool {
	if s.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
