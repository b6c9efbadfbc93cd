package models

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Audience сегмент пользователей для рассылки.
type Audience string

const (
	AudienceAll        Audience = "all"
	AudiencePhone      Audience = "phone"
	AudienceSubscribed Audience = "subscribed"
	AudienceRegistered Audience = "registered"
	AudienceDeposit    Audience = "deposit"
	AudienceVIP        Audience = "vip"
)

// Audiences в порядке отображения в админке.
var Audiences = []Audience{
	AudienceAll, AudiencePhone, AudienceSubscribed, AudienceRegistered, AudienceDeposit, AudienceVIP,
}

func (a Audience) Valid() bool {
	for _, known := range Audiences {
		if a == known {
			return true
		}
	}
	return false
}

// BroadcastPayload содержимое рассылки, снятое с сообщения администратора.
type BroadcastPayload struct {
	Text        string
	PhotoID     string
	VideoID     string
	DocumentID  string
	Caption     string
	ReplyMarkup *tgbotapi.InlineKeyboardMarkup
}

func (p *BroadcastPayload) HasMedia() bool {
	return p.PhotoID != "" || p.VideoID != "" || p.DocumentID != ""
}

func (p *BroadcastPayload) ButtonCount() int {
	if p.ReplyMarkup == nil {
		return 0
	}
	n := 0
	for _, row := range p.ReplyMarkup.InlineKeyboard {
		n += len(row)
	}
	return n
}

// BroadcastPreview то, что показывается администратору перед подтверждением.
type BroadcastPreview struct {
	Audience    Audience
	Text        string
	MediaLabel  string
	ButtonCount int
	TargetCount int
}

type BroadcastStatus string

const (
	BroadcastPending   BroadcastStatus = "pending"
	BroadcastRunning   BroadcastStatus = "running"
	BroadcastCompleted BroadcastStatus = "completed"
	BroadcastAborted   BroadcastStatus = "aborted"
)

// BroadcastStats счётчики рассылки. Blocked и NotFound входят в Errors.
type BroadcastStats struct {
	Total    int `json:"target_users"`
	Sent     int `json:"sent_count"`
	Errors   int `json:"error_count"`
	Blocked  int `json:"blocked_count"`
	NotFound int `json:"not_found_count"`
	Invalid  int `json:"invalid_count"`
}

// BroadcastJob фоновая рассылка. Поля счётчиков меняет только исполнитель.
type BroadcastJob struct {
	ID          string
	AdminID     int64
	AdminChatID int64
	Audience    Audience
	Payload     BroadcastPayload
	Recipients  []int64

	mu         sync.Mutex
	status     BroadcastStatus
	stats      BroadcastStats
	startedAt  time.Time
	finishedAt time.Time
	cancel     context.CancelFunc
}

// BroadcastJobSnapshot копия состояния задания для чтения из других горутин.
type BroadcastJobSnapshot struct {
	ID         string
	AdminID    int64
	Audience   Audience
	Status     BroadcastStatus
	Stats      BroadcastStats
	StartedAt  time.Time
	FinishedAt time.Time
}

func NewBroadcastJob(id string, adminID, adminChatID int64, audience Audience, payload BroadcastPayload, recipients []int64, invalid int) *BroadcastJob {
	return &BroadcastJob{
		ID:          id,
		AdminID:     adminID,
		AdminChatID: adminChatID,
		Audience:    audience,
		Payload:     payload,
		Recipients:  recipients,
		status:      BroadcastPending,
		stats:       BroadcastStats{Total: len(recipients), Invalid: invalid},
	}
}

func (j *BroadcastJob) Start(cancel context.CancelFunc, now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancel = cancel
	j.status = BroadcastRunning
	j.startedAt = now
}

// Cancel останавливает рассылку, если она ещё идёт.
func (j *BroadcastJob) Cancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != BroadcastRunning && j.status != BroadcastPending {
		return false
	}
	if j.cancel != nil {
		j.cancel()
	}
	return true
}

// Finish фиксирует итог и освобождает список получателей, статистика остаётся.
func (j *BroadcastJob) Finish(status BroadcastStatus, now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	j.finishedAt = now
	j.Recipients = nil
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *BroadcastJob) Update(fn func(stats *BroadcastStats)) BroadcastStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn(&j.stats)
	return j.stats
}

func (j *BroadcastJob) Snapshot() BroadcastJobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return BroadcastJobSnapshot{
		ID:         j.ID,
		AdminID:    j.AdminID,
		Audience:   j.Audience,
		Status:     j.status,
		Stats:      j.stats,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
	}
}
