package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"signalbot/internal/domain"
	"signalbot/internal/events"
	"signalbot/internal/metrics"
	"signalbot/internal/models"
	"signalbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyAudience        = errors.New("broadcast audience is empty")
	ErrNoBroadcastSession   = errors.New("no broadcast in progress")
	ErrEmptyBroadcast       = errors.New("broadcast message has no content")
	ErrUnknownAudience      = errors.New("unknown broadcast audience")
	ErrNotAwaitingBroadcast = errors.New("admin is not composing a broadcast")
)

// Исход доставки одному получателю.
const (
	OutcomeSent         = "sent"
	OutcomeBlocked      = "blocked"
	OutcomeChatNotFound = "chat_not_found"
	OutcomeOther        = "other"
)

// Подписи вложений в превью.
const (
	MediaPhoto    = "photo"
	MediaVideo    = "video"
	MediaDocument = "document"
)

type broadcastStore interface {
	domain.AuditLogger
	CountAudience(ctx context.Context, audience models.Audience) (int, error)
	AudienceIDs(ctx context.Context, audience models.Audience) ([]int64, error)
}

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// broadcastSession черновик рассылки одного администратора.
type broadcastSession struct {
	audience  models.Audience
	chatID    int64
	messageID int
	payload   *models.BroadcastPayload
}

// BroadcastService ведёт черновики рассылок и запускает фоновые задания.
type BroadcastService struct {
	store  broadcastStore
	state  domain.StateManager
	sender messageSender
	bus    domain.EventPublisher
	logger *zerolog.Logger

	rootCtx context.Context
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	sessions map[int64]*broadcastSession
	jobs     map[string]*models.BroadcastJob
	finished []string
	retain   int
	wg       sync.WaitGroup
}

// NewBroadcastService rootCtx ограничивает жизнь фоновых рассылок.
func NewBroadcastService(
	rootCtx context.Context,
	store broadcastStore,
	state domain.StateManager,
	sender messageSender,
	bus domain.EventPublisher,
	logger *zerolog.Logger,
) *BroadcastService {
	return &BroadcastService{
		store:    store,
		state:    state,
		sender:   sender,
		bus:      bus,
		logger:   logger,
		rootCtx:  rootCtx,
		now:      time.Now,
		sleep:    worker.Sleep,
		sessions: make(map[int64]*broadcastSession),
		jobs:     make(map[string]*models.BroadcastJob),
		retain:   models.BroadcastJobsRetained,
	}
}

// SelectAudience открывает черновик, если в сегменте есть получатели.
func (s *BroadcastService) SelectAudience(ctx context.Context, adminID int64, audience models.Audience, chatID int64, messageID int) (int, error) {
	if !audience.Valid() {
		return 0, ErrUnknownAudience
	}

	count, err := s.store.CountAudience(ctx, audience)
	if err != nil {
		return 0, fmt.Errorf("count audience: %w", err)
	}
	if count == 0 {
		return 0, ErrEmptyAudience
	}

	s.mu.Lock()
	s.sessions[adminID] = &broadcastSession{audience: audience, chatID: chatID, messageID: messageID}
	s.mu.Unlock()

	if err := s.state.SetUserState(ctx, adminID, models.StateWaitingBroadcastText, map[string]interface{}{
		models.StateKeyAudience: string(audience),
	}); err != nil {
		return 0, err
	}

	s.logger.Info().Int64("admin_id", adminID).Str("audience", string(audience)).Int("count", count).Msg("Broadcast audience selected")
	return count, nil
}

// CaptureContent принимает следующее сообщение администратора как тело рассылки.
func (s *BroadcastService) CaptureContent(ctx context.Context, adminID int64, msg *tgbotapi.Message) (*models.BroadcastPreview, error) {
	state, err := s.state.GetUserState(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.CurrentStep != models.StateWaitingBroadcastText {
		return nil, ErrNotAwaitingBroadcast
	}

	s.mu.Lock()
	session, ok := s.sessions[adminID]
	s.mu.Unlock()
	// состояние могло пережить перезапуск в Redis, а черновик нет
	if !ok || string(session.audience) != state.GetString(models.StateKeyAudience) {
		return nil, ErrNoBroadcastSession
	}

	payload := payloadFromMessage(msg)
	if payload.Text == "" && !payload.HasMedia() {
		return nil, ErrEmptyBroadcast
	}

	count, err := s.store.CountAudience(ctx, session.audience)
	if err != nil {
		return nil, fmt.Errorf("count audience: %w", err)
	}

	s.mu.Lock()
	session.payload = payload
	s.mu.Unlock()

	if err := s.state.SetUserState(ctx, adminID, models.StateWaitingBroadcastConfirm, map[string]interface{}{
		models.StateKeyAudience: string(session.audience),
	}); err != nil {
		return nil, err
	}

	return buildPreview(session.audience, payload, count), nil
}

// Confirm запускает рассылку в фоне и сразу сбрасывает черновик.
func (s *BroadcastService) Confirm(ctx context.Context, adminID, adminChatID int64) (*models.BroadcastJob, error) {
	s.mu.Lock()
	session, ok := s.sessions[adminID]
	s.mu.Unlock()
	if !ok || session.payload == nil {
		return nil, ErrNoBroadcastSession
	}

	ids, err := s.store.AudienceIDs(ctx, session.audience)
	if err != nil {
		return nil, fmt.Errorf("resolve audience: %w", err)
	}
	recipients, invalid := ValidateRecipients(ids)

	s.mu.Lock()
	delete(s.sessions, adminID)
	s.mu.Unlock()
	if err := s.state.ClearUserState(ctx, adminID); err != nil {
		s.logger.Warn().Err(err).Int64("admin_id", adminID).Msg("Failed to clear admin state")
	}

	if len(recipients) == 0 {
		return nil, ErrEmptyAudience
	}

	job := models.NewBroadcastJob(uuid.NewString(), adminID, adminChatID, session.audience, *session.payload, recipients, invalid)
	jobCtx, cancel := context.WithCancel(s.rootCtx)
	job.Start(cancel, s.now())

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(jobCtx, job)
	}()

	s.logger.Info().
		Str("job_id", job.ID).
		Int64("admin_id", adminID).
		Str("audience", string(job.Audience)).
		Int("recipients", len(recipients)).
		Int("invalid", invalid).
		Msg("Broadcast started")
	return job, nil
}

// Cancel сбрасывает черновик до запуска рассылки.
func (s *BroadcastService) Cancel(ctx context.Context, adminID int64) error {
	s.mu.Lock()
	delete(s.sessions, adminID)
	s.mu.Unlock()
	return s.state.ClearUserState(ctx, adminID)
}

func (s *BroadcastService) Session(adminID int64) (models.Audience, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[adminID]
	if !ok {
		return "", false
	}
	return session.audience, true
}

func (s *BroadcastService) Job(id string) (*models.BroadcastJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Jobs снимки всех заданий, старые сначала.
func (s *BroadcastService) Jobs() []models.BroadcastJobSnapshot {
	s.mu.Lock()
	snapshots := make([]models.BroadcastJobSnapshot, 0, len(s.jobs))
	for _, job := range s.jobs {
		snapshots = append(snapshots, job.Snapshot())
	}
	s.mu.Unlock()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].StartedAt.Before(snapshots[j].StartedAt)
	})
	return snapshots
}

func (s *BroadcastService) CancelJob(id string) bool {
	job, ok := s.Job(id)
	if !ok {
		return false
	}
	return job.Cancel()
}

// Wait ждёт завершения всех запущенных рассылок.
func (s *BroadcastService) Wait() {
	s.wg.Wait()
}

func (s *BroadcastService) run(ctx context.Context, job *models.BroadcastJob) {
	logger := s.logger.With().Str("job_id", job.ID).Logger()
	started := s.now()
	status := models.BroadcastCompleted

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Broadcast job panicked")
			status = models.BroadcastAborted
		}
		job.Finish(status, s.now())
		s.retire(job.ID)
		s.finish(job, status, s.now().Sub(started), &logger)
	}()

	for _, userID := range job.Recipients {
		if ctx.Err() != nil {
			status = models.BroadcastAborted
			break
		}

		outcome := OutcomeSent
		if _, err := s.sender.Send(recipientMessage(userID, &job.Payload)); err != nil {
			outcome = ClassifySendError(err)
			logger.Debug().Err(err).Int64("user_id", userID).Str("outcome", outcome).Msg("Broadcast delivery failed")
		}
		metrics.IncBroadcast(outcome)

		stats := job.Update(func(st *models.BroadcastStats) {
			switch outcome {
			case OutcomeSent:
				st.Sent++
			case OutcomeBlocked:
				st.Errors++
				st.Blocked++
			case OutcomeChatNotFound:
				st.Errors++
				st.NotFound++
			default:
				st.Errors++
			}
		})

		if outcome != OutcomeSent {
			continue
		}
		if stats.Sent%models.BroadcastProgressEvery == 0 {
			s.sendProgress(job, stats, &logger)
		}
		if stats.Sent%models.BroadcastBatchSize == 0 {
			if err := s.sleep(ctx, models.BroadcastBatchPause); err != nil {
				status = models.BroadcastAborted
				break
			}
		}
	}
}

func (s *BroadcastService) sendProgress(job *models.BroadcastJob, stats models.BroadcastStats, logger *zerolog.Logger) {
	text := fmt.Sprintf("📤 Прогресс рассылки: %d/%d отправлено, ошибок: %d", stats.Sent, stats.Total, stats.Errors)
	if _, err := s.sender.Send(tgbotapi.NewMessage(job.AdminChatID, text)); err != nil {
		logger.Debug().Err(err).Msg("Progress update dropped")
	}
}

// retire держит в реестре только последние s.retain завершённых заданий.
func (s *BroadcastService) retire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, id)
	for len(s.finished) > s.retain {
		delete(s.jobs, s.finished[0])
		s.finished = s.finished[1:]
	}
}

func (s *BroadcastService) finish(job *models.BroadcastJob, status models.BroadcastStatus, elapsed time.Duration, logger *zerolog.Logger) {
	stats := job.Snapshot().Stats
	seconds := int(elapsed.Seconds())

	logger.Info().
		Str("status", string(status)).
		Int("sent", stats.Sent).
		Int("errors", stats.Errors).
		Int("blocked", stats.Blocked).
		Int("invalid", stats.Invalid).
		Int("elapsed_s", seconds).
		Msg("Broadcast finished")

	header := "✅ *Рассылка завершена*"
	if status == models.BroadcastAborted {
		header = "⛔️ *Рассылка прервана*"
	}
	summary := fmt.Sprintf(
		"%s\n\n👥 Получателей: %d\n📨 Отправлено: %d\n❌ Ошибок: %d\n🚫 Заблокировали: %d\n⚠️ Некорректных ID: %d\n⏱ Время: %d сек.",
		header, stats.Total, stats.Sent, stats.Errors, stats.Blocked, stats.Invalid, seconds,
	)
	msg := tgbotapi.NewMessage(job.AdminChatID, summary)
	msg.ParseMode = models.ParseModeMarkdown
	if _, err := s.sender.Send(msg); err != nil {
		logger.Warn().Err(err).Msg("Failed to send broadcast summary")
	}

	auditCtx := context.WithoutCancel(s.rootCtx)
	if err := s.store.LogAction(auditCtx, job.AdminID, models.ActionBroadcastCompleted, map[string]interface{}{
		"job_id":          job.ID,
		"audience":        string(job.Audience),
		"status":          string(status),
		"target_users":    stats.Total,
		"sent_count":      stats.Sent,
		"error_count":     stats.Errors,
		"blocked_count":   stats.Blocked,
		"not_found_count": stats.NotFound,
		"invalid_count":   stats.Invalid,
		"elapsed_seconds": seconds,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to audit broadcast")
	}

	if s.bus != nil {
		if err := s.bus.PublishJSON(events.EventBroadcastFinished, events.BroadcastFinishedPayload{
			JobID:       job.ID,
			AdminChatID: job.AdminChatID,
			Status:      string(status),
			Total:       stats.Total,
			Sent:        stats.Sent,
			Errors:      stats.Errors,
			Blocked:     stats.Blocked,
			NotFound:    stats.NotFound,
			Invalid:     stats.Invalid,
		}); err != nil {
			logger.Warn().Err(err).Msg("Broadcast finished event failed")
		}
	}
}

// ValidateRecipients отбрасывает id, которые не могут быть пользователями.
func ValidateRecipients(ids []int64) ([]int64, int) {
	valid := make([]int64, 0, len(ids))
	invalid := 0
	for _, id := range ids {
		if id <= 0 || id > models.MaxTelegramUserID {
			invalid++
			continue
		}
		valid = append(valid, id)
	}
	return valid, invalid
}

// ClassifySendError раскладывает ошибку доставки по исходам.
func ClassifySendError(err error) string {
	code := 0
	msg := strings.ToLower(err.Error())

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		code = apiErr.Code
		msg = strings.ToLower(apiErr.Message)
	}

	switch {
	case code == 403 || strings.Contains(msg, "blocked") || strings.Contains(msg, "deactivated"):
		return OutcomeBlocked
	case code == 400 && strings.Contains(msg, "not found"):
		return OutcomeChatNotFound
	case strings.Contains(msg, "chat not found"):
		return OutcomeChatNotFound
	default:
		return OutcomeOther
	}
}

func payloadFromMessage(msg *tgbotapi.Message) *models.BroadcastPayload {
	payload := &models.BroadcastPayload{
		Text:        msg.Text,
		Caption:     msg.Caption,
		ReplyMarkup: msg.ReplyMarkup,
	}
	switch {
	case len(msg.Photo) > 0:
		payload.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		payload.VideoID = msg.Video.FileID
	case msg.Document != nil:
		payload.DocumentID = msg.Document.FileID
	}
	return payload
}

func buildPreview(audience models.Audience, payload *models.BroadcastPayload, count int) *models.BroadcastPreview {
	text := payload.Text
	if text == "" {
		text = payload.Caption
	}

	preview := &models.BroadcastPreview{
		Audience:    audience,
		Text:        truncateRunes(text, models.BroadcastPreviewLimit),
		ButtonCount: payload.ButtonCount(),
		TargetCount: count,
	}
	switch {
	case payload.PhotoID != "":
		preview.MediaLabel = MediaPhoto
	case payload.VideoID != "":
		preview.MediaLabel = MediaVideo
	case payload.DocumentID != "":
		preview.MediaLabel = MediaDocument
	}
	return preview
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

func recipientMessage(chatID int64, p *models.BroadcastPayload) tgbotapi.Chattable {
	switch {
	case p.PhotoID != "":
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(p.PhotoID))
		photo.Caption = p.Caption
		photo.ParseMode = models.ParseModeMarkdown
		if p.ReplyMarkup != nil {
			photo.ReplyMarkup = *p.ReplyMarkup
		}
		return photo
	case p.VideoID != "":
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(p.VideoID))
		video.Caption = p.Caption
		video.ParseMode = models.ParseModeMarkdown
		if p.ReplyMarkup != nil {
			video.ReplyMarkup = *p.ReplyMarkup
		}
		return video
	case p.DocumentID != "":
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(p.DocumentID))
		doc.Caption = p.Caption
		doc.ParseMode = models.ParseModeMarkdown
		if p.ReplyMarkup != nil {
			doc.ReplyMarkup = *p.ReplyMarkup
		}
		return doc
	default:
		msg := tgbotapi.NewMessage(chatID, p.Text)
		msg.ParseMode = models.ParseModeMarkdown
		if p.ReplyMarkup != nil {
			msg.ReplyMarkup = *p.ReplyMarkup
		}
		return msg
	}
}
