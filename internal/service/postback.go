package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"signalbot/internal/database"
	"signalbot/internal/domain"
	"signalbot/internal/events"
	"signalbot/internal/metrics"
	"signalbot/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrMissingClickID   = errors.New("missing required parameters")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUserNotFound     = errors.New("user not found")
)

// Поля postback от Pocket Option.
const (
	ParamClickID   = "clickid"
	ParamPlayerID  = "playerid"
	ParamSum       = "sum"
	ParamReg       = "reg"
	ParamFTD       = "ftd"
	ParamDep       = "dep"
	ParamSignature = "signature"
	ParamHash      = "hash"
)

// RequiredPostbackParams без них postback отклоняется.
var RequiredPostbackParams = []string{ParamClickID}

type postbackStore interface {
	domain.AuditLogger
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	MarkRegistered(ctx context.Context, telegramID int64, partnerID string, at time.Time) error
	MarkFirstDeposit(ctx context.Context, telegramID int64, amount float64, at time.Time) error
}

// PostbackService сопоставляет события партнёрской сети с пользователями бота.
type PostbackService struct {
	store  postbackStore
	bus    domain.EventPublisher
	secret string
	now    func() time.Time
	logger *zerolog.Logger
}

func NewPostbackService(store postbackStore, bus domain.EventPublisher, secret string, logger *zerolog.Logger) *PostbackService {
	return &PostbackService{
		store:  store,
		bus:    bus,
		secret: secret,
		now:    time.Now,
		logger: logger,
	}
}

// MissingParams обязательные поля, которых нет в запросе.
func MissingParams(params map[string]string) []string {
	var missing []string
	for _, name := range RequiredPostbackParams {
		if strings.TrimSpace(params[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Handle обрабатывает один postback. Изменения, сделанные до ошибки, не откатываются.
func (s *PostbackService) Handle(ctx context.Context, params map[string]string) (*models.PostbackResult, error) {
	if len(MissingParams(params)) > 0 {
		metrics.IncPostback(string(models.PostbackUnknown), "missing_params")
		return nil, ErrMissingClickID
	}

	if s.secret != "" && !VerifySignature(params, s.secret) {
		metrics.IncPostback(string(models.PostbackUnknown), "bad_signature")
		return nil, ErrInvalidSignature
	}

	clickID := params[ParamClickID]
	user, err := s.resolveUser(ctx, clickID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.IncPostback(string(models.PostbackUnknown), "user_not_found")
		}
		return nil, err
	}

	event := ClassifyPostback(params)
	now := s.now().UTC()
	logger := s.logger.With().Int64("user_id", user.TelegramID).Str("event", string(event)).Logger()

	switch event {
	case models.PostbackRegistration:
		if err := s.store.MarkRegistered(ctx, user.TelegramID, params[ParamPlayerID], now); err != nil {
			return nil, fmt.Errorf("mark registered: %w", err)
		}
		s.audit(ctx, user.TelegramID, models.ActionRegistration, map[string]interface{}{
			"playerid": params[ParamPlayerID],
		})
		s.notify(events.EventPostbackRegistration, models.PostbackNotice{
			UserID:   user.TelegramID,
			Event:    event,
			PlayerID: params[ParamPlayerID],
			Language: user.Language,
		}, &logger)

	case models.PostbackFirstDeposit:
		amount := parseAmount(params[ParamSum])
		if err := s.store.MarkFirstDeposit(ctx, user.TelegramID, amount, now); err != nil {
			return nil, fmt.Errorf("mark first deposit: %w", err)
		}
		s.audit(ctx, user.TelegramID, models.ActionFirstDeposit, map[string]interface{}{
			"amount":   amount,
			"playerid": params[ParamPlayerID],
		})
		s.notify(events.EventPostbackFirstDeposit, models.PostbackNotice{
			UserID:   user.TelegramID,
			Event:    event,
			Amount:   amount,
			PlayerID: params[ParamPlayerID],
			Language: user.Language,
		}, &logger)

	case models.PostbackDeposit:
		s.audit(ctx, user.TelegramID, models.ActionRepeatDeposit, map[string]interface{}{
			"amount":   parseAmount(params[ParamSum]),
			"playerid": params[ParamPlayerID],
		})
	}

	s.audit(ctx, user.TelegramID, models.ActionPostbackPrefix+string(event), map[string]interface{}{
		"partner":   models.PartnerPocketOption,
		"clickid":   clickID,
		"playerid":  params[ParamPlayerID],
		"sum":       params[ParamSum],
		"eventData": params,
	})
	metrics.IncPostback(string(event), "ok")
	logger.Info().Msg("Postback processed")

	return &models.PostbackResult{
		Status:      "success",
		Event:       event,
		UserID:      user.TelegramID,
		ProcessedAt: now,
	}, nil
}

func (s *PostbackService) resolveUser(ctx context.Context, clickID string) (*models.User, error) {
	telegramID, err := strconv.ParseInt(strings.TrimSpace(clickID), 10, 64)
	if err != nil {
		s.logger.Warn().Str("clickid", clickID).Msg("Could not parse telegram id from clickid")
		return nil, ErrUserNotFound
	}

	user, err := s.store.GetUser(ctx, telegramID)
	if errors.Is(err, database.ErrNotFound) {
		s.logger.Warn().Str("clickid", clickID).Msg("User not found for clickid")
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *PostbackService) audit(ctx context.Context, userID int64, action string, details interface{}) {
	if err := s.store.LogAction(ctx, userID, action, details); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("Failed to audit postback")
	}
}

// notify уведомление пользователя не влияет на ответ партнёру.
func (s *PostbackService) notify(eventType string, notice models.PostbackNotice, logger *zerolog.Logger) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, notice); err != nil {
		logger.Warn().Err(err).Msg("Postback notification failed")
	}
}

// ClassifyPostback маркеры взаимоисключающие, приоритет reg > ftd > dep.
func ClassifyPostback(params map[string]string) models.PostbackEvent {
	switch {
	case markerSet(params[ParamReg]):
		return models.PostbackRegistration
	case markerSet(params[ParamFTD]):
		return models.PostbackFirstDeposit
	case markerSet(params[ParamDep]):
		return models.PostbackDeposit
	default:
		return models.PostbackUnknown
	}
}

// markerSet ложные значения из JSON тела (0, false, null) маркер не выставляют.
func markerSet(v string) bool {
	switch v {
	case "", "0", "false", "null":
		return false
	default:
		return true
	}
}

// SignPostback HMAC-SHA256 от отсортированных пар key=value без signature и hash.
func SignPostback(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamSignature || k == ParamHash {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature принимает подпись из поля signature или hash.
func VerifySignature(params map[string]string, secret string) bool {
	expected := []byte(SignPostback(params, secret))
	for _, field := range []string{ParamSignature, ParamHash} {
		got := strings.ToLower(params[field])
		if got != "" && hmac.Equal([]byte(got), expected) {
			return true
		}
	}
	return false
}

func parseAmount(raw string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount
}
