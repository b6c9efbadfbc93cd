package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"signalbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegramSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	resp, _ := args.Get(0).(*tgbotapi.APIResponse)
	return resp, args.Error(1)
}

func (m *mockTelegramSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.UpdatesChannel)
}

func (m *mockTelegramSender) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}

func (m *mockTelegramSender) StopReceivingUpdates() {
	m.Called()
}

func TestTelegramService(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)

	t.Run("SendMessage", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.Text == "hello" && msg.ChatID == 123
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendMessage(123, "hello")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("SendMarkdown", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.ParseMode == models.ParseModeMarkdown
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendMarkdown(123, "*bold*")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("SendWithKeyboardRemove", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			if !ok {
				return false
			}
			_, removed := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
			return removed
		})).Return(tgbotapi.Message{MessageID: 5}, nil).Once()

		sent, err := svc.SendWithKeyboard(123, "bye keyboard", tgbotapi.NewRemoveKeyboard(true))
		assert.NoError(t, err)
		assert.Equal(t, 5, sent.MessageID)
	})

	t.Run("AnswerCallback", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			cb, ok := c.(tgbotapi.CallbackConfig)
			return ok && !cb.ShowAlert
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		err := svc.AnswerCallback("cb123", "ok")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("AnswerCallbackAlert", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			cb, ok := c.(tgbotapi.CallbackConfig)
			return ok && cb.ShowAlert
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		assert.NoError(t, svc.AnswerCallbackAlert("cb124", "slow down"))
	})

	t.Run("DeleteMessage", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			del, ok := c.(tgbotapi.DeleteMessageConfig)
			return ok && del.MessageID == 42 && del.ChatID == 123
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		assert.NoError(t, svc.DeleteMessage(123, 42))
	})
}

func TestTelegramService_GetChatMemberStatus(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)

	member, err := json.Marshal(tgbotapi.ChatMember{Status: "administrator"})
	require.NoError(t, err)

	mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		cfg, ok := c.(tgbotapi.GetChatMemberConfig)
		return ok && cfg.SuperGroupUsername == "@signals" && cfg.UserID == 7
	})).Return(&tgbotapi.APIResponse{Ok: true, Result: member}, nil).Once()

	status, err := svc.GetChatMemberStatus("signals", 7)
	require.NoError(t, err)
	assert.Equal(t, "administrator", status)

	mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		cfg, ok := c.(tgbotapi.GetChatMemberConfig)
		return ok && cfg.ChatID == -100123
	})).Return((*tgbotapi.APIResponse)(nil), &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}).Once()

	_, err = svc.GetChatMemberStatus("-100123", 7)
	var apiErr *tgbotapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Code)
}

func TestTelegramService_CreateInviteLink(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	link, err := json.Marshal(tgbotapi.ChatInviteLink{InviteLink: "https://t.me/+abc"})
	require.NoError(t, err)

	mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		cfg, ok := c.(tgbotapi.CreateChatInviteLinkConfig)
		return ok && cfg.ChatID == -1001 && cfg.MemberLimit == 1 &&
			cfg.ExpireDate == int(fixed.Add(time.Hour).Unix())
	})).Return(&tgbotapi.APIResponse{Ok: true, Result: link}, nil).Once()

	got, err := svc.CreateInviteLink(-1001, time.Hour, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+abc", got)
	mockSender.AssertExpectations(t)
}
