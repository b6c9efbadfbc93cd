package service

import (
	"context"

	"signalbot/internal/domain"
	"signalbot/internal/models"

	"github.com/rs/zerolog"
)

// StateService шаг диалога пользователя поверх репозитория состояний.
type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, logger *zerolog.Logger) *StateService {
	return &StateService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

// GetUserState возвращает nil, если состояния нет или оно истекло.
func (s *StateService) GetUserState(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil, err
	}
	return state, nil
}

// CurrentStep шаг пользователя или start, если состояния нет.
func (s *StateService) CurrentStep(ctx context.Context, userID int64) string {
	state, err := s.GetUserState(ctx, userID)
	if err != nil || state == nil || state.CurrentStep == "" {
		return models.StateStart
	}
	return state.CurrentStep
}

func (s *StateService) SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error {
	state := &models.UserState{
		UserID:      userID,
		CurrentStep: step,
		TempData:    data,
	}
	if err := s.stateRepo.SetState(ctx, state); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Str("step", step).Msg("failed to set user state")
		return err
	}
	return nil
}

func (s *StateService) ClearUserState(ctx context.Context, userID int64) error {
	return s.stateRepo.ClearState(ctx, userID)
}
