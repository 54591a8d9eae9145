package service

import (
	"context"
	"encoding/json"

	"member_portal/internal/apperror"
	"member_portal/internal/model"

	"go.uber.org/zap"
)

// Computer is the external computation service.
type Computer interface {
	Call(ctx context.Context, input string) (json.RawMessage, error)
}

// APIService meters calls to the external computation service
type APIService interface {
	Call(ctx context.Context, actor *model.User, input string) (json.RawMessage, error)
}

type apiService struct {
	computer Computer
	users    UserService
	log      *zap.Logger
}

// NewAPIService creates a new APIService
func NewAPIService(computer Computer, users UserService, log *zap.Logger) APIService {
	return &apiService{computer: computer, users: users, log: log}
}

// Call forwards input and counts the call only when the service answered.
func (s *apiService) Call(ctx context.Context, actor *model.User, input string) (json.RawMessage, error) {
	body, err := s.computer.Call(ctx, input)
	if err != nil {
		s.log.Warn("compute call failed", zap.Int("user_id", actor.ID), zap.Error(err))
		if !apperror.Is(err, apperror.DependencyUnavailable) {
			err = apperror.NewDependencyUnavailable("Compute service unavailable", err)
		}
		return nil, err
	}
	if err := s.users.RecordAction(ctx, actor.ID, model.ActionAPICall); err != nil {
		return nil, err
	}
	return body, nil
}
