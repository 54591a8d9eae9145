package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"member_portal/internal/apperror"
	"member_portal/internal/model"
	"member_portal/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrForbidden           = apperror.NewForbidden("You do not have permission to access this resource")
	ErrDuplicateIdentifier = apperror.NewValidation("Duplicate identifier", nil)
)

// UserService covers usage counting and the admin user-management operations
type UserService interface {
	RecordAction(ctx context.Context, userID int, action model.Action) error
	ListUsers(ctx context.Context, actor *model.User) ([]model.User, error)
	GrantAdmin(ctx context.Context, actor *model.User, ids []string) (*model.BulkResult, error)
	DeleteUsers(ctx context.Context, actor *model.User, ids []string) (*model.BulkResult, error)
	BootstrapAdmin(ctx context.Context, email string) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) RecordAction(ctx context.Context, userID int, action model.Action) error {
	if _, err := s.userRepo.IncrementCounter(ctx, userID, action); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperror.NewStoreFailure("Internal server error", fmt.Errorf("failed to record %s: %w", action, err))
	}
	return nil
}

func requireAdmin(actor *model.User) error {
	if actor == nil || !actor.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// ListUsers returns every user with usage stats. Admins only.
func (s *userService) ListUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.NewStoreFailure("Internal server error", err)
	}
	return users, nil
}

// GrantAdmin sets the admin flag on every listed user
func (s *userService) GrantAdmin(ctx context.Context, actor *model.User, ids []string) (*model.BulkResult, error) {
	return s.bulk(ctx, actor, ids, model.ActionRoleUpdate, s.userRepo.GrantAdmin)
}

// DeleteUsers removes every listed user
func (s *userService) DeleteUsers(ctx context.Context, actor *model.User, ids []string) (*model.BulkResult, error) {
	return s.bulk(ctx, actor, ids, model.ActionUserDeletion, s.userRepo.Delete)
}

// bulk applies op to each identifier independently. A failing identifier
// never stops the others; the actor's counter for action is bumped once if
// anything changed. An identifier naming a user already handled earlier in
// the request is reported as a duplicate.
func (s *userService) bulk(ctx context.Context, actor *model.User, ids []string, action model.Action, op func(context.Context, int) error) (*model.BulkResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	result := &model.BulkResult{Succeeded: []string{}, Failed: []model.BulkFailure{}}
	seen := make(map[int]bool, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || id <= 0 {
			result.Failed = append(result.Failed, failure(raw, apperror.NewValidation("Invalid user identifier", err)))
			continue
		}
		if seen[id] {
			result.Failed = append(result.Failed, failure(raw, ErrDuplicateIdentifier))
			continue
		}
		seen[id] = true

		if err := op(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				result.Failed = append(result.Failed, failure(raw, ErrUserNotFound))
				continue
			}
			s.log.Error("bulk user operation failed",
				zap.String("action", string(action)), zap.Int("user_id", id), zap.Error(err))
			result.Failed = append(result.Failed, failure(raw, apperror.NewStoreFailure("Internal server error", err)))
			continue
		}
		result.Succeeded = append(result.Succeeded, raw)
	}

	if len(result.Succeeded) > 0 {
		// The records are already changed, so the per-identifier report wins
		// over a failed counter. An admin who deleted their own record has
		// nothing left to count against.
		if _, err := s.userRepo.IncrementCounter(ctx, actor.ID, action); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("failed to record bulk operation",
				zap.String("action", string(action)), zap.Int("actor_id", actor.ID), zap.Error(err))
		}
	}

	s.log.Info("bulk user operation",
		zap.String("action", string(action)), zap.Int("actor_id", actor.ID),
		zap.Strings("succeeded", result.Succeeded), zap.Int("failed", len(result.Failed)))
	return result, nil
}

func failure(id string, err *apperror.Error) model.BulkFailure {
	return model.BulkFailure{ID: id, Kind: string(err.Kind), Message: err.Message}
}

// BootstrapAdmin promotes the user registered with email, if any. It runs
// at startup so a fresh deployment can reach the admin panel.
func (s *userService) BootstrapAdmin(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find initial admin: %w", err)
	}
	if user == nil {
		s.log.Warn("initial admin is not registered yet", zap.String("email", email))
		return nil
	}
	if user.IsAdmin {
		return nil
	}
	if err := s.userRepo.GrantAdmin(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to promote initial admin: %w", err)
	}
	s.log.Info("initial admin promoted", zap.Int("user_id", user.ID))
	return nil
}
