package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/validation"
	"github.com/mmeshcher/farm-payroll/internal/workflow"
)

// defaultUserName используется, если провайдер идентификации не передал имя.
const defaultUserName = "New user"

// EnsureUser создаёт запись пользователя с ролью pending, если её ещё нет.
func (s *Service) EnsureUser(ctx context.Context, id uuid.UUID, name string) (*model.User, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty user id", model.ErrInvalidArgument)
	}
	n, err := validation.Name("name", name)
	if err != nil {
		n = defaultUserName
	}

	u, created, err := s.repo.EnsureUser(ctx, id, n)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("user registered", zap.String("user_id", id.String()))
	}
	return u, nil
}

// ResolveActor загружает роль пользователя по идентификатору из сессии.
func (s *Service) ResolveActor(ctx context.Context, id uuid.UUID) (model.Actor, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.Actor{}, err
	}
	return model.Actor{UserID: u.ID, Role: u.Role}, nil
}

// Me возвращает запись вызывающего пользователя.
func (s *Service) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionViewProfile); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, actor.UserID)
}

// UpdateProfile обновляет имя и банковские реквизиты. Пустые реквизиты оставляют сохранённые значения.
func (s *Service) UpdateProfile(ctx context.Context, actor model.Actor, name, bankName, bankAccount string) (*model.User, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionUpdateProfile); err != nil {
		return nil, err
	}
	n, err := validation.Name("name", name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, actor.UserID, n, validation.Optional(bankName), validation.Optional(bankAccount)); err != nil {
		return nil, err
	}
	// Имя и реквизиты входят в списки начислений и запросов инвентаря.
	s.invalidate(ctx, model.EntityEarning, model.EntityInventory)

	return s.repo.GetUser(ctx, actor.UserID)
}

// ListUsers возвращает пользователей, при непустом role только с этой ролью.
func (s *Service) ListUsers(ctx context.Context, actor model.Actor, role model.Role) ([]model.User, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageUsers); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrInvalidArgument, role)
	}
	return s.repo.ListUsers(ctx, role)
}

// ApproveUser назначает ожидающему пользователю роль employee или admin.
func (s *Service) ApproveUser(ctx context.Context, actor model.Actor, userID uuid.UUID, role model.Role) (*model.TransitionResult, error) {
	if role == "" {
		role = model.RoleEmployee
	}
	if role != model.RoleEmployee && role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: role must be employee or admin", model.ErrInvalidArgument)
	}
	return s.transition(ctx, actor, s.userRoles(), userID, string(model.RolePending), string(role))
}

// ChangeUserRole переводит пользователя между ролями employee и admin.
func (s *Service) ChangeUserRole(ctx context.Context, actor model.Actor, userID uuid.UUID, role model.Role) (*model.TransitionResult, error) {
	var from model.Role
	switch role {
	case model.RoleEmployee:
		from = model.RoleAdmin
	case model.RoleAdmin:
		from = model.RoleEmployee
	default:
		return nil, fmt.Errorf("%w: role must be employee or admin", model.ErrInvalidArgument)
	}
	return s.transition(ctx, actor, s.userRoles(), userID, string(from), string(role))
}

// DeleteUser удаляет пользователя вместе с его начислениями и запросами инвентаря,
// затем учётную запись у провайдера идентификации. Ошибка провайдера только логируется.
func (s *Service) DeleteUser(ctx context.Context, actor model.Actor, userID uuid.UUID) error {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageUsers); err != nil {
		return err
	}
	if userID == actor.UserID {
		return fmt.Errorf("%w: cannot delete own account", model.ErrUnauthorized)
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteEarningsByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteInventoryNeedsByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, model.EntityEarning, model.EntityInventory)

	s.logger.Info("user deleted", zap.String("user_id", userID.String()), zap.String("actor", actor.UserID.String()))

	if s.identity == nil {
		return nil
	}
	if err := s.identity.DeleteAccount(ctx, userID); err != nil {
		s.logger.Error("failed to delete identity account", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}
