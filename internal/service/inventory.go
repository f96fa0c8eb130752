package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/validation"
	"github.com/mmeshcher/farm-payroll/internal/workflow"
)

// RequestInventory создаёт запрос сотрудника на предмет в статусе pending.
func (s *Service) RequestInventory(ctx context.Context, actor model.Actor, itemName string) (*model.InventoryNeed, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionRequestInventory); err != nil {
		return nil, err
	}
	name, err := validation.Name("item_name", itemName)
	if err != nil {
		return nil, err
	}

	n := &model.InventoryNeed{
		UserID:   actor.UserID,
		ItemName: name,
	}
	if err := s.repo.CreateInventoryNeed(ctx, n); err != nil {
		return nil, err
	}
	s.invalidate(ctx, model.EntityInventory)
	return n, nil
}

// ListInventoryNeeds возвращает запросы инвентаря по фильтру. Сотрудник видит только свои.
func (s *Service) ListInventoryNeeds(ctx context.Context, actor model.Actor, f model.ListFilter) ([]model.InventoryNeed, error) {
	f, err := scopeFilter(actor, model.EntityInventory, f)
	if err != nil {
		return nil, err
	}

	key := listKey(f)
	var list []model.InventoryNeed
	found, version := s.cacheGet(ctx, model.EntityInventory, key, &list)
	if found {
		return list, nil
	}

	list, err = s.repo.ListInventoryNeeds(ctx, f)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, model.EntityInventory, version, key, list)
	return list, nil
}

// TransitionInventory переводит запрос инвентаря из состояния from в to.
func (s *Service) TransitionInventory(ctx context.Context, actor model.Actor, id uuid.UUID, from, to model.Status) (*model.TransitionResult, error) {
	return s.transition(ctx, actor, s.inventoryNeeds(), id, string(from), string(to))
}

// ApproveInventory подтверждает ожидающий запрос.
func (s *Service) ApproveInventory(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
	return s.TransitionInventory(ctx, actor, id, model.StatusPending, model.StatusApproved)
}

// RejectInventory отклоняет ожидающий запрос.
func (s *Service) RejectInventory(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
	return s.TransitionInventory(ctx, actor, id, model.StatusPending, model.StatusRejected)
}

// FulfillInventory отмечает запрос выполненным. Исходным считается сохранённое состояние,
// если из него допустим переход в fulfilled, иначе pending.
func (s *Service) FulfillInventory(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
	if !workflow.CanTransition(actor.Role, model.EntityInventory, string(model.StatusPending), string(model.StatusFulfilled)) {
		return s.TransitionInventory(ctx, actor, id, model.StatusPending, model.StatusFulfilled)
	}

	n, err := s.repo.GetInventoryNeed(ctx, id)
	if err != nil {
		return nil, err
	}

	from := model.StatusPending
	for _, src := range workflow.Sources(model.EntityInventory, string(model.StatusFulfilled)) {
		if src == string(n.Status) {
			from = n.Status
			break
		}
	}
	return s.TransitionInventory(ctx, actor, id, from, model.StatusFulfilled)
}
