package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/metrics"
	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/workflow"
)

// record хранит состояние записи, достаточное для проверки перехода.
type record struct {
	owner uuid.UUID
	state string
}

// stateful связывает сущность с чтением и условным обновлением её состояния.
type stateful struct {
	entity model.Entity
	load   func(ctx context.Context, id uuid.UUID) (record, error)
	update func(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
}

func (s *Service) earnings() stateful {
	return stateful{
		entity: model.EntityEarning,
		load: func(ctx context.Context, id uuid.UUID) (record, error) {
			e, err := s.repo.GetEarning(ctx, id)
			if err != nil {
				return record{}, err
			}
			return record{owner: e.UserID, state: string(e.Status)}, nil
		},
		update: func(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
			return s.repo.UpdateEarningStatus(ctx, id, model.Status(from), model.Status(to))
		},
	}
}

func (s *Service) inventoryNeeds() stateful {
	return stateful{
		entity: model.EntityInventory,
		load: func(ctx context.Context, id uuid.UUID) (record, error) {
			n, err := s.repo.GetInventoryNeed(ctx, id)
			if err != nil {
				return record{}, err
			}
			return record{owner: n.UserID, state: string(n.Status)}, nil
		},
		update: func(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
			return s.repo.UpdateInventoryStatus(ctx, id, model.Status(from), model.Status(to))
		},
	}
}

func (s *Service) userRoles() stateful {
	return stateful{
		entity: model.EntityUserRole,
		load: func(ctx context.Context, id uuid.UUID) (record, error) {
			u, err := s.repo.GetUser(ctx, id)
			if err != nil {
				return record{}, err
			}
			return record{owner: u.ID, state: string(u.Role)}, nil
		},
		update: func(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
			return s.repo.UpdateUserRole(ctx, id, model.Role(from), model.Role(to))
		},
	}
}

// transition выполняет переход состояния записи id из from в to от имени actor.
//
// Порядок проверок: допустимость перехода, права роли, запрет действий над собственной записью,
// совпадение сохранённого состояния с from, условное обновление. Если условное обновление
// не изменило строку, запись перечитывается: отсутствие даёт ErrNotFound, целевое состояние
// означает, что переход уже выполнен другим запросом (Applied = false), иное состояние даёт ErrConflict.
func (s *Service) transition(ctx context.Context, actor model.Actor, st stateful, id uuid.UUID, from, to string) (*model.TransitionResult, error) {
	res, err := s.doTransition(ctx, actor, st, id, from, to)

	outcome := transitionOutcome(res, err)
	metrics.ObserveTransition(string(st.entity), to, outcome)

	if err != nil {
		fields := []zap.Field{
			zap.String("entity", string(st.entity)),
			zap.String("id", id.String()),
			zap.String("from", from),
			zap.String("to", to),
			zap.String("actor", actor.UserID.String()),
			zap.Error(err),
		}
		if outcome == metrics.OutcomeError {
			s.logger.Error("transition failed", fields...)
		} else {
			s.logger.Warn("transition rejected", fields...)
		}
		return nil, err
	}

	if res.Applied {
		s.invalidate(ctx, st.entity)
	}
	return res, nil
}

func (s *Service) doTransition(ctx context.Context, actor model.Actor, st stateful, id uuid.UUID, from, to string) (*model.TransitionResult, error) {
	t := workflow.Transition{Entity: st.entity, From: from, To: to}
	if err := workflow.Check(actor.Role, t); err != nil {
		return nil, err
	}

	rec, err := st.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.owner == actor.UserID {
		return nil, fmt.Errorf("%w: cannot perform %s on own record", model.ErrUnauthorized, t)
	}
	if rec.state != from {
		return nil, fmt.Errorf("%w: %s is %s, expected %s", model.ErrInvalidState, st.entity, rec.state, from)
	}

	applied, err := st.update(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	res := &model.TransitionResult{ID: id, From: from, To: to, Applied: applied}
	if applied {
		return res, nil
	}

	rec, err = st.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.state == to {
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s is now %s", model.ErrConflict, st.entity, rec.state)
}

func transitionOutcome(res *model.TransitionResult, err error) string {
	switch {
	case err == nil && res.Applied:
		return metrics.OutcomeApplied
	case err == nil:
		return metrics.OutcomeNoop
	case errors.Is(err, model.ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, model.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, model.ErrInvalidState):
		return metrics.OutcomeInvalidState
	case errors.Is(err, model.ErrNotFound):
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
