package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/payroll"
	"github.com/mmeshcher/farm-payroll/internal/validation"
	"github.com/mmeshcher/farm-payroll/internal/workflow"
)

// PreviewEarning рассчитывает доход по текущему курсу игры без сохранения.
func (s *Service) PreviewEarning(ctx context.Context, actor model.Actor, gameID uuid.UUID, amount decimal.Decimal) (*model.EarningPreview, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionPreviewEarning); err != nil {
		return nil, err
	}

	g, err := s.activeGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	gross, err := s.calc.GrossIncome(amount, g.CurrentRate, g.RateUnit)
	if err != nil {
		return nil, err
	}
	net, err := s.calc.NetIncome(amount, g.CurrentRate, g.RateUnit)
	if err != nil {
		return nil, err
	}

	return &model.EarningPreview{
		GameID:       g.ID,
		CurrencyName: g.CurrencyName,
		AmountFarmed: amount,
		Rate:         g.CurrentRate,
		RateUnit:     g.RateUnit,
		GrossIncome:  gross,
		NetIncome:    net,
	}, nil
}

// SubmitEarning сохраняет отчёт сотрудника. Курс и единица курса фиксируются из текущих значений игры,
// статус всегда pending.
func (s *Service) SubmitEarning(ctx context.Context, actor model.Actor, gameID uuid.UUID, amount decimal.Decimal) (*model.Earning, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionSubmitEarning); err != nil {
		return nil, err
	}
	if err := validation.Positive("amount_farmed", amount); err != nil {
		return nil, err
	}

	g, err := s.activeGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	net, err := s.calc.NetIncome(amount, g.CurrentRate, g.RateUnit)
	if err != nil {
		return nil, err
	}

	e := &model.Earning{
		UserID:       actor.UserID,
		GameID:       g.ID,
		AmountFarmed: amount,
		AppliedRate:  g.CurrentRate,
		RateUnit:     g.RateUnit,
		NetIncome:    net,
		GameName:     g.Name,
		CurrencyName: g.CurrencyName,
	}
	if err := s.repo.CreateEarning(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx, model.EntityEarning)

	s.logger.Info("earning submitted",
		zap.String("earning_id", e.ID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.String("net_income", payroll.FormatCurrency(net, "")),
	)
	return e, nil
}

func (s *Service) activeGame(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: game_id is required", model.ErrInvalidArgument)
	}
	g, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.IsActive {
		return nil, fmt.Errorf("%w: game %s is archived", model.ErrNotFound, id)
	}
	return g, nil
}

// scopeFilter ограничивает фильтр собственными записями, если роли не разрешено видеть все.
func scopeFilter(actor model.Actor, entity model.Entity, f model.ListFilter) (model.ListFilter, error) {
	if f.Status != "" && !workflow.HasState(entity, string(f.Status)) {
		return f, fmt.Errorf("%w: unknown status %q", model.ErrInvalidArgument, f.Status)
	}
	if workflow.Can(actor.Role, workflow.ActionViewAllRecords) {
		return f, nil
	}
	if err := workflow.Authorize(actor.Role, workflow.ActionViewOwnRecords); err != nil {
		return f, err
	}
	if f.UserID != uuid.Nil && f.UserID != actor.UserID {
		return f, fmt.Errorf("%w: cannot view records of another user", model.ErrUnauthorized)
	}
	f.UserID = actor.UserID
	return f, nil
}

func listKey(f model.ListFilter) string {
	return fmt.Sprintf("user=%s&status=%s", f.UserID, f.Status)
}

// ListEarnings возвращает начисления по фильтру. Сотрудник видит только свои.
func (s *Service) ListEarnings(ctx context.Context, actor model.Actor, f model.ListFilter) ([]model.Earning, error) {
	f, err := scopeFilter(actor, model.EntityEarning, f)
	if err != nil {
		return nil, err
	}

	key := listKey(f)
	var list []model.Earning
	found, version := s.cacheGet(ctx, model.EntityEarning, key, &list)
	if found {
		return list, nil
	}

	list, err = s.repo.ListEarnings(ctx, f)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, model.EntityEarning, version, key, list)
	return list, nil
}

// TransitionEarning переводит начисление из состояния from в to.
func (s *Service) TransitionEarning(ctx context.Context, actor model.Actor, id uuid.UUID, from, to model.Status) (*model.TransitionResult, error) {
	return s.transition(ctx, actor, s.earnings(), id, string(from), string(to))
}

// ApproveEarning подтверждает ожидающее начисление.
func (s *Service) ApproveEarning(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
	return s.TransitionEarning(ctx, actor, id, model.StatusPending, model.StatusApproved)
}

// RejectEarning отклоняет ожидающее начисление.
func (s *Service) RejectEarning(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
	return s.TransitionEarning(ctx, actor, id, model.StatusPending, model.StatusRejected)
}

// MarkEarningPaid отмечает подтверждённое начисление выплаченным.
func (s *Service) MarkEarningPaid(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
	return s.TransitionEarning(ctx, actor, id, model.StatusApproved, model.StatusPaid)
}

// PayrollSummary возвращает суммы к выплате и выплаченные суммы.
// Подтверждённые, но не выплаченные начисления возвращаются с реквизитами выплаты.
func (s *Service) PayrollSummary(ctx context.Context, actor model.Actor) (*model.PayrollSummary, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionViewPayroll); err != nil {
		return nil, err
	}

	unpaidTotal, unpaidCount, err := s.repo.SumNetIncome(ctx, model.StatusApproved)
	if err != nil {
		return nil, err
	}
	paidTotal, paidCount, err := s.repo.SumNetIncome(ctx, model.StatusPaid)
	if err != nil {
		return nil, err
	}
	unpaid, err := s.repo.ListEarnings(ctx, model.ListFilter{Status: model.StatusApproved})
	if err != nil {
		return nil, err
	}

	return &model.PayrollSummary{
		TotalUnpaid: unpaidTotal,
		TotalPaid:   paidTotal,
		UnpaidCount: unpaidCount,
		PaidCount:   paidCount,
		Unpaid:      unpaid,
	}, nil
}
