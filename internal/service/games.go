package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/validation"
	"github.com/mmeshcher/farm-payroll/internal/workflow"
)

// GameInput содержит поля игры, задаваемые администратором.
type GameInput struct {
	Name         string
	CurrencyName string
	CurrentRate  decimal.Decimal
	RateUnit     int64
}

func (in GameInput) validate() (GameInput, error) {
	var err error
	if in.Name, err = validation.Required("name", in.Name); err != nil {
		return in, err
	}
	if in.CurrencyName, err = validation.Required("currency_name", in.CurrencyName); err != nil {
		return in, err
	}
	if err = validation.Positive("current_rate", in.CurrentRate); err != nil {
		return in, err
	}
	if err = validation.PositiveInt("rate_unit", in.RateUnit); err != nil {
		return in, err
	}
	return in, nil
}

func gamesKey(includeArchived bool) string {
	return fmt.Sprintf("archived=%t", includeArchived)
}

// ListGames возвращает активные игры, а администратору по запросу и архивные.
func (s *Service) ListGames(ctx context.Context, actor model.Actor, includeArchived bool) ([]model.Game, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionViewGames); err != nil {
		return nil, err
	}
	if includeArchived {
		if err := workflow.Authorize(actor.Role, workflow.ActionManageGames); err != nil {
			return nil, err
		}
	}

	key := gamesKey(includeArchived)
	var games []model.Game
	found, version := s.cacheGet(ctx, model.EntityGame, key, &games)
	if found {
		return games, nil
	}

	games, err := s.repo.ListGames(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, model.EntityGame, version, key, games)
	return games, nil
}

// CreateGame добавляет игру с курсом её валюты.
func (s *Service) CreateGame(ctx context.Context, actor model.Actor, in GameInput) (*model.Game, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageGames); err != nil {
		return nil, err
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	g := &model.Game{
		Name:         in.Name,
		CurrencyName: in.CurrencyName,
		CurrentRate:  in.CurrentRate,
		RateUnit:     in.RateUnit,
	}
	if err := s.repo.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	s.invalidate(ctx, model.EntityGame)

	s.logger.Info("game created", zap.String("game_id", g.ID.String()), zap.String("name", g.Name))
	return g, nil
}

// UpdateGame изменяет игру. Ранее созданные начисления сохраняют зафиксированный курс.
func (s *Service) UpdateGame(ctx context.Context, actor model.Actor, id uuid.UUID, in GameInput) (*model.Game, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageGames); err != nil {
		return nil, err
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	g, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Name = in.Name
	g.CurrencyName = in.CurrencyName
	g.CurrentRate = in.CurrentRate
	g.RateUnit = in.RateUnit

	if err := s.repo.UpdateGame(ctx, g); err != nil {
		return nil, err
	}
	// Списки начислений содержат название игры и валюты.
	s.invalidate(ctx, model.EntityGame, model.EntityEarning)
	return g, nil
}

// ArchiveGame переводит игру в архив. Новые начисления по ней не принимаются.
func (s *Service) ArchiveGame(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageGames); err != nil {
		return err
	}
	if err := s.repo.ArchiveGame(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, model.EntityGame)
	return nil
}
