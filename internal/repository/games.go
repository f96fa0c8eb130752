package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

const gameColumns = `id, name, currency_name, current_rate::text, rate_unit, is_active, created_at, updated_at`

func scanGame(row pgx.Row) (*model.Game, error) {
	var (
		g    model.Game
		rate string
	)
	if err := row.Scan(&g.ID, &g.Name, &g.CurrencyName, &rate, &g.RateUnit, &g.IsActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}

	d, err := parseDecimal(rate)
	if err != nil {
		return nil, err
	}
	g.CurrentRate = d

	return &g, nil
}

// CreateGame сохраняет новую игру. Идентификатор и отметки времени заполняются в g.
func (r *PostgresRepository) CreateGame(ctx context.Context, g *model.Game) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO games (id, name, currency_name, current_rate, rate_unit, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING is_active, created_at, updated_at`,
		g.ID, g.Name, g.CurrencyName, g.CurrentRate.String(), g.RateUnit,
	).Scan(&g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return r.classify("insert game", err)
	}

	return nil
}

// GetGame возвращает игру по идентификатору, включая архивные.
func (r *PostgresRepository) GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	g, err := scanGame(r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if err != nil {
		return nil, r.classify("get game", err)
	}
	return g, nil
}

// ListGames возвращает игры, отсортированные по названию.
func (r *PostgresRepository) ListGames(ctx context.Context, includeArchived bool) ([]model.Game, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+gameColumns+`
		 FROM games
		 WHERE is_active OR $1
		 ORDER BY name`,
		includeArchived,
	)
	if err != nil {
		return nil, r.classify("select games", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, r.classify("scan game", err)
		}
		games = append(games, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, r.classify("rows error", err)
	}

	return games, nil
}

// UpdateGame обновляет название, валюту и курс игры. Уже созданные начисления не затрагиваются.
func (r *PostgresRepository) UpdateGame(ctx context.Context, g *model.Game) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE games
		 SET name = $2, currency_name = $3, current_rate = $4, rate_unit = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING is_active, created_at, updated_at`,
		g.ID, g.Name, g.CurrencyName, g.CurrentRate.String(), g.RateUnit,
	).Scan(&g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return r.classify("update game", err)
	}
	return nil
}

// ArchiveGame помечает игру неактивной. Игры никогда не удаляются физически.
func (r *PostgresRepository) ArchiveGame(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE games SET is_active = FALSE, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return r.classify("archive game", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("archive game: %w", model.ErrNotFound)
	}
	return nil
}
