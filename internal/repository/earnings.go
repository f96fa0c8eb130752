package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

const earningSelect = `
	SELECT e.id, e.user_id, e.game_id, e.amount_farmed::text, e.applied_rate::text, e.rate_unit,
	       e.net_income::text, e.status, e.created_at, e.updated_at,
	       u.name, u.bank_name, u.bank_account, g.name, g.currency_name
	FROM earnings e
	JOIN users u ON u.id = e.user_id
	JOIN games g ON g.id = e.game_id`

func scanEarning(row pgx.Row) (*model.Earning, error) {
	var (
		e                         model.Earning
		amount, rate, net, status string
		bankName, bankAccount     *string
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.GameID, &amount, &rate, &e.RateUnit,
		&net, &status, &e.CreatedAt, &e.UpdatedAt,
		&e.UserName, &bankName, &bankAccount, &e.GameName, &e.CurrencyName,
	)
	if err != nil {
		return nil, err
	}

	if e.AmountFarmed, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	if e.AppliedRate, err = parseDecimal(rate); err != nil {
		return nil, err
	}
	if e.NetIncome, err = parseDecimal(net); err != nil {
		return nil, err
	}
	e.Status = model.Status(status)
	e.PayoutDestination = model.PayoutDestination(bankName, bankAccount)

	return &e, nil
}

// CreateEarning сохраняет начисление. Статус всегда pending, независимо от значения в e.
func (r *PostgresRepository) CreateEarning(ctx context.Context, e *model.Earning) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Status = model.StatusPending

	err := r.pool.QueryRow(ctx,
		`INSERT INTO earnings (id, user_id, game_id, amount_farmed, applied_rate, rate_unit, net_income, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		e.ID, e.UserID, e.GameID,
		e.AmountFarmed.String(), e.AppliedRate.String(), e.RateUnit, e.NetIncome.StringFixed(2),
		string(e.Status),
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return r.classify("insert earning", err)
	}

	return nil
}

// GetEarning возвращает начисление по идентификатору.
func (r *PostgresRepository) GetEarning(ctx context.Context, id uuid.UUID) (*model.Earning, error) {
	e, err := scanEarning(r.pool.QueryRow(ctx, earningSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, r.classify("get earning", err)
	}
	return e, nil
}

// ListEarnings возвращает начисления по фильтру, новые первыми.
func (r *PostgresRepository) ListEarnings(ctx context.Context, f model.ListFilter) ([]model.Earning, error) {
	rows, err := r.pool.Query(ctx,
		earningSelect+`
		 WHERE ($1::uuid IS NULL OR e.user_id = $1)
		   AND ($2::text IS NULL OR e.status = $2)
		 ORDER BY e.created_at DESC`,
		userArg(f.UserID), statusArg(f.Status),
	)
	if err != nil {
		return nil, r.classify("select earnings", err)
	}
	defer rows.Close()

	var res []model.Earning
	for rows.Next() {
		e, err := scanEarning(rows)
		if err != nil {
			return nil, r.classify("scan earning", err)
		}
		res = append(res, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, r.classify("rows error", err)
	}

	return res, nil
}

// UpdateEarningStatus меняет статус начисления, только если текущий статус равен from.
func (r *PostgresRepository) UpdateEarningStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error) {
	return r.updateStatus(ctx, model.EntityEarning, id, from, to)
}

// SumNetIncome возвращает сумму и количество начислений в указанном статусе.
func (r *PostgresRepository) SumNetIncome(ctx context.Context, status model.Status) (decimal.Decimal, int, error) {
	var (
		total string
		count int
	)
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(net_income), 0)::text, COUNT(*)
		 FROM earnings
		 WHERE status = $1`,
		string(status),
	).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, r.classify("sum net income", err)
	}

	d, err := parseDecimal(total)
	if err != nil {
		return decimal.Zero, 0, err
	}

	return d, count, nil
}
