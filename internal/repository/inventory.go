package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

const inventorySelect = `
	SELECT n.id, n.user_id, n.item_name, n.status, n.created_at, n.updated_at, u.name
	FROM inventory_needs n
	JOIN users u ON u.id = n.user_id`

func scanInventoryNeed(row pgx.Row) (*model.InventoryNeed, error) {
	var (
		n      model.InventoryNeed
		status string
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.ItemName, &status, &n.CreatedAt, &n.UpdatedAt, &n.UserName); err != nil {
		return nil, err
	}
	n.Status = model.Status(status)
	return &n, nil
}

// CreateInventoryNeed сохраняет запрос инвентаря в статусе pending.
func (r *PostgresRepository) CreateInventoryNeed(ctx context.Context, n *model.InventoryNeed) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.Status = model.StatusPending

	err := r.pool.QueryRow(ctx,
		`INSERT INTO inventory_needs (id, user_id, item_name, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		n.ID, n.UserID, n.ItemName, string(n.Status),
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return r.classify("insert inventory need", err)
	}

	return nil
}

// GetInventoryNeed возвращает запрос инвентаря по идентификатору.
func (r *PostgresRepository) GetInventoryNeed(ctx context.Context, id uuid.UUID) (*model.InventoryNeed, error) {
	n, err := scanInventoryNeed(r.pool.QueryRow(ctx, inventorySelect+` WHERE n.id = $1`, id))
	if err != nil {
		return nil, r.classify("get inventory need", err)
	}
	return n, nil
}

// ListInventoryNeeds возвращает запросы инвентаря по фильтру, новые первыми.
func (r *PostgresRepository) ListInventoryNeeds(ctx context.Context, f model.ListFilter) ([]model.InventoryNeed, error) {
	rows, err := r.pool.Query(ctx,
		inventorySelect+`
		 WHERE ($1::uuid IS NULL OR n.user_id = $1)
		   AND ($2::text IS NULL OR n.status = $2)
		 ORDER BY n.created_at DESC`,
		userArg(f.UserID), statusArg(f.Status),
	)
	if err != nil {
		return nil, r.classify("select inventory needs", err)
	}
	defer rows.Close()

	var res []model.InventoryNeed
	for rows.Next() {
		n, err := scanInventoryNeed(rows)
		if err != nil {
			return nil, r.classify("scan inventory need", err)
		}
		res = append(res, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, r.classify("rows error", err)
	}

	return res, nil
}

// UpdateInventoryStatus меняет статус запроса, только если текущий статус равен from.
func (r *PostgresRepository) UpdateInventoryStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error) {
	return r.updateStatus(ctx, model.EntityInventory, id, from, to)
}
