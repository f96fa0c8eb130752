package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

const userColumns = `id, name, role, bank_name, bank_account, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &role, &u.BankName, &u.BankAccount, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// EnsureUser создаёт пользователя с ролью pending, если его ещё нет, и возвращает сохранённую запись.
func (r *PostgresRepository) EnsureUser(ctx context.Context, id uuid.UUID, name string) (*model.User, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, r.classify("begin tx", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO users (id, name, role) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		id, name, string(model.RolePending),
	)
	if err != nil {
		return nil, false, r.classify("insert user", err)
	}
	created := tag.RowsAffected() == 1

	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, false, r.classify("select user", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, r.classify("commit tx", err)
	}

	return u, created, nil
}

// GetUser возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, r.classify("get user", err)
	}
	return u, nil
}

// ListUsers возвращает пользователей, отфильтрованных по роли. Пустая роль означает всех.
func (r *PostgresRepository) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	var roleFilter *string
	if role != "" {
		v := string(role)
		roleFilter = &v
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE ($1::text IS NULL OR role = $1)
		 ORDER BY name, created_at`,
		roleFilter,
	)
	if err != nil {
		return nil, r.classify("select users", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, r.classify("scan user", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, r.classify("rows error", err)
	}

	return users, nil
}

// UpdateUserRole меняет роль пользователя, только если текущая роль равна from.
func (r *PostgresRepository) UpdateUserRole(ctx context.Context, id uuid.UUID, from, to model.Role) (bool, error) {
	var updated bool
	err := r.withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET role = $3 WHERE id = $1 AND role = $2`,
			id, string(from), string(to),
		)
		if err != nil {
			return err
		}
		updated = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, r.classify("update user role", err)
	}
	return updated, nil
}

// UpdateProfile обновляет имя и реквизиты пользователя. nil-реквизиты оставляют сохранённые значения.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, bankName, bankAccount *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET name = $2,
		     bank_name = COALESCE($3, bank_name),
		     bank_account = COALESCE($4, bank_account)
		 WHERE id = $1`,
		id, name, bankName, bankAccount,
	)
	if err != nil {
		return r.classify("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update profile: %w", model.ErrNotFound)
	}
	return nil
}

// DeleteEarningsByUser удаляет все начисления пользователя.
func (r *PostgresRepository) DeleteEarningsByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM earnings WHERE user_id = $1`, userID); err != nil {
		return r.classify("delete earnings", err)
	}
	return nil
}

// DeleteInventoryNeedsByUser удаляет все запросы инвентаря пользователя.
func (r *PostgresRepository) DeleteInventoryNeedsByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM inventory_needs WHERE user_id = $1`, userID); err != nil {
		return r.classify("delete inventory needs", err)
	}
	return nil
}

// DeleteUser удаляет запись пользователя.
func (r *PostgresRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return r.classify("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete user: %w", model.ErrNotFound)
	}
	return nil
}
