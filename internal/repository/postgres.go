// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
	logger *zap.Logger
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string, logger *zap.Logger) (*PostgresRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
		logger: logger,
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// withRetry повторяет fn при сбоях сериализации, дедлоках и обрывах соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil || i == len(r.delays) || !isRetryable(err) {
			break
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// classify приводит ошибку драйвера к доменной таксономии ошибок.
// Текст ошибок PostgreSQL о нарушении ограничений только логируется и в ошибку не попадает.
func (r *PostgresRepository) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: referenced record: %w", op, model.ErrNotFound)
		case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation, pgerrcode.NumericValueOutOfRange:
			if r.logger != nil {
				r.logger.Warn("constraint violation",
					zap.String("op", op),
					zap.String("code", pgErr.Code),
					zap.String("constraint", pgErr.ConstraintName),
					zap.String("detail", pgErr.Message),
				)
			}
			return fmt.Errorf("%s: %w: value is out of range", op, model.ErrInvalidArgument)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, model.ErrDependencyFailure, err)
}

// statusTables перечисляет таблицы заявок со столбцом status.
var statusTables = map[model.Entity]string{
	model.EntityEarning:   "earnings",
	model.EntityInventory: "inventory_needs",
}

// updateStatus выполняет условное обновление статуса: строка меняется, только если её текущий статус равен from.
// Возвращает false, если ни одна строка не изменилась.
func (r *PostgresRepository) updateStatus(ctx context.Context, entity model.Entity, id uuid.UUID, from, to model.Status) (bool, error) {
	table, ok := statusTables[entity]
	if !ok {
		return false, fmt.Errorf("update status: %w: unknown entity %q", model.ErrInvalidArgument, entity)
	}

	query := fmt.Sprintf(`UPDATE %s SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`, table)

	var updated bool
	err := r.withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query, id, string(from), string(to))
		if err != nil {
			return err
		}
		updated = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, r.classify("update "+table+" status", err)
	}

	return updated, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}

func statusArg(s model.Status) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

func userArg(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
