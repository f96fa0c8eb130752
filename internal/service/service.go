// Package service реализует бизнес-логику учёта начислений, запросов инвентаря и пользователей.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/payroll"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	EnsureUser(ctx context.Context, id uuid.UUID, name string) (*model.User, bool, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, from, to model.Role) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, bankName, bankAccount *string) error
	DeleteEarningsByUser(ctx context.Context, userID uuid.UUID) error
	DeleteInventoryNeedsByUser(ctx context.Context, userID uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateGame(ctx context.Context, g *model.Game) error
	GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error)
	ListGames(ctx context.Context, includeArchived bool) ([]model.Game, error)
	UpdateGame(ctx context.Context, g *model.Game) error
	ArchiveGame(ctx context.Context, id uuid.UUID) error

	CreateEarning(ctx context.Context, e *model.Earning) error
	GetEarning(ctx context.Context, id uuid.UUID) (*model.Earning, error)
	ListEarnings(ctx context.Context, f model.ListFilter) ([]model.Earning, error)
	UpdateEarningStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error)
	SumNetIncome(ctx context.Context, status model.Status) (decimal.Decimal, int, error)

	CreateInventoryNeed(ctx context.Context, n *model.InventoryNeed) error
	GetInventoryNeed(ctx context.Context, id uuid.UUID) (*model.InventoryNeed, error)
	ListInventoryNeeds(ctx context.Context, f model.ListFilter) ([]model.InventoryNeed, error)
	UpdateInventoryStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error)
}

// IdentityClient удаляет учётные записи у провайдера идентификации.
type IdentityClient interface {
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// Cache хранит закэшированные списки сущностей.
type Cache interface {
	// Get возвращает признак попадания и версию списков сущности, под которой сохраняется результат промаха.
	Get(ctx context.Context, entity model.Entity, key string, dest any) (bool, int64, error)
	Set(ctx context.Context, entity model.Entity, version int64, key string, value any) error
	Invalidate(ctx context.Context, entity model.Entity) error
}

// Service содержит бизнес-логику сервиса.
type Service struct {
	repo     Repository
	identity IdentityClient
	cache    Cache
	calc     payroll.Calculator
	logger   *zap.Logger
}

// Option настраивает необязательные зависимости сервиса.
type Option func(*Service)

// WithIdentityClient подключает клиент провайдера идентификации для удаления учётных записей.
func WithIdentityClient(c IdentityClient) Option {
	return func(s *Service) { s.identity = c }
}

// WithCache подключает кэш списков.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithCalculator задаёт калькулятор дохода. По умолчанию используется округление half-up.
func WithCalculator(c payroll.Calculator) Option {
	return func(s *Service) { s.calc = c }
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:   repo,
		calc:   payroll.NewCalculator(payroll.RoundHalfUp),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// noCacheVersion означает, что результат чтения из хранилища не сохраняется в кэш.
const noCacheVersion int64 = -1

// cacheGet читает список из кэша. Вторым значением возвращается версия, под которой
// сохраняется результат последующего чтения из хранилища.
func (s *Service) cacheGet(ctx context.Context, entity model.Entity, key string, dest any) (bool, int64) {
	if s.cache == nil {
		return false, noCacheVersion
	}
	found, version, err := s.cache.Get(ctx, entity, key, dest)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("entity", string(entity)), zap.Error(err))
		return false, noCacheVersion
	}
	return found, version
}

func (s *Service) cacheSet(ctx context.Context, entity model.Entity, version int64, key string, value any) {
	if s.cache == nil || version == noCacheVersion {
		return
	}
	if err := s.cache.Set(ctx, entity, version, key, value); err != nil {
		s.logger.Warn("cache write failed", zap.String("entity", string(entity)), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, entities ...model.Entity) {
	if s.cache == nil {
		return
	}
	for _, entity := range entities {
		if err := s.cache.Invalidate(ctx, entity); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("entity", string(entity)), zap.Error(err))
		}
	}
}
