package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

// memRepo — потокобезопасный репозиторий в памяти с той же семантикой условных обновлений, что и PostgreSQL.
type memRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]model.User
	games    map[uuid.UUID]model.Game
	earnings map[uuid.UUID]model.Earning
	needs    map[uuid.UUID]model.InventoryNeed

	// beforeUpdate вызывается перед условным обновлением статуса вне блокировки.
	beforeUpdate func()
	// afterListEarnings вызывается после чтения списка начислений вне блокировки.
	afterListEarnings func()
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:    make(map[uuid.UUID]model.User),
		games:    make(map[uuid.UUID]model.Game),
		earnings: make(map[uuid.UUID]model.Earning),
		needs:    make(map[uuid.UUID]model.InventoryNeed),
	}
}

func (r *memRepo) addUser(name string, role model.Role) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := model.User{ID: uuid.New(), Name: name, Role: role, CreatedAt: time.Now()}
	r.users[u.ID] = u
	return u
}

func (r *memRepo) addGame(name, currency, rate string, unit int64) model.Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := model.Game{
		ID:           uuid.New(),
		Name:         name,
		CurrencyName: currency,
		CurrentRate:  decimal.RequireFromString(rate),
		RateUnit:     unit,
		IsActive:     true,
	}
	r.games[g.ID] = g
	return g
}

func (r *memRepo) addEarning(userID, gameID uuid.UUID, status model.Status, net string) model.Earning {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := model.Earning{
		ID:           uuid.New(),
		UserID:       userID,
		GameID:       gameID,
		AmountFarmed: decimal.NewFromInt(1),
		AppliedRate:  decimal.NewFromInt(1),
		RateUnit:     1,
		NetIncome:    decimal.RequireFromString(net),
		Status:       status,
	}
	r.earnings[e.ID] = e
	return e
}

func (r *memRepo) addNeed(userID uuid.UUID, item string, status model.Status) model.InventoryNeed {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := model.InventoryNeed{ID: uuid.New(), UserID: userID, ItemName: item, Status: status}
	r.needs[n.ID] = n
	return n
}

func (r *memRepo) earningStatus(id uuid.UUID) model.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.earnings[id].Status
}

func (r *memRepo) setEarningStatus(id uuid.UUID, status model.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.earnings[id]
	e.Status = status
	r.earnings[id] = e
}

func (r *memRepo) deleteEarning(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.earnings, id)
}

func (r *memRepo) Close() error { return nil }

func (r *memRepo) EnsureUser(ctx context.Context, id uuid.UUID, name string) (*model.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		return &u, false, nil
	}
	u := model.User{ID: id, Name: name, Role: model.RolePending, CreatedAt: time.Now()}
	r.users[id] = u
	return &u, true, nil
}

func (r *memRepo) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

func (r *memRepo) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			res = append(res, u)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *memRepo) UpdateUserRole(ctx context.Context, id uuid.UUID, from, to model.Role) (bool, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.Role != from {
		return false, nil
	}
	u.Role = to
	r.users[id] = u
	return true, nil
}

func (r *memRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name string, bankName, bankAccount *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.Name = name
	if bankName != nil {
		u.BankName = bankName
	}
	if bankAccount != nil {
		u.BankAccount = bankAccount
	}
	r.users[id] = u
	return nil
}

func (r *memRepo) DeleteEarningsByUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.earnings {
		if e.UserID == userID {
			delete(r.earnings, id)
		}
	}
	return nil
}

func (r *memRepo) DeleteInventoryNeedsByUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.needs {
		if n.UserID == userID {
			delete(r.needs, id)
		}
	}
	return nil
}

func (r *memRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) CreateGame(ctx context.Context, g *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g.ID = uuid.New()
	g.IsActive = true
	r.games[g.ID] = *g
	return nil
}

func (r *memRepo) GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &g, nil
}

func (r *memRepo) ListGames(ctx context.Context, includeArchived bool) ([]model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.Game
	for _, g := range r.games {
		if includeArchived || g.IsActive {
			res = append(res, g)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *memRepo) UpdateGame(ctx context.Context, g *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[g.ID]; !ok {
		return model.ErrNotFound
	}
	r.games[g.ID] = *g
	return nil
}

func (r *memRepo) ArchiveGame(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return model.ErrNotFound
	}
	g.IsActive = false
	r.games[id] = g
	return nil
}

func (r *memRepo) CreateEarning(ctx context.Context, e *model.Earning) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[e.UserID]; !ok {
		return model.ErrNotFound
	}
	e.ID = uuid.New()
	e.Status = model.StatusPending
	r.earnings[e.ID] = *e
	return nil
}

func (r *memRepo) GetEarning(ctx context.Context, id uuid.UUID) (*model.Earning, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.earnings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return r.joinEarning(e), nil
}

func (r *memRepo) joinEarning(e model.Earning) *model.Earning {
	u := r.users[e.UserID]
	e.UserName = u.Name
	e.PayoutDestination = u.PayoutDestination()
	e.GameName = r.games[e.GameID].Name
	e.CurrencyName = r.games[e.GameID].CurrencyName
	return &e
}

func (r *memRepo) ListEarnings(ctx context.Context, f model.ListFilter) ([]model.Earning, error) {
	res := r.listEarnings(f)
	if r.afterListEarnings != nil {
		r.afterListEarnings()
	}
	return res, nil
}

func (r *memRepo) listEarnings(f model.ListFilter) []model.Earning {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.Earning
	for _, e := range r.earnings {
		if f.UserID != uuid.Nil && e.UserID != f.UserID {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		res = append(res, *r.joinEarning(e))
	}
	return res
}

func (r *memRepo) UpdateEarningStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.earnings[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	r.earnings[id] = e
	return true, nil
}

func (r *memRepo) SumNetIncome(ctx context.Context, status model.Status) (decimal.Decimal, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := decimal.Zero
	count := 0
	for _, e := range r.earnings {
		if e.Status == status {
			total = total.Add(e.NetIncome)
			count++
		}
	}
	return total, count, nil
}

func (r *memRepo) CreateInventoryNeed(ctx context.Context, n *model.InventoryNeed) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = uuid.New()
	n.Status = model.StatusPending
	r.needs[n.ID] = *n
	return nil
}

func (r *memRepo) GetInventoryNeed(ctx context.Context, id uuid.UUID) (*model.InventoryNeed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.needs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &n, nil
}

func (r *memRepo) ListInventoryNeeds(ctx context.Context, f model.ListFilter) ([]model.InventoryNeed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.InventoryNeed
	for _, n := range r.needs {
		if f.UserID != uuid.Nil && n.UserID != f.UserID {
			continue
		}
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		n.UserName = r.users[n.UserID].Name
		res = append(res, n)
	}
	return res, nil
}

func (r *memRepo) UpdateInventoryStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.needs[id]
	if !ok || n.Status != from {
		return false, nil
	}
	n.Status = to
	r.needs[id] = n
	return true, nil
}

// stubCache хранит значения в памяти под версией сущности и считает инвалидации.
type stubCache struct {
	mu          sync.Mutex
	values      map[string]any
	versions    map[model.Entity]int64
	invalidated map[model.Entity]int
}

func newStubCache() *stubCache {
	return &stubCache{
		values:      make(map[string]any),
		versions:    make(map[model.Entity]int64),
		invalidated: make(map[model.Entity]int),
	}
}

func stubKey(entity model.Entity, version int64, key string) string {
	return fmt.Sprintf("%s|%d|%s", entity, version, key)
}

func (c *stubCache) Get(ctx context.Context, entity model.Entity, key string, dest any) (bool, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	version := c.versions[entity]
	v, ok := c.values[stubKey(entity, version, key)]
	if !ok {
		return false, version, nil
	}
	switch d := dest.(type) {
	case *[]model.Earning:
		*d = v.([]model.Earning)
	case *[]model.InventoryNeed:
		*d = v.([]model.InventoryNeed)
	case *[]model.Game:
		*d = v.([]model.Game)
	default:
		return false, version, nil
	}
	return true, version, nil
}

func (c *stubCache) Set(ctx context.Context, entity model.Entity, version int64, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[stubKey(entity, version, key)] = value
	return nil
}

func (c *stubCache) Invalidate(ctx context.Context, entity model.Entity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.versions[entity]++
	c.invalidated[entity]++
	return nil
}

func (c *stubCache) invalidations(entity model.Entity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated[entity]
}

// stubIdentity фиксирует удалённые учётные записи.
type stubIdentity struct {
	mu      sync.Mutex
	deleted []uuid.UUID
	err     error
}

func (s *stubIdentity) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, userID)
	return s.err
}
