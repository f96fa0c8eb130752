// Package handler содержит HTTP-обработчики API сервиса учёта выплат.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/middleware"
	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	EnsureUser(ctx context.Context, id uuid.UUID, name string) (*model.User, error)
	ResolveActor(ctx context.Context, id uuid.UUID) (model.Actor, error)
	Me(ctx context.Context, actor model.Actor) (*model.User, error)
	UpdateProfile(ctx context.Context, actor model.Actor, name, bankName, bankAccount string) (*model.User, error)

	ListGames(ctx context.Context, actor model.Actor, includeArchived bool) ([]model.Game, error)
	CreateGame(ctx context.Context, actor model.Actor, in service.GameInput) (*model.Game, error)
	UpdateGame(ctx context.Context, actor model.Actor, id uuid.UUID, in service.GameInput) (*model.Game, error)
	ArchiveGame(ctx context.Context, actor model.Actor, id uuid.UUID) error

	PreviewEarning(ctx context.Context, actor model.Actor, gameID uuid.UUID, amount decimal.Decimal) (*model.EarningPreview, error)
	SubmitEarning(ctx context.Context, actor model.Actor, gameID uuid.UUID, amount decimal.Decimal) (*model.Earning, error)
	ListEarnings(ctx context.Context, actor model.Actor, f model.ListFilter) ([]model.Earning, error)
	ApproveEarning(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error)
	RejectEarning(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error)
	MarkEarningPaid(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error)

	RequestInventory(ctx context.Context, actor model.Actor, itemName string) (*model.InventoryNeed, error)
	ListInventoryNeeds(ctx context.Context, actor model.Actor, f model.ListFilter) ([]model.InventoryNeed, error)
	ApproveInventory(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error)
	FulfillInventory(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error)
	RejectInventory(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error)

	ListUsers(ctx context.Context, actor model.Actor, role model.Role) ([]model.User, error)
	ApproveUser(ctx context.Context, actor model.Actor, userID uuid.UUID, role model.Role) (*model.TransitionResult, error)
	ChangeUserRole(ctx context.Context, actor model.Actor, userID uuid.UUID, role model.Role) (*model.TransitionResult, error)
	DeleteUser(ctx context.Context, actor model.Actor, userID uuid.UUID) error

	PayrollSummary(ctx context.Context, actor model.Actor) (*model.PayrollSummary, error)
}

// Handler реализует HTTP-обработчики API сервиса учёта выплат.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type actorKey struct{}

// ActorMiddleware загружает роль пользователя из сессии и добавляет model.Actor в контекст.
// Пользователь без записи в хранилище получает 401 и должен вызвать /api/auth/sync.
func (h *Handler) ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		actor, err := h.service.ResolveActor(r.Context(), userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				writeErrorMessage(w, http.StatusUnauthorized, "user is not registered")
				return
			}
			h.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}

// withActor адаптирует обработчик, которому нужен вызывающий пользователь.
func (h *Handler) withActor(fn func(w http.ResponseWriter, r *http.Request, actor model.Actor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		fn(w, r, actor)
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", model.ErrInvalidArgument)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body too large", model.ErrInvalidArgument)
	}
	return fmt.Errorf("%w: malformed request body", model.ErrInvalidArgument)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SyncUser создаёт запись пользователя после входа через провайдера идентификации.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.service.EnsureUser(r.Context(), id.UserID, id.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

// Healthz сообщает, что процесс жив.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
