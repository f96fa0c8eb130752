package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/service"
)

// Me возвращает профиль текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	u, err := h.service.Me(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

type profileRequest struct {
	Name        string `json:"name"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
}

// UpdateProfile обновляет имя и реквизиты текущего пользователя.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), actor, req.Name, req.BankName, req.BankAccount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

// ListGames возвращает список игр.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	archived := false
	if v := r.URL.Query().Get("archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: archived must be a boolean", model.ErrInvalidArgument))
			return
		}
		archived = b
	}

	games, err := h.service.ListGames(r.Context(), actor, archived)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]gameResponse, 0, len(games))
	for i := range games {
		resp = append(resp, newGameResponse(&games[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

type gameRequest struct {
	Name         string          `json:"name"`
	CurrencyName string          `json:"currency_name"`
	CurrentRate  decimal.Decimal `json:"current_rate"`
	RateUnit     int64           `json:"rate_unit"`
}

func (req gameRequest) input() service.GameInput {
	return service.GameInput{
		Name:         req.Name,
		CurrencyName: req.CurrencyName,
		CurrentRate:  req.CurrentRate,
		RateUnit:     req.RateUnit,
	}
}

// CreateGame добавляет игру.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req gameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	g, err := h.service.CreateGame(r.Context(), actor, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGameResponse(g))
}

// UpdateGame изменяет игру.
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req gameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	g, err := h.service.UpdateGame(r.Context(), actor, id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(g))
}

// ArchiveGame переводит игру в архив.
func (h *Handler) ArchiveGame(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.ArchiveGame(r.Context(), actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type earningRequest struct {
	GameID       uuid.UUID       `json:"game_id"`
	AmountFarmed decimal.Decimal `json:"amount_farmed"`
}

// PreviewEarning рассчитывает доход без сохранения.
func (h *Handler) PreviewEarning(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req earningRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.service.PreviewEarning(r.Context(), actor, req.GameID, req.AmountFarmed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{
		GameID:       p.GameID.String(),
		CurrencyName: p.CurrencyName,
		AmountFarmed: p.AmountFarmed.String(),
		Rate:         p.Rate.String(),
		RateUnit:     p.RateUnit,
		GrossIncome:  p.GrossIncome.StringFixed(2),
		NetIncome:    p.NetIncome.StringFixed(2),
	})
}

// SubmitEarning сохраняет отчёт о нафармленной валюте.
func (h *Handler) SubmitEarning(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req earningRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	e, err := h.service.SubmitEarning(r.Context(), actor, req.GameID, req.AmountFarmed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEarningResponse(e))
}

func listFilter(r *http.Request) (model.ListFilter, error) {
	q := r.URL.Query()
	f := model.ListFilter{Status: model.Status(q.Get("status"))}
	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("%w: invalid user_id", model.ErrInvalidArgument)
		}
		f.UserID = id
	}
	return f, nil
}

// ListEarnings возвращает начисления по фильтру.
func (h *Handler) ListEarnings(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	f, err := listFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.service.ListEarnings(r.Context(), actor, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEarningsResponse(list))
}

type inventoryRequest struct {
	ItemName string `json:"item_name"`
}

// RequestInventory создаёт запрос на предмет.
func (h *Handler) RequestInventory(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req inventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	n, err := h.service.RequestInventory(r.Context(), actor, req.ItemName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newInventoryResponse(n))
}

// ListInventoryNeeds возвращает запросы инвентаря по фильтру.
func (h *Handler) ListInventoryNeeds(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	f, err := listFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.service.ListInventoryNeeds(r.Context(), actor, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]inventoryResponse, 0, len(list))
	for i := range list {
		resp = append(resp, newInventoryResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

type transitionFunc func(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error)

// transition строит обработчик перехода состояния записи из пути /{id}/...
func (h *Handler) transition(fn transitionFunc) func(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	return func(w http.ResponseWriter, r *http.Request, actor model.Actor) {
		id, err := pathID(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		res, err := fn(r.Context(), actor, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, transitionResponse{
			ID:      res.ID.String(),
			From:    res.From,
			To:      res.To,
			Applied: res.Applied,
		})
	}
}

// ListUsers возвращает пользователей, при необходимости с фильтром по роли.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	users, err := h.service.ListUsers(r.Context(), actor, model.Role(r.URL.Query().Get("role")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

type roleRequest struct {
	Role model.Role `json:"role"`
}

// ApproveUser назначает роль ожидающему пользователю. Тело запроса необязательно.
func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, bodyError(err))
		return
	}

	h.transition(func(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
		return h.service.ApproveUser(ctx, actor, id, req.Role)
	})(w, r, actor)
}

// ChangeUserRole меняет роль пользователя между employee и admin.
func (h *Handler) ChangeUserRole(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.transition(func(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransitionResult, error) {
		return h.service.ChangeUserRole(ctx, actor, id, req.Role)
	})(w, r, actor)
}

// DeleteUser удаляет пользователя и его записи.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PayrollSummary возвращает итоги по выплатам.
func (h *Handler) PayrollSummary(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	s, err := h.service.PayrollSummary(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payrollResponse{
		TotalUnpaid: s.TotalUnpaid.StringFixed(2),
		TotalPaid:   s.TotalPaid.StringFixed(2),
		UnpaidCount: s.UnpaidCount,
		PaidCount:   s.PaidCount,
		Unpaid:      newEarningsResponse(s.Unpaid),
	})
}
