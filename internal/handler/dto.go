package handler

import (
	"time"

	"github.com/mmeshcher/farm-payroll/internal/model"
	"github.com/mmeshcher/farm-payroll/internal/payroll"
)

// Денежные суммы отдаются строками с двумя знаками после запятой.

type userResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Role              string  `json:"role"`
	BankName          *string `json:"bank_name"`
	BankAccount       *string `json:"bank_account"`
	PayoutDestination string  `json:"payout_destination"`
	CreatedAt         string  `json:"created_at"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:                u.ID.String(),
		Name:              u.Name,
		Role:              string(u.Role),
		BankName:          u.BankName,
		BankAccount:       u.BankAccount,
		PayoutDestination: u.PayoutDestination(),
		CreatedAt:         u.CreatedAt.Format(time.RFC3339),
	}
}

type gameResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrencyName string `json:"currency_name"`
	CurrentRate  string `json:"current_rate"`
	RateUnit     int64  `json:"rate_unit"`
	IsActive     bool   `json:"is_active"`
	UpdatedAt    string `json:"updated_at"`
}

func newGameResponse(g *model.Game) gameResponse {
	return gameResponse{
		ID:           g.ID.String(),
		Name:         g.Name,
		CurrencyName: g.CurrencyName,
		CurrentRate:  g.CurrentRate.String(),
		RateUnit:     g.RateUnit,
		IsActive:     g.IsActive,
		UpdatedAt:    g.UpdatedAt.Format(time.RFC3339),
	}
}

type earningResponse struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	UserName          string `json:"user_name,omitempty"`
	GameID            string `json:"game_id"`
	GameName          string `json:"game_name,omitempty"`
	CurrencyName      string `json:"currency_name,omitempty"`
	AmountFarmed      string `json:"amount_farmed"`
	AppliedRate       string `json:"applied_rate"`
	RateUnit          int64  `json:"rate_unit"`
	NetIncome         string `json:"net_income"`
	NetIncomeDisplay  string `json:"net_income_display"`
	Status            string `json:"status"`
	PayoutDestination string `json:"payout_destination,omitempty"`
	CreatedAt         string `json:"created_at"`
}

func newEarningResponse(e *model.Earning) earningResponse {
	return earningResponse{
		ID:                e.ID.String(),
		UserID:            e.UserID.String(),
		UserName:          e.UserName,
		GameID:            e.GameID.String(),
		GameName:          e.GameName,
		CurrencyName:      e.CurrencyName,
		AmountFarmed:      e.AmountFarmed.String(),
		AppliedRate:       e.AppliedRate.String(),
		RateUnit:          e.RateUnit,
		NetIncome:         e.NetIncome.StringFixed(2),
		NetIncomeDisplay:  payroll.FormatCurrency(e.NetIncome, ""),
		Status:            string(e.Status),
		PayoutDestination: e.PayoutDestination,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
}

func newEarningsResponse(list []model.Earning) []earningResponse {
	resp := make([]earningResponse, 0, len(list))
	for i := range list {
		resp = append(resp, newEarningResponse(&list[i]))
	}
	return resp
}

type previewResponse struct {
	GameID       string `json:"game_id"`
	CurrencyName string `json:"currency_name"`
	AmountFarmed string `json:"amount_farmed"`
	Rate         string `json:"rate"`
	RateUnit     int64  `json:"rate_unit"`
	GrossIncome  string `json:"gross_income"`
	NetIncome    string `json:"net_income"`
}

type inventoryResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	ItemName  string `json:"item_name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func newInventoryResponse(n *model.InventoryNeed) inventoryResponse {
	return inventoryResponse{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		UserName:  n.UserName,
		ItemName:  n.ItemName,
		Status:    string(n.Status),
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

type transitionResponse struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Applied bool   `json:"applied"`
}

type payrollResponse struct {
	TotalUnpaid string            `json:"total_unpaid"`
	TotalPaid   string            `json:"total_paid"`
	UnpaidCount int               `json:"unpaid_count"`
	PaidCount   int               `json:"paid_count"`
	Unpaid      []earningResponse `json:"unpaid"`
}
