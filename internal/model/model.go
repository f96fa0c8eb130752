// Package model содержит доменные сущности сервиса учёта выплат фарма.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя в системе.
type Role string

const (
	RolePending  Role = "pending"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	switch r {
	case RolePending, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// Status описывает статус заявки (начисления или запроса инвентаря).
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPaid      Status = "paid"
	StatusFulfilled Status = "fulfilled"
)

// Entity определяет тип записи для переходов состояния и кэша списков.
type Entity string

const (
	EntityEarning   Entity = "earning"
	EntityInventory Entity = "inventory"
	EntityUserRole  Entity = "user_role"
	EntityGame      Entity = "game"
)

// Actor описывает вызывающего пользователя: идентификатор из сессии и роль из хранилища.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// User представляет учётную запись сотрудника или администратора.
type User struct {
	ID          uuid.UUID
	Name        string
	Role        Role
	BankName    *string
	BankAccount *string
	CreatedAt   time.Time
}

// PayoutDestination возвращает реквизиты для выплаты или "cash", если реквизиты не заполнены.
func (u User) PayoutDestination() string {
	return PayoutDestination(u.BankName, u.BankAccount)
}

// PayoutDestination форматирует реквизиты выплаты.
func PayoutDestination(bankName, bankAccount *string) string {
	if bankName == nil || bankAccount == nil || *bankName == "" || *bankAccount == "" {
		return "cash"
	}
	return *bankName + " - " + *bankAccount
}

// Game описывает игру и текущий курс её внутриигровой валюты.
type Game struct {
	ID           uuid.UUID
	Name         string
	CurrencyName string
	CurrentRate  decimal.Decimal
	RateUnit     int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Earning описывает отчёт сотрудника о нафармленной валюте.
// AppliedRate, RateUnit и NetIncome фиксируются при создании и не пересчитываются.
type Earning struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	GameID       uuid.UUID
	AmountFarmed decimal.Decimal
	AppliedRate  decimal.Decimal
	RateUnit     int64
	NetIncome    decimal.Decimal
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time

	UserName          string
	PayoutDestination string
	GameName          string
	CurrencyName      string
}

// InventoryNeed описывает запрос сотрудника на покупку предмета.
type InventoryNeed struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ItemName  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	UserName string
}

// ListFilter задаёт фильтр выборки заявок. Нулевые значения полей не ограничивают выборку.
type ListFilter struct {
	UserID uuid.UUID
	Status Status
}

// PayrollSummary содержит итоги по выплатам.
type PayrollSummary struct {
	TotalUnpaid decimal.Decimal
	TotalPaid   decimal.Decimal
	UnpaidCount int
	PaidCount   int
	Unpaid      []Earning
}

// TransitionResult описывает исход перехода состояния.
// Applied = false без ошибки означает, что запись уже находилась в целевом состоянии.
type TransitionResult struct {
	ID      uuid.UUID
	From    string
	To      string
	Applied bool
}

// EarningPreview содержит расчёт дохода по текущему курсу без сохранения.
type EarningPreview struct {
	GameID       uuid.UUID
	CurrencyName string
	AmountFarmed decimal.Decimal
	Rate         decimal.Decimal
	RateUnit     int64
	GrossIncome  decimal.Decimal
	NetIncome    decimal.Decimal
}
