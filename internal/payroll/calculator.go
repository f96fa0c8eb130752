// Package payroll содержит расчёт выплат сотрудникам по курсу игровой валюты.
package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

// RoundingMode определяет правило округления до копеек для точных половин.
type RoundingMode int

const (
	// RoundHalfUp округляет половину вверх (от нуля).
	RoundHalfUp RoundingMode = iota
	// RoundHalfEven округляет половину к чётному (банковское округление).
	RoundHalfEven
)

// String возвращает имя режима округления в формате конфигурации.
func (m RoundingMode) String() string {
	if m == RoundHalfEven {
		return "half_even"
	}
	return "half_up"
}

// ParseRoundingMode разбирает режим округления из конфигурации. Пустая строка означает half_up.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_up":
		return RoundHalfUp, nil
	case "half_even", "bankers":
		return RoundHalfEven, nil
	}
	return RoundHalfUp, fmt.Errorf("%w: unknown rounding mode %q", model.ErrInvalidArgument, s)
}

// workerShareDivisor задаёт долю сотрудника в валовом доходе (50/50 с организацией).
const workerShareDivisor = 2

const scale = 2

var (
	two  = decimal.NewFromInt(2)
	cent = decimal.New(1, -scale)
)

// Calculator считает валовой и чистый доход с заданным режимом округления.
type Calculator struct {
	mode RoundingMode
}

// NewCalculator создаёт калькулятор с указанным режимом округления.
func NewCalculator(mode RoundingMode) Calculator {
	return Calculator{mode: mode}
}

// Mode возвращает режим округления калькулятора.
func (c Calculator) Mode() RoundingMode {
	return c.mode
}

// GrossIncome возвращает доход до раздела: amountFarmed / rateUnit * rate, округлённый до копеек.
func (c Calculator) GrossIncome(amountFarmed, rate decimal.Decimal, rateUnit int64) (decimal.Decimal, error) {
	if err := validate(amountFarmed, rate, rateUnit); err != nil {
		return decimal.Zero, err
	}
	return c.divRound(amountFarmed.Mul(rate), decimal.NewFromInt(rateUnit)), nil
}

// NetIncome возвращает долю сотрудника: половину валового дохода, округлённую до копеек.
// Округляется точное значение, а не уже округлённый валовой доход.
func (c Calculator) NetIncome(amountFarmed, rate decimal.Decimal, rateUnit int64) (decimal.Decimal, error) {
	if err := validate(amountFarmed, rate, rateUnit); err != nil {
		return decimal.Zero, err
	}
	den := decimal.NewFromInt(rateUnit).Mul(decimal.NewFromInt(workerShareDivisor))
	return c.divRound(amountFarmed.Mul(rate), den), nil
}

// ComputeNetIncome считает чистый доход с округлением половины вверх.
func ComputeNetIncome(amountFarmed, rate decimal.Decimal, rateUnit int64) (decimal.Decimal, error) {
	return Calculator{}.NetIncome(amountFarmed, rate, rateUnit)
}

// ComputeGrossIncome считает валовой доход с округлением половины вверх.
func ComputeGrossIncome(amountFarmed, rate decimal.Decimal, rateUnit int64) (decimal.Decimal, error) {
	return Calculator{}.GrossIncome(amountFarmed, rate, rateUnit)
}

func validate(amountFarmed, rate decimal.Decimal, rateUnit int64) error {
	if amountFarmed.IsNegative() {
		return fmt.Errorf("%w: amount farmed must be non-negative", model.ErrInvalidArgument)
	}
	if rate.IsNegative() {
		return fmt.Errorf("%w: rate must be non-negative", model.ErrInvalidArgument)
	}
	if rateUnit <= 0 {
		return fmt.Errorf("%w: rate unit must be positive", model.ErrInvalidArgument)
	}
	return nil
}

// divRound делит неотрицательные num на den и округляет до копеек без промежуточной потери точности.
func (c Calculator) divRound(num, den decimal.Decimal) decimal.Decimal {
	q, r := num.QuoRem(den, scale)

	// 0 <= r < den*cent, половина шага округления соответствует 2r == den*cent.
	switch r.Mul(two).Cmp(den.Mul(cent)) {
	case 1:
		q = q.Add(cent)
	case 0:
		if c.mode == RoundHalfUp || q.Shift(scale).BigInt().Bit(0) == 1 {
			q = q.Add(cent)
		}
	}

	return q
}
