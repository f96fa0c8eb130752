// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

// minNameLength задаёт минимальную длину имени пользователя и названия предмета в символах.
const minNameLength = 2

// Name обрезает пробелы и проверяет, что имя содержит не менее двух символов.
func Name(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if utf8.RuneCountInString(v) < minNameLength {
		return "", fmt.Errorf("%w: %s must be at least %d characters", model.ErrInvalidArgument, field, minNameLength)
	}
	return v, nil
}

// Required обрезает пробелы и проверяет, что значение не пустое.
func Required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", model.ErrInvalidArgument, field)
	}
	return v, nil
}

// Optional обрезает пробелы и возвращает nil для пустого значения.
func Optional(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

// Positive проверяет, что значение строго больше нуля.
func Positive(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", model.ErrInvalidArgument, field)
	}
	return nil
}

// PositiveInt проверяет, что целое значение строго больше нуля.
func PositiveInt(field string, value int64) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be greater than zero", model.ErrInvalidArgument, field)
	}
	return nil
}
