// Package workflow описывает допустимые переходы состояний заявок и ролей
// и права ролей на их выполнение. Все проверки выполняются по таблицам без обращения к хранилищу.
package workflow

import (
	"fmt"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

// Transition описывает переход записи сущности из одного состояния в другое.
type Transition struct {
	Entity model.Entity
	From   string
	To     string
}

func (t Transition) String() string {
	return fmt.Sprintf("%s %s -> %s", t.Entity, t.From, t.To)
}

type grant struct {
	role       model.Role
	transition Transition
}

func earning(from, to model.Status) Transition {
	return Transition{Entity: model.EntityEarning, From: string(from), To: string(to)}
}

func inventory(from, to model.Status) Transition {
	return Transition{Entity: model.EntityInventory, From: string(from), To: string(to)}
}

func userRole(from, to model.Role) Transition {
	return Transition{Entity: model.EntityUserRole, From: string(from), To: string(to)}
}

// transitions — полный набор допустимых переходов. Всё, что не перечислено, запрещено.
var transitions = map[Transition]struct{}{
	earning(model.StatusPending, model.StatusApproved): {},
	earning(model.StatusPending, model.StatusRejected): {},
	earning(model.StatusApproved, model.StatusPaid):    {},

	inventory(model.StatusPending, model.StatusApproved):   {},
	inventory(model.StatusPending, model.StatusFulfilled):  {},
	inventory(model.StatusPending, model.StatusRejected):   {},
	inventory(model.StatusApproved, model.StatusFulfilled): {},

	userRole(model.RolePending, model.RoleEmployee): {},
	userRole(model.RolePending, model.RoleAdmin):    {},
	userRole(model.RoleEmployee, model.RoleAdmin):   {},
	userRole(model.RoleAdmin, model.RoleEmployee):   {},
}

// grants задаёт права ролей на переходы. Сейчас все переходы доступны только администратору.
var grants = func() map[grant]struct{} {
	m := make(map[grant]struct{}, len(transitions))
	for t := range transitions {
		m[grant{role: model.RoleAdmin, transition: t}] = struct{}{}
	}
	return m
}()

// Allowed сообщает, входит ли переход в набор допустимых для сущности.
func Allowed(t Transition) bool {
	_, ok := transitions[t]
	return ok
}

// CanTransition сообщает, может ли роль выполнить переход. Неизвестные роли и переходы запрещены.
func CanTransition(role model.Role, entity model.Entity, from, to string) bool {
	t := Transition{Entity: entity, From: from, To: to}
	if !Allowed(t) {
		return false
	}
	_, ok := grants[grant{role: role, transition: t}]
	return ok
}

// Check проверяет переход для роли: сначала допустимость самого перехода, затем права роли.
func Check(role model.Role, t Transition) error {
	if !Allowed(t) {
		return fmt.Errorf("%w: %s is not allowed", model.ErrInvalidState, t)
	}
	if !CanTransition(role, t.Entity, t.From, t.To) {
		return fmt.Errorf("%w: role %q cannot perform %s", model.ErrUnauthorized, role, t)
	}
	return nil
}

// Sources возвращает состояния, из которых допустим переход сущности в состояние to.
func Sources(entity model.Entity, to string) []string {
	var res []string
	for t := range transitions {
		if t.Entity == entity && t.To == to {
			res = append(res, t.From)
		}
	}
	return res
}

// IsTerminal сообщает, что из состояния нет ни одного перехода.
func IsTerminal(entity model.Entity, state string) bool {
	for t := range transitions {
		if t.Entity == entity && t.From == state {
			return false
		}
	}
	return true
}

// HasState сообщает, участвует ли состояние хотя бы в одном переходе сущности.
func HasState(entity model.Entity, state string) bool {
	for t := range transitions {
		if t.Entity == entity && (t.From == state || t.To == state) {
			return true
		}
	}
	return false
}
