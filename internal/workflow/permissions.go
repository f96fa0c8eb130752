package workflow

import (
	"fmt"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

// Action — действие, не являющееся переходом состояния.
type Action string

const (
	ActionViewProfile      Action = "profile.view"
	ActionUpdateProfile    Action = "profile.update"
	ActionViewGames        Action = "games.view"
	ActionManageGames      Action = "games.manage"
	ActionPreviewEarning   Action = "earnings.preview"
	ActionSubmitEarning    Action = "earnings.submit"
	ActionViewOwnRecords   Action = "records.view_own"
	ActionViewAllRecords   Action = "records.view_all"
	ActionRequestInventory Action = "inventory.request"
	ActionManageUsers      Action = "users.manage"
	ActionViewPayroll      Action = "payroll.view"
)

// rolePermissions задаёт права ролей. Пользователь с ролью pending видит только собственный профиль.
var rolePermissions = map[model.Role]map[Action]struct{}{
	model.RolePending: set(
		ActionViewProfile,
	),
	model.RoleEmployee: set(
		ActionViewProfile,
		ActionUpdateProfile,
		ActionViewGames,
		ActionPreviewEarning,
		ActionSubmitEarning,
		ActionViewOwnRecords,
		ActionRequestInventory,
	),
	model.RoleAdmin: set(
		ActionViewProfile,
		ActionUpdateProfile,
		ActionViewGames,
		ActionManageGames,
		ActionPreviewEarning,
		ActionViewOwnRecords,
		ActionViewAllRecords,
		ActionManageUsers,
		ActionViewPayroll,
	),
}

func set(actions ...Action) map[Action]struct{} {
	m := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		m[a] = struct{}{}
	}
	return m
}

// Can сообщает, разрешено ли роли действие.
func Can(role model.Role, action Action) bool {
	_, ok := rolePermissions[role][action]
	return ok
}

// Authorize возвращает ErrUnauthorized, если роли не разрешено действие.
func Authorize(role model.Role, action Action) error {
	if !Can(role, action) {
		return fmt.Errorf("%w: role %q cannot perform %s", model.ErrUnauthorized, role, action)
	}
	return nil
}
