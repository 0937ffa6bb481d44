// Package authz is the table-driven authorization policy.
// Handlers declare the action they guard; CanPerform answers whether the
// caller's role may do it. Keeping the whole policy in one table makes the
// access matrix reviewable at a glance.
package authz

import (
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
)

// Action names follow "resource:verb".
const (
	ProductView   = "product:view"
	ProductWrite  = "product:write"
	InventoryView = "inventory:view"
	StockAdjust   = "inventory:adjust"
	TxView        = "transaction:view"
	TxCreate      = "transaction:create"
	TxUpdate      = "transaction:update"
	TxConfirm     = "transaction:confirm"
	TxComplete    = "transaction:complete"
	TxCancel      = "transaction:cancel"
	TxDelete      = "transaction:delete"
	DashboardView = "dashboard:view"
	ReportView    = "report:view"
	UserManage    = "user:manage"
)

var policy = map[string]map[string]bool{
	model.RoleOwner: all(),
	model.RoleAdmin: grant(
		ProductView, ProductWrite,
		InventoryView, StockAdjust,
		TxView, TxCreate, TxUpdate, TxConfirm, TxComplete, TxCancel, TxDelete,
		DashboardView, ReportView,
		UserManage,
	),
	model.RoleStaff: grant(
		ProductView,
		InventoryView,
		TxView, TxCreate, TxUpdate, TxDelete,
		DashboardView, ReportView,
	),
	model.RoleWarehouse: grant(
		ProductView,
		InventoryView, StockAdjust,
		TxView,
		DashboardView,
	),
}

// CanPerform reports whether role is allowed to perform action.
// Unknown roles and unknown actions are denied.
func CanPerform(role, action string) bool {
	return policy[role][action]
}

func grant(actions ...string) map[string]bool {
	m := make(map[string]bool, len(actions))
	for _, a := range actions {
		m[a] = true
	}
	return m
}

func all() map[string]bool {
	return grant(
		ProductView, ProductWrite,
		InventoryView, StockAdjust,
		TxView, TxCreate, TxUpdate, TxConfirm, TxComplete, TxCancel, TxDelete,
		DashboardView, ReportView,
		UserManage,
	)
}
