package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
)

func TestCanPerform_TransactionLifecycle(t *testing.T) {
	// Confirm/complete are ADMIN/OWNER actions.
	assert.True(t, CanPerform(model.RoleOwner, TxConfirm))
	assert.True(t, CanPerform(model.RoleAdmin, TxComplete))
	assert.False(t, CanPerform(model.RoleStaff, TxConfirm))
	assert.False(t, CanPerform(model.RoleWarehouse, TxComplete))

	// Staff may draft and edit but not push the state machine forward.
	assert.True(t, CanPerform(model.RoleStaff, TxCreate))
	assert.True(t, CanPerform(model.RoleStaff, TxUpdate))
	assert.False(t, CanPerform(model.RoleStaff, TxCancel))
}

func TestCanPerform_StockAdjust(t *testing.T) {
	assert.True(t, CanPerform(model.RoleWarehouse, StockAdjust))
	assert.True(t, CanPerform(model.RoleAdmin, StockAdjust))
	assert.True(t, CanPerform(model.RoleOwner, StockAdjust))
	assert.False(t, CanPerform(model.RoleStaff, StockAdjust))
}

func TestCanPerform_UserManagement(t *testing.T) {
	assert.True(t, CanPerform(model.RoleOwner, UserManage))
	assert.True(t, CanPerform(model.RoleAdmin, UserManage))
	assert.False(t, CanPerform(model.RoleStaff, UserManage))
	assert.False(t, CanPerform(model.RoleWarehouse, UserManage))
}

func TestCanPerform_UnknownRoleOrActionDenied(t *testing.T) {
	assert.False(t, CanPerform("INTERN", ProductView))
	assert.False(t, CanPerform(model.RoleOwner, "product:obliterate"))
	assert.False(t, CanPerform("", ""))
}
