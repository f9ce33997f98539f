package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	assert.True(t, table.Allows(RoleSuperAdmin, ModuleUserManagement, Delete))
	assert.False(t, table.Allows(RoleMerchantAdmin, ModuleUserManagement, Delete))
	assert.True(t, table.Allows(RoleMerchantAdmin, ModuleAdminPanel, Write))
	assert.False(t, table.Allows(RoleFinance, ModuleAdminPanel, Write))
	assert.True(t, table.Allows(RoleFinance, ModuleFinance, Write))
	assert.False(t, table.Allows("guest", ModuleDashboard, Read))
	assert.False(t, table.HasRole("guest"))

	assert.Equal(t, []string{"delete", "read", "write"}, table.Permissions(RoleSuperAdmin)[ModuleUserManagement])
	assert.Nil(t, table.Permissions("guest"))
}

func TestTableIsImmutable(t *testing.T) {
	grants := Grants{"r": {"m": {Read}}}
	table := NewTable(grants)
	grants["r"]["m"] = append(grants["r"]["m"], Write)

	assert.False(t, table.Allows("r", "m", Write))

	perms := table.Permissions("r")
	perms["m"] = append(perms["m"], "write")
	assert.False(t, table.Allows("r", "m", Write))
}
