// Package rbac chứa bảng phân quyền tĩnh role → module → các action được phép.
// Bảng được dựng một lần lúc khởi động và không thay đổi sau đó.
package rbac

import "sort"

// Action là thao tác trên một module
type Action string

const (
	Read   Action = "read"
	Write  Action = "write"
	Delete Action = "delete"
)

// Các module được phân quyền
const (
	ModuleUserManagement = "userManagement"
	ModuleFinance        = "finance"
	ModuleAdminPanel     = "adminPanel"
	ModuleDashboard      = "dashboard"
)

// Các role của tài khoản quản trị
const (
	RoleSuperAdmin    = "super_admin"
	RoleMerchantAdmin = "merchant_admin"
	RoleFinance       = "finance"
)

// Table là bảng phân quyền bất biến. Chỉ đọc qua các method.
type Table struct {
	grants map[string]map[string]map[Action]struct{}
}

// Grants là dạng khai báo của bảng: role → module → actions
type Grants map[string]map[string][]Action

// NewTable dựng bảng từ khai báo, sao chép dữ liệu nên thay đổi grants sau đó không ảnh hưởng bảng
func NewTable(grants Grants) *Table {
	t := &Table{grants: make(map[string]map[string]map[Action]struct{}, len(grants))}
	for role, modules := range grants {
		t.grants[role] = make(map[string]map[Action]struct{}, len(modules))
		for module, actions := range modules {
			set := make(map[Action]struct{}, len(actions))
			for _, a := range actions {
				set[a] = struct{}{}
			}
			t.grants[role][module] = set
		}
	}
	return t
}

// DefaultTable là bảng phân quyền mặc định của hệ thống
func DefaultTable() *Table {
	return NewTable(Grants{
		RoleSuperAdmin: {
			ModuleUserManagement: {Read, Write, Delete},
			ModuleFinance:        {Read},
			ModuleAdminPanel:     {Read, Write},
			ModuleDashboard:      {Read},
		},
		RoleMerchantAdmin: {
			ModuleUserManagement: {Read, Write},
			ModuleFinance:        {Read},
			ModuleAdminPanel:     {Read, Write},
			ModuleDashboard:      {Read},
		},
		RoleFinance: {
			ModuleUserManagement: {Read},
			ModuleFinance:        {Read, Write},
			ModuleAdminPanel:     {Read},
			ModuleDashboard:      {Read},
		},
	})
}

// HasRole kiểm tra role có trong bảng không
func (t *Table) HasRole(role string) bool {
	_, ok := t.grants[role]
	return ok
}

// Allows kiểm tra role có được thực hiện action trên module không
func (t *Table) Allows(role, module string, action Action) bool {
	_, ok := t.grants[role][module][action]
	return ok
}

// Permissions trả về bản sao quyền của role, action đã sắp xếp
func (t *Table) Permissions(role string) map[string][]string {
	modules, ok := t.grants[role]
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(modules))
	for module, actions := range modules {
		list := make([]string, 0, len(actions))
		for a := range actions {
			list = append(list, string(a))
		}
		sort.Strings(list)
		out[module] = list
	}
	return out
}
