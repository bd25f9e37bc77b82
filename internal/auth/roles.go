package auth

import (
	"fmt"
	"strings"
)

// Role is one of the fixed privilege levels an admin account can hold.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleEditor     Role = "EDITOR"
)

// Roles lists every valid role.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleEditor}

// ParseRole validates a raw role string against the closed set.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToUpper(raw)))
	for _, r := range Roles {
		if role == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
}

// Action is a named operation gated by role membership.
type Action string

const (
	ActionViewProducts    Action = "VIEW_PRODUCTS"
	ActionCreateProduct   Action = "CREATE_PRODUCT"
	ActionUpdateProduct   Action = "UPDATE_PRODUCT"
	ActionDeleteProduct   Action = "DELETE_PRODUCT"
	ActionViewInquiries   Action = "VIEW_INQUIRIES"
	ActionMarkInquiryRead Action = "MARK_INQUIRY_READ"
	ActionDeleteInquiry   Action = "DELETE_INQUIRY"
	ActionViewUsers       Action = "VIEW_USERS"
	ActionManageUsers     Action = "MANAGE_USERS"
	ActionEditUserRole    Action = "EDIT_USER_ROLE"
	ActionDeleteUser      Action = "DELETE_USER"
)

// Actions lists every gated action. The permission table below must stay
// total over this slice; TestPermissionTableIsTotal enforces it.
var Actions = []Action{
	ActionViewProducts,
	ActionCreateProduct,
	ActionUpdateProduct,
	ActionDeleteProduct,
	ActionViewInquiries,
	ActionMarkInquiryRead,
	ActionDeleteInquiry,
	ActionViewUsers,
	ActionManageUsers,
	ActionEditUserRole,
	ActionDeleteUser,
}

// permissions maps each action to the roles allowed to perform it. Roles are
// listed explicitly per action; the hierarchy SUPER_ADMIN ⊇ ADMIN ⊇ EDITOR
// holds here but is not assumed structurally.
var permissions = map[Action][]Role{
	ActionViewProducts:    {RoleSuperAdmin, RoleAdmin, RoleEditor},
	ActionCreateProduct:   {RoleSuperAdmin, RoleAdmin, RoleEditor},
	ActionUpdateProduct:   {RoleSuperAdmin, RoleAdmin, RoleEditor},
	ActionDeleteProduct:   {RoleSuperAdmin, RoleAdmin},
	ActionViewInquiries:   {RoleSuperAdmin, RoleAdmin, RoleEditor},
	ActionMarkInquiryRead: {RoleSuperAdmin, RoleAdmin, RoleEditor},
	ActionDeleteInquiry:   {RoleSuperAdmin, RoleAdmin},
	ActionViewUsers:       {RoleSuperAdmin, RoleAdmin},
	ActionManageUsers:     {RoleSuperAdmin},
	ActionEditUserRole:    {RoleSuperAdmin},
	ActionDeleteUser:      {RoleSuperAdmin},
}

// HasPermission reports whether role may perform action. Unknown actions and
// unknown roles deny.
func HasPermission(role Role, action Action) bool {
	for _, allowed := range permissions[action] {
		if role == allowed {
			return true
		}
	}
	return false
}
