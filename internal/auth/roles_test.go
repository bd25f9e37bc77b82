package auth

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"SUPER_ADMIN", RoleSuperAdmin, false},
		{"admin", RoleAdmin, false},
		{"  Editor  ", RoleEditor, false},
		{"", "", true},
		{"root", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRole(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPermissionTableIsTotal(t *testing.T) {
	for _, action := range Actions {
		if _, ok := permissions[action]; !ok {
			t.Fatalf("action %s missing from permission table", action)
		}
	}
	if len(permissions) != len(Actions) {
		t.Fatalf("permission table has %d rows, want %d", len(permissions), len(Actions))
	}
}

func TestHasPermissionMatrix(t *testing.T) {
	allow := map[Role][]Action{
		RoleEditor: {
			ActionViewProducts, ActionCreateProduct, ActionUpdateProduct,
			ActionViewInquiries, ActionMarkInquiryRead,
		},
		RoleAdmin: {
			ActionViewProducts, ActionCreateProduct, ActionUpdateProduct, ActionDeleteProduct,
			ActionViewInquiries, ActionMarkInquiryRead, ActionDeleteInquiry,
			ActionViewUsers,
		},
		RoleSuperAdmin: Actions,
	}
	for _, role := range Roles {
		allowed := make(map[Action]bool)
		for _, a := range allow[role] {
			allowed[a] = true
		}
		for _, action := range Actions {
			got := HasPermission(role, action)
			if got != allowed[action] {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", role, action, got, allowed[action])
			}
		}
	}
}

func TestHasPermissionUnknownDenies(t *testing.T) {
	if HasPermission(Role("INTERN"), ActionViewProducts) {
		t.Fatal("unknown role must be denied")
	}
	if HasPermission(RoleSuperAdmin, Action("FORMAT_DISK")) {
		t.Fatal("unknown action must be denied")
	}
}
