package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                    "/",
		"/metrics":                            "/metrics",
		"/v1/products/01J3ZX":                 "/v1/products/:id",
		"/v1/admin/products/01J3ZX":           "/v1/admin/products/:id",
		"/v1/admin/inquiries/01J3ZX/read":     "/v1/admin/inquiries/:id/read",
		"/v1/admin/users/01J3ZX/role":         "/v1/admin/users/:id/role",
		"/v1/admin/inquiries":                 "/v1/admin/inquiries",
		"/v1/admin/inquiries?status=new":      "/v1/admin/inquiries",
		"/v1/admin/inquiries/01J3ZX?x=1":      "/v1/admin/inquiries/:id",
		"/v1/admin/login":                     "/v1/admin/login",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
