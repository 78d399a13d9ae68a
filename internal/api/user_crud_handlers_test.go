package api

import (
	"fmt"
	"net/http"
	"testing"

	"nearmex/internal/user"
)

func TestListUsers_AdminOnly(t *testing.T) {
	e := newTestEnv(t)
	_, userToken := e.seedUser(t, "ana", user.RoleUser)
	_, adminToken := e.seedUser(t, "boss", user.RoleAdmin)

	if w := e.do(t, "GET", "/admin/users", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
	if w := e.do(t, "GET", "/admin/users", userToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", w.Code)
	}
	w := e.do(t, "GET", "/admin/users", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
	var list []user.Profile
	decode(t, w, &list)
	if len(list) != 2 {
		t.Errorf("expected 2 users, got %d", len(list))
	}
}

func TestSetUserRole(t *testing.T) {
	e := newTestEnv(t)
	anaID, anaToken := e.seedUser(t, "ana", user.RoleUser)
	bossID, adminToken := e.seedUser(t, "boss", user.RoleAdmin)

	path := fmt.Sprintf("/admin/users/%d/role", anaID)
	if w := e.do(t, "PUT", path, anaToken, map[string]string{"role": "admin"}); w.Code != http.StatusForbidden {
		t.Errorf("a user cannot promote themselves, got %d", w.Code)
	}
	if w := e.do(t, "PUT", path, adminToken, map[string]string{"role": "root"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown role, got %d", w.Code)
	}
	if w := e.do(t, "PUT", "/admin/users/999/role", adminToken, map[string]string{"role": "admin"}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing user, got %d", w.Code)
	}
	self := fmt.Sprintf("/admin/users/%d/role", bossID)
	if w := e.do(t, "PUT", self, adminToken, map[string]string{"role": "user"}); w.Code != http.StatusBadRequest {
		t.Errorf("admin must not demote themselves, got %d", w.Code)
	}

	if w := e.do(t, "PUT", path, adminToken, map[string]string{"role": "admin"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	// The old token still says "user" until ana logs in again.
	if w := e.do(t, "GET", "/admin/users", anaToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("existing token keeps its role, got %d", w.Code)
	}
	fresh := e.login(t, "ana@x.com", "password1")
	if w := e.do(t, "GET", "/admin/users", fresh.Token, nil); w.Code != http.StatusOK {
		t.Errorf("new token should carry admin role, got %d", w.Code)
	}
}
