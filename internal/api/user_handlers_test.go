package api

import (
	"net/http"
	"testing"

	"go-catalog/internal/db"
	"go-catalog/internal/user"
)

func TestUserCollection_AdminOnly(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	admin := seedUser(t, "root", user.RoleAdmin)
	plain := seedUser(t, "alice", user.RoleUser)

	// Even reads are admin only on the user collection.
	w := doJSON(r, "GET", "/api/v1/users", "", bearerFor(t, cfg, plain))
	if w.Code != http.StatusForbidden {
		t.Errorf("plain user should get 403, got %d", w.Code)
	}
	if !contains(w.Body.String(), "Only administrators") {
		t.Errorf("denial should carry the admin predicate's message, got: %s", w.Body.String())
	}

	w = doJSON(r, "GET", "/api/v1/users", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous should get 401, got %d", w.Code)
	}

	w = doJSON(r, "GET", "/api/v1/users", "", bearerFor(t, cfg, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("admin should list users, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "alice") {
		t.Errorf("listing should include seeded users, got: %s", w.Body.String())
	}
}

func TestUserCRUDByUsername(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	admin := seedUser(t, "root", user.RoleAdmin)
	token := bearerFor(t, cfg, admin)

	w := doJSON(r, "POST", "/api/v1/users", `{"username":"carol","email":"carol@x.com","role":"moderator","bio":"hi"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create should return 201, got %d: %s", w.Code, w.Body.String())
	}
	var u user.User
	if err := db.DB.Where("username = ?", "carol").First(&u).Error; err != nil {
		t.Fatalf("created user missing: %v", err)
	}
	if u.Role != user.RoleModerator {
		t.Errorf("role should be assignable by admins, got %q", u.Role)
	}
	if u.ConfirmationCode == nil || *u.ConfirmationCode != cfg.Auth.DefaultCode {
		t.Errorf("administratively created users should carry the sentinel code")
	}

	w = doJSON(r, "GET", "/api/v1/users/carol", "", token)
	if w.Code != http.StatusOK || !contains(w.Body.String(), "carol@x.com") {
		t.Errorf("lookup by username failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, "PATCH", "/api/v1/users/carol", `{"bio":"updated","role":"user"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("patch failed: %d %s", w.Code, w.Body.String())
	}
	db.DB.Where("username = ?", "carol").First(&u)
	if u.Bio != "updated" || u.Role != user.RoleUser {
		t.Errorf("patch not applied: bio=%q role=%q", u.Bio, u.Role)
	}

	w = doJSON(r, "PATCH", "/api/v1/users/carol", `{"role":"emperor"}`, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown role should be rejected, got %d", w.Code)
	}

	w = doJSON(r, "DELETE", "/api/v1/users/carol", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", w.Code, w.Body.String())
	}
	if err := db.DB.Where("username = ?", "carol").First(&u).Error; err == nil {
		t.Errorf("user should be gone after delete")
	}

	w = doJSON(r, "GET", "/api/v1/users/carol", "", token)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted user lookup should be 404, got %d", w.Code)
	}
}

func TestSelfProfile(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	plain := seedUser(t, "alice", user.RoleUser)
	token := bearerFor(t, cfg, plain)

	w := doJSON(r, "GET", "/api/v1/users/me", "", token)
	if w.Code != http.StatusOK || !contains(w.Body.String(), "alice") {
		t.Fatalf("self profile fetch failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, "GET", "/api/v1/users/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous self profile should be 401, got %d", w.Code)
	}

	// Role is read-only on the self profile.
	w = doJSON(r, "PATCH", "/api/v1/users/me", `{"bio":"my bio","role":"admin"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("self patch failed: %d %s", w.Code, w.Body.String())
	}
	var u user.User
	db.DB.Where("username = ?", "alice").First(&u)
	if u.Bio != "my bio" {
		t.Errorf("bio patch not applied, got %q", u.Bio)
	}
	if u.Role != user.RoleUser {
		t.Errorf("self patch must not escalate role, got %q", u.Role)
	}
}
