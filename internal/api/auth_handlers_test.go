package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"go-catalog/internal/auth"
	"go-catalog/internal/db"
	"go-catalog/internal/user"
)

func TestSignupHandler_CreatesUserAndIssuesCode(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)

	w := doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"bob","email":"bob@x.com"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "bob@x.com") {
		t.Errorf("response should echo the request payload, got: %s", w.Body.String())
	}

	var u user.User
	if err := db.DB.Where("username = ?", "bob").First(&u).Error; err != nil {
		t.Fatalf("user was not created: %v", err)
	}
	if u.ConfirmationCode == nil {
		t.Fatalf("confirmation code was not assigned")
	}
	code := *u.ConfirmationCode
	if len(code) != cfg.Auth.CodeLength {
		t.Errorf("expected code of length %d, got %q", cfg.Auth.CodeLength, code)
	}
	if code == cfg.Auth.DefaultCode {
		t.Errorf("a fresh code must not equal the sentinel")
	}
	for _, c := range code {
		if !strings.ContainsRune(cfg.Auth.CodeAlphabet, c) {
			t.Errorf("code character %q not in configured alphabet", c)
		}
	}
}

func TestSignupHandler_IdempotentButReissuesCode(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)

	if w := doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"bob","email":"bob@x.com"}`, ""); w.Code != http.StatusOK {
		t.Fatalf("first signup failed: %d", w.Code)
	}
	var first user.User
	if err := db.DB.Where("username = ?", "bob").First(&first).Error; err != nil {
		t.Fatalf("user missing: %v", err)
	}
	firstCode := *first.ConfirmationCode

	if w := doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"bob","email":"bob@x.com"}`, ""); w.Code != http.StatusOK {
		t.Fatalf("repeat signup should be idempotent, got %d", w.Code)
	}
	var second user.User
	if err := db.DB.Where("username = ?", "bob").First(&second).Error; err != nil {
		t.Fatalf("user missing after repeat signup: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat signup should reuse the same user row")
	}
	if *second.ConfirmationCode == firstCode {
		t.Errorf("repeat signup should issue a fresh code, invalidating the old one")
	}

	var count int64
	db.DB.Model(&user.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one user, got %d", count)
	}
}

func TestSignupHandler_FieldConflicts(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	seedUser(t, "bob", user.RoleUser) // bob@example.com

	w := doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"bob","email":"other@x.com"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("username collision should be a 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid conflict body: %v", err)
	}
	if _, ok := body["username"]; !ok {
		t.Errorf("conflict should be tagged by the username field, got: %s", w.Body.String())
	}

	w = doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"carol","email":"bob@example.com"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("email collision should be a 400, got %d", w.Code)
	}
	body = nil
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid conflict body: %v", err)
	}
	if _, ok := body["email"]; !ok {
		t.Errorf("conflict should be tagged by the email field, got: %s", w.Body.String())
	}

	var count int64
	db.DB.Model(&user.User{}).Count(&count)
	if count != 1 {
		t.Errorf("conflicting signups must not create users, got %d", count)
	}
}

func TestSignupHandler_ValidationFailures(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)

	w := doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"me","email":"me@x.com"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reserved username should be a 400, got %d", w.Code)
	}
	if !contains(w.Body.String(), "forbidden") {
		t.Errorf("reserved-name error should mention the rule, got: %s", w.Body.String())
	}

	w = doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"bad name!","email":"bad@x.com"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad characters should be a 400, got %d", w.Code)
	}
	if !contains(w.Body.String(), "invalid characters") {
		t.Errorf("charset error should name the rule, got: %s", w.Body.String())
	}

	w = doJSON(r, "POST", "/api/v1/auth/signup", `{"username":"dave","email":"not-an-email"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad email should be a 400, got %d", w.Code)
	}

	var count int64
	db.DB.Model(&user.User{}).Count(&count)
	if count != 0 {
		t.Errorf("validation failures must never mutate the store, got %d users", count)
	}
}

func TestTokenHandler_UnknownUser(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)

	w := doJSON(r, "POST", "/api/v1/auth/token", `{"username":"ghost","confirmation_code":"ABC123"}`, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown username should be a 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTokenHandler_SentinelAlwaysRejected(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	seedUserWithCode(t, "bob", cfg.Auth.DefaultCode)

	// Submitting the sentinel itself must not slip through.
	w := doJSON(r, "POST", "/api/v1/auth/token", `{"username":"bob","confirmation_code":"`+cfg.Auth.DefaultCode+`"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("consumed code should be rejected, got %d", w.Code)
	}
	if !contains(w.Body.String(), invalidCodeMessage) {
		t.Errorf("rejection should carry the uniform message, got: %s", w.Body.String())
	}
}

func TestTokenHandler_SuccessMintsToken(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	u := seedUserWithCode(t, "bob", "XY12AB")

	w := doJSON(r, "POST", "/api/v1/auth/token", `{"username":"bob","confirmation_code":"XY12AB"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("expected a token in the response, got: %s", w.Body.String())
	}
	claims, err := auth.ParseJWT(cfg.Server.JWTSecret, body.Token)
	if err != nil {
		t.Fatalf("minted token does not parse: %v", err)
	}
	if claims.UserID != u.ID || claims.Username != "bob" {
		t.Errorf("token should be bound to the user, got claims %+v", claims)
	}
}

func TestTokenHandler_RepeatedExchangeSucceeds(t *testing.T) {
	// The stored code is not burned on success: it stays valid until a
	// wrong guess invalidates it. This is the implemented behavior, not
	// an accident of the test.
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	seedUserWithCode(t, "bob", "XY12AB")

	for i := 0; i < 3; i++ {
		w := doJSON(r, "POST", "/api/v1/auth/token", `{"username":"bob","confirmation_code":"XY12AB"}`, "")
		if w.Code != http.StatusOK {
			t.Fatalf("exchange %d should succeed with a still-live code, got %d", i+1, w.Code)
		}
	}
	var u user.User
	db.DB.Where("username = ?", "bob").First(&u)
	if u.ConfirmationCode == nil || *u.ConfirmationCode != "XY12AB" {
		t.Errorf("successful exchange must not reset the stored code")
	}
}

func TestTokenHandler_WrongGuessBurnsCode(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	r := testRouter(cfg)
	seedUserWithCode(t, "bob", "XY12AB")

	w := doJSON(r, "POST", "/api/v1/auth/token", `{"username":"bob","confirmation_code":"WRONG1"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong code should be a 400, got %d", w.Code)
	}
	if !contains(w.Body.String(), invalidCodeMessage) {
		t.Errorf("rejection should carry the uniform message, got: %s", w.Body.String())
	}

	var u user.User
	db.DB.Where("username = ?", "bob").First(&u)
	if u.ConfirmationCode == nil || *u.ConfirmationCode != cfg.Auth.DefaultCode {
		t.Fatalf("a wrong guess should reset the stored code to the sentinel")
	}

	// The originally-correct code is now burned too.
	w = doJSON(r, "POST", "/api/v1/auth/token", `{"username":"bob","confirmation_code":"XY12AB"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("burned code should stay rejected, got %d", w.Code)
	}
}
