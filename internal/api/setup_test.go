package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-catalog/internal/auth"
	"go-catalog/internal/catalog"
	"go-catalog/internal/config"
	"go-catalog/internal/db"
	"go-catalog/internal/mail"
	"go-catalog/internal/review"
	"go-catalog/internal/user"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test_jwt_secret"
	cfg.ApplyDefaults()
	return cfg
}

func setupTestDB(t *testing.T) *gorm.DB {
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// MIGRATE ALL MODELS USED IN TESTS!
	if err := dbConn.AutoMigrate(
		&user.User{},
		&catalog.Category{},
		&catalog.Genre{},
		&catalog.Title{},
		&review.Review{},
		&review.Comment{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.DB = dbConn
	resetTables(t)
	return dbConn
}

func resetTables(t *testing.T) {
	for _, table := range []string{"comments", "reviews", "title_genres", "titles", "genres", "categories", "users"} {
		if err := db.DB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s table: %v", table, err)
		}
	}
}

func testRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(cfg, nil, &mail.LogMailer{})
}

func seedUser(t *testing.T, username string, role user.Role) user.User {
	u := user.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	if err := db.DB.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedUserWithCode(t *testing.T, username string, code string) user.User {
	u := seedUser(t, username, user.RoleUser)
	u.ConfirmationCode = &code
	if err := db.DB.Save(&u).Error; err != nil {
		t.Fatalf("failed to set confirmation code: %v", err)
	}
	return u
}

func bearerFor(t *testing.T, cfg *config.Config, u user.User) string {
	token, err := auth.GenerateJWT(cfg.Server.JWTSecret, u.ID, u.Username, string(u.Role), time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(r *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
