package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-catalog/internal/auth"
	"go-catalog/internal/config"
	"go-catalog/internal/db"
	"go-catalog/internal/mail"
	"go-catalog/internal/user"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

const (
	usernameConflictMessage = "A user with this username already exists."
	emailConflictMessage    = "A user with this email already exists."
	invalidCodeMessage      = "Invalid code, request a new one."
)

// POST /auth/signup
//
// Idempotent: resubmitting the same (username, email) pair reuses the user
// row but issues a fresh confirmation code, invalidating any outstanding
// one. A collision on only one of the two fields is a per-field conflict.
func SignupHandler(cfg *config.Config, mailer mail.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("Invalid request"))
			return
		}
		if err := user.ValidateUsername(req.Username, cfg.Auth.UsernameMaxLength); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"username": err.Error()})
			return
		}
		if err := user.ValidateEmail(req.Email, cfg.Auth.EmailMaxLength); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"email": err.Error()})
			return
		}

		var u user.User
		err := db.DB.Where("username = ? AND email = ?", req.Username, req.Email).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var count int64
			if err := db.DB.Model(&user.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("DB error"))
				return
			}
			if count > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"username": usernameConflictMessage})
				return
			}
			if err := db.DB.Model(&user.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("DB error"))
				return
			}
			if count > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"email": emailConflictMessage})
				return
			}
			u = user.User{Username: req.Username, Email: req.Email, Role: user.RoleUser}
			if err := db.DB.Create(&u).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("Create error"))
				return
			}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return
		}

		code, err := auth.GenerateCode(cfg.Auth.CodeAlphabet, cfg.Auth.CodeLength)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Failed to generate confirmation code"))
			return
		}
		u.ConfirmationCode = &code
		if err := db.DB.Save(&u).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Update error"))
			return
		}

		// Delivery outcome is not reported back; only transport failure is.
		if err := mailer.Send(
			req.Email,
			"Account confirmation",
			fmt.Sprintf("Confirmation code: %s", code),
		); err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Failed to send confirmation email"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"username": req.Username, "email": req.Email})
	}
}

type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// POST /auth/token
//
// Two-branch guard, order matters: a stored sentinel means the code was
// already consumed and is rejected no matter what was submitted (even the
// sentinel itself); a mismatch against a live code burns it so a single
// wrong guess forces a fresh signup. All rejections share one message so
// the two cases are indistinguishable to the caller.
func TokenHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ConfirmationCode == "" {
			c.JSON(http.StatusBadRequest, errorBody("Invalid request"))
			return
		}
		if err := user.ValidateUsername(req.Username, cfg.Auth.UsernameMaxLength); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"username": err.Error()})
			return
		}

		var u user.User
		if err := db.DB.Where("username = ?", req.Username).First(&u).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("User not found"))
			return
		}

		stored := cfg.Auth.DefaultCode
		if u.ConfirmationCode != nil {
			stored = *u.ConfirmationCode
		}
		if stored != cfg.Auth.DefaultCode {
			if stored == req.ConfirmationCode {
				token, err := auth.GenerateJWT(
					cfg.Server.JWTSecret,
					u.ID,
					u.Username,
					string(u.Role),
					time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
				)
				if err != nil {
					c.JSON(http.StatusInternalServerError, errorBody("Failed to generate token"))
					return
				}
				// The stored code stays live after a successful mint;
				// only a wrong guess below burns it.
				c.JSON(http.StatusOK, gin.H{"token": token})
				return
			}
			sentinel := cfg.Auth.DefaultCode
			u.ConfirmationCode = &sentinel
			if err := db.DB.Save(&u).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("Update error"))
				return
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{"confirmation_code": invalidCodeMessage})
	}
}
