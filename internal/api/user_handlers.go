package api

import (
	"net/http"

	"go-catalog/internal/auth"
	"go-catalog/internal/config"
	"go-catalog/internal/db"
	"go-catalog/internal/review"
	"go-catalog/internal/user"

	"github.com/gin-gonic/gin"
)

func serializeUser(u *user.User) gin.H {
	return gin.H{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"bio":        u.Bio,
		"role":       u.Role,
	}
}

// GET /users  [admin only]
func ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var count int64
		if err := db.DB.Model(&user.User{}).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		offset, limit := pagination(c)
		var users []user.User
		if err := db.DB.Order("username").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		results := make([]gin.H, 0, len(users))
		for i := range users {
			results = append(results, serializeUser(&users[i]))
		}
		c.JSON(http.StatusOK, pagedResponse(count, results))
	}
}

type CreateUserRequest struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      user.Role `json:"role"`
}

// POST /users  [admin only]
func CreateUserHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
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
		if req.Role == "" {
			req.Role = user.RoleUser
		}
		if !user.ValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"role": "Unknown role"})
			return
		}
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
		sentinel := cfg.Auth.DefaultCode
		newUser := user.User{
			Username:         req.Username,
			Email:            req.Email,
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			Bio:              req.Bio,
			Role:             req.Role,
			ConfirmationCode: &sentinel,
		}
		if err := db.DB.Create(&newUser).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Create error"))
			return
		}
		c.JSON(http.StatusCreated, serializeUser(&newUser))
	}
}

// GET /users/:username  [admin only]
func GetUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var u user.User
		if err := db.DB.Where("username = ?", c.Param("username")).First(&u).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("User not found"))
			return
		}
		c.JSON(http.StatusOK, serializeUser(&u))
	}
}

type UpdateUserRequest struct {
	Username  *string    `json:"username"`
	Email     *string    `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Bio       *string    `json:"bio"`
	Role      *user.Role `json:"role"`
}

func applyUserPatch(c *gin.Context, cfg *config.Config, u *user.User, req *UpdateUserRequest, allowRole bool) bool {
	if req.Username != nil && *req.Username != u.Username {
		if err := user.ValidateUsername(*req.Username, cfg.Auth.UsernameMaxLength); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"username": err.Error()})
			return false
		}
		var count int64
		if err := db.DB.Model(&user.User{}).Where("username = ?", *req.Username).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return false
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"username": usernameConflictMessage})
			return false
		}
		u.Username = *req.Username
	}
	if req.Email != nil && *req.Email != u.Email {
		if err := user.ValidateEmail(*req.Email, cfg.Auth.EmailMaxLength); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"email": err.Error()})
			return false
		}
		var count int64
		if err := db.DB.Model(&user.User{}).Where("email = ?", *req.Email).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return false
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"email": emailConflictMessage})
			return false
		}
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	// Role is read-only on the self profile.
	if req.Role != nil && allowRole {
		if !user.ValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"role": "Unknown role"})
			return false
		}
		u.Role = *req.Role
	}
	return true
}

// PATCH /users/:username  [admin only]
func UpdateUserHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u user.User
		if err := db.DB.Where("username = ?", c.Param("username")).First(&u).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("User not found"))
			return
		}
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("Invalid request"))
			return
		}
		if !applyUserPatch(c, cfg, &u, &req, true) {
			return
		}
		if err := db.DB.Save(&u).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Update error"))
			return
		}
		c.JSON(http.StatusOK, serializeUser(&u))
	}
}

// DELETE /users/:username  [admin only]
func DeleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var u user.User
		if err := db.DB.Where("username = ?", c.Param("username")).First(&u).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("User not found"))
			return
		}
		// Reviews and comments cascade with their author.
		var reviewIDs []uint
		if err := db.DB.Model(&review.Review{}).Where("author_id = ?", u.ID).Pluck("id", &reviewIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if len(reviewIDs) > 0 {
			if err := db.DB.Where("review_id IN ?", reviewIDs).Delete(&review.Comment{}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
				return
			}
		}
		if err := db.DB.Where("author_id = ?", u.ID).Delete(&review.Comment{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if err := db.DB.Where("author_id = ?", u.ID).Delete(&review.Review{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if err := db.DB.Delete(&u).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// GET /users/me
func GetMeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := auth.Actor(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, errorBody("Not authenticated"))
			return
		}
		c.JSON(http.StatusOK, serializeUser(actor))
	}
}

// PATCH /users/me
func UpdateMeHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := auth.Actor(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, errorBody("Not authenticated"))
			return
		}
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("Invalid request"))
			return
		}
		if !applyUserPatch(c, cfg, actor, &req, false) {
			return
		}
		if err := db.DB.Save(actor).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Update error"))
			return
		}
		c.JSON(http.StatusOK, serializeUser(actor))
	}
}
