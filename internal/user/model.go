package user

import (
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// ValidRole reports whether r is one of the three assignable roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleUser
}

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Bio       string `json:"bio"`
	Role      Role   `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	IsStaff   bool   `gorm:"not null;default:false" json:"-"`
	// ConfirmationCode holds a live one-time code, the configured sentinel
	// once a code has been consumed, or null.
	ConfirmationCode *string   `gorm:"size:64" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IsAdmin is derived: staff users count as admins regardless of role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
