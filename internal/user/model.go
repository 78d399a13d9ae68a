package user

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account row. ResetToken and ResetTokenExpiresAt are written and
// cleared together; ResetToken holds the SHA-256 of the token mailed out.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email               string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash        string     `gorm:"column:password;size:128;not null" json:"-"`
	Role                Role       `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	Bio                 string     `gorm:"type:text" json:"bio"`
	Avatar              string     `gorm:"size:512" json:"avatar"`
	Address             string     `gorm:"size:512" json:"address"`
	ResetToken          *string    `gorm:"column:reset_password_token;size:64;index" json:"-"`
	ResetTokenExpiresAt *time.Time `gorm:"column:reset_password_expires" json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Profile is the client-facing view of a User.
type Profile struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdate carries the self-editable fields. Nil fields are left alone.
type ProfileUpdate struct {
	Bio     *string `json:"bio"`
	Avatar  *string `json:"avatar"`
	Address *string `json:"address"`
}

func (p ProfileUpdate) columns() map[string]any {
	cols := map[string]any{}
	if p.Bio != nil {
		cols["bio"] = *p.Bio
	}
	if p.Avatar != nil {
		cols["avatar"] = *p.Avatar
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	return cols
}
