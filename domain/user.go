package domain

import (
	"time"

	"gorm.io/gorm"
)

const RoleUser = "User"

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Email     string         `gorm:"column:email;unique;not null" json:"email"`
	Password  string         `gorm:"column:password;not null" json:"-"`
	Role      string         `gorm:"column:role;default:User" json:"role"`
	Addresses []Address      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserFields is a partial update. Nil fields are left untouched; Password must
// already be hashed.
type UserFields struct {
	Name     *string
	Email    *string
	Password *string
}

// Apply merges the set fields into u and returns the changed columns.
func (f UserFields) Apply(u *User) []string {
	var columns []string

	if f.Name != nil {
		u.Name = *f.Name
		columns = append(columns, "name")
	}

	if f.Email != nil {
		u.Email = *f.Email
		columns = append(columns, "email")
	}

	if f.Password != nil {
		u.Password = *f.Password
		columns = append(columns, "password")
	}

	return columns
}
