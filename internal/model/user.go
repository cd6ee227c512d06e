package model

import "strings"

type UserRole string

const (
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('instructor','admin');default:'instructor'" json:"role"`
	// Classes is a comma-separated list of class ids the instructor may view.
	// Admins may view everything regardless.
	Classes string `gorm:"size:255" json:"classes"`
}

// CanAccessClass reports whether the user may view data for a class.
// Unauthenticated demo requests pass a nil user and are allowed.
func (u *User) CanAccessClass(classID string) bool {
	if u == nil || u.Role == RoleAdmin {
		return true
	}
	for _, part := range strings.Split(u.Classes, ",") {
		if strings.EqualFold(strings.TrimSpace(part), classID) {
			return true
		}
	}
	return false
}
