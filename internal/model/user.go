package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// User represents an application user record as stored in the `users`
// table. Users log in with their employee number.
//
// Fields:
//
//	ID             – primary key identifier.
//	Name           – display name, stored as users.username.
//	Email          – optional contact address.
//	Role           – employee, executive or admin.
//	EmployeeNumber – unique login identifier.
//	PasswordHash   – bcrypt hash; never serialized.
type User struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"column:username;size:50;not null" json:"username"`
	Email          *string   `gorm:"size:100" json:"email"`
	Role           Role      `gorm:"type:varchar(16);not null" json:"role"`
	EmployeeNumber string    `gorm:"size:32;not null;uniqueIndex" json:"employee_number"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserInput is the body of a user creation request.
type UserInput struct {
	Name           string  `json:"username" form:"username" validate:"required,max=50"`
	Email          *string `json:"email" form:"email" validate:"omitempty,email,max=100"`
	Role           Role    `json:"role" form:"role"`
	EmployeeNumber string  `json:"employee_number" form:"employee_number" validate:"required,max=32"`
	Password       string  `json:"password" form:"password" validate:"required,min=1"`
}

// Normalize trims identifiers and defaults the role to employee.
func (in *UserInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.EmployeeNumber = strings.TrimSpace(in.EmployeeNumber)
	if in.Role == 0 {
		in.Role = RoleEmployee
	}
}

// UserPatch carries a partial user update.
type UserPatch struct {
	Name           Optional[string]  `json:"username"`
	Email          Optional[*string] `json:"email"`
	Role           Optional[Role]    `json:"role"`
	EmployeeNumber Optional[string]  `json:"employee_number"`
	Password       Optional[string]  `json:"password"`
}

// Apply copies the set fields onto u. The password is left to the caller,
// which owns hashing.
func (p UserPatch) Apply(u *User) error {
	if p.Name.Set {
		name := strings.TrimSpace(p.Name.Value)
		if p.Name.Null || name == "" || utf8.RuneCountInString(name) > 50 {
			return invalid("username", "must be 1 to 50 characters")
		}
		u.Name = name
	}
	if p.Email.Set {
		u.Email = p.Email.Value
	}
	if p.Role.Set {
		if p.Role.Null || !p.Role.Value.Valid() {
			return invalid("role", "must be employee, executive or admin")
		}
		u.Role = p.Role.Value
	}
	if p.EmployeeNumber.Set {
		num := strings.TrimSpace(p.EmployeeNumber.Value)
		if p.EmployeeNumber.Null || num == "" || utf8.RuneCountInString(num) > 32 {
			return invalid("employee_number", "must be 1 to 32 characters")
		}
		u.EmployeeNumber = num
	}
	if p.Password.Set && (p.Password.Null || p.Password.Value == "") {
		return invalid("password", "must not be empty")
	}
	return nil
}
