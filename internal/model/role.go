package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the closed set of user roles. The zero value is not a valid role.
type Role uint8

const (
	RoleEmployee Role = iota + 1
	RoleExecutive
	RoleAdministrator
)

// Roles lists every valid role in declaration order.
var Roles = []Role{RoleEmployee, RoleExecutive, RoleAdministrator}

// ParseRole maps the stored or wire name of a role onto the enumeration.
// Matching ignores case and surrounding whitespace.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "employee":
		return RoleEmployee, nil
	case "executive":
		return RoleExecutive, nil
	case "admin", "administrator":
		return RoleAdministrator, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// String returns the stored name of the role.
func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "employee"
	case RoleExecutive:
		return "executive"
	case RoleAdministrator:
		return "admin"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleExecutive, RoleAdministrator:
		return true
	}
	return false
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("marshal invalid role %d", uint8(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalParam lets echo bind roles from form values and query strings.
func (r *Role) UnmarshalParam(s string) error {
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role by name so the column stays readable.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("store invalid role %d", uint8(r))
	}
	return r.String(), nil
}

func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan role from %T", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// GormDataType keeps the column a string in both MySQL and SQLite.
func (Role) GormDataType() string { return "string" }
