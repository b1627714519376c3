package user

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the closed set of user roles.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

var roleNames = [...]string{
	RoleUser:  "USER",
	RoleAdmin: "ADMIN",
}

// ParseRole parses a role name, ignoring case.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if strings.EqualFold(s, name) {
			return Role(r), nil
		}
	}
	return RoleUser, fmt.Errorf("unknown role %q", s)
}

// String returns the role name.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= 0 && int(r) < len(roleNames)
}

// CanModifyAnyTask reports whether the role may change tasks it did not create.
func (r Role) CanModifyAnyTask() bool {
	return r == RoleAdmin
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role by name.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return r.String(), nil
}

// Scan reads a role stored by name.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}
