package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleStudent    Role = "student"
	RoleReviewer   Role = "reviewer"
	RoleInstructor Role = "instructor"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
)

var privileges = map[Role]int{
	RoleUser:       0,
	RoleStudent:    1,
	RoleReviewer:   2,
	RoleInstructor: 3,
	RoleStaff:      4,
	RoleAdmin:      99,
}

// Privilege returns the fixed privilege level of the role. Unknown roles
// carry no privilege.
func (r Role) Privilege() int {
	return privileges[r]
}

func (r Role) Valid() bool {
	_, ok := privileges[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole maps a case-insensitive role name to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Roles lists every known role in ascending privilege order.
func Roles() []Role {
	return []Role{RoleUser, RoleStudent, RoleReviewer, RoleInstructor, RoleStaff, RoleAdmin}
}

type User struct {
	ID            string
	Username      string
	Email         string
	MiddleInitial string
	PasswordHash  string // argon2id PHC string
	Role          Role
	OTP           *OneTimePassword
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// OneTimePassword is the single admin-issued temporary credential a user may
// hold. Only a fingerprint of the code is kept.
type OneTimePassword struct {
	CodeHash  string
	Used      bool
	ExpiresAt *time.Time
}

// Live reports whether the OTP can still be used at now.
func (o *OneTimePassword) Live(now time.Time) bool {
	if o == nil || o.CodeHash == "" || o.Used {
		return false
	}
	return o.ExpiresAt == nil || o.ExpiresAt.After(now)
}

// NewUser carries the raw form values of an account being created.
type NewUser struct {
	Username       string
	Email          string
	MiddleInitial  string
	Password       string
	Role           Role
	InvitationCode string
}
