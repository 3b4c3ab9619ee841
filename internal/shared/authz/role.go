// Package authz holds the closed set of roles and capabilities and decides
// whether a set of roles grants a capability.
package authz

import (
	"slices"
	"strings"
)

// Role is a platform role. The set is closed; unknown names parse to RoleUnknown.
type Role string

const (
	RoleUnknown        Role = ""
	RoleSuperAdmin     Role = "super_admin"
	RoleSupportAdmin   Role = "support_admin"
	RoleFinancialAdmin Role = "financial_admin"
	RoleEducationAdmin Role = "education_admin"
	RoleInstructor     Role = "instructor"
	RoleStudent        Role = "student"
	RoleGuest          Role = "guest"
	RoleSystem         Role = "system"
)

// DefaultRole is granted to every user created through phone sign-up.
const DefaultRole = RoleStudent

var allRoles = []Role{
	RoleSuperAdmin,
	RoleSupportAdmin,
	RoleFinancialAdmin,
	RoleEducationAdmin,
	RoleInstructor,
	RoleStudent,
	RoleGuest,
	RoleSystem,
}

// Roles returns every known role.
func Roles() []Role {
	return slices.Clone(allRoles)
}

// ParseRole returns the role named s, or RoleUnknown.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(allRoles, r) {
		return r
	}
	return RoleUnknown
}

// Assignable reports whether the role may be granted to a user through the API.
// Guest describes anonymous callers and system is reserved for internal jobs.
func (r Role) Assignable() bool {
	return r != RoleUnknown && r != RoleGuest && r != RoleSystem
}

func (r Role) String() string {
	return string(r)
}

// Capability is an action a role may be allowed to perform.
type Capability string

const (
	CapProfileReadAny      Capability = "profile:read_any"
	CapProfileWriteAny     Capability = "profile:write_any"
	CapRoleManage          Capability = "role:manage"
	CapCourseManage        Capability = "course:manage"
	CapCourseContentWrite  Capability = "course:content_write"
	CapEnrollmentManage    Capability = "enrollment:manage"
	CapEnrollmentCreate    Capability = "enrollment:create"
	CapNotificationReadOwn Capability = "notification:read"
)

func (c Capability) String() string {
	return string(c)
}

// grants is the role to capability table.
var grants = map[Role][]Capability{
	RoleSuperAdmin: {
		CapProfileReadAny, CapProfileWriteAny, CapRoleManage,
		CapCourseManage, CapCourseContentWrite,
		CapEnrollmentManage, CapEnrollmentCreate, CapNotificationReadOwn,
	},
	RoleSupportAdmin:   {CapProfileReadAny, CapEnrollmentManage, CapNotificationReadOwn},
	RoleFinancialAdmin: {CapProfileReadAny, CapNotificationReadOwn},
	RoleEducationAdmin: {CapProfileReadAny, CapCourseManage, CapCourseContentWrite, CapNotificationReadOwn},
	RoleInstructor:     {CapCourseContentWrite, CapEnrollmentCreate, CapNotificationReadOwn},
	RoleStudent:        {CapEnrollmentCreate, CapNotificationReadOwn},
	RoleGuest:          {},
	RoleSystem:         {CapEnrollmentManage},
}
