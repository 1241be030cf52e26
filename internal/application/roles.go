package application

import "github.com/example/camp-planner/internal/persistence"

// Role mirrors the persistence role levels for use in service checks.
type Role = persistence.Role

// Role levels. The hierarchy is strict: student < staff < teacher < admin.
const (
	RoleStudent = persistence.RoleStudent
	RoleStaff   = persistence.RoleStaff
	RoleTeacher = persistence.RoleTeacher
	RoleAdmin   = persistence.RoleAdmin
)

// roleRank orders roles for hierarchy comparisons.
var roleRank = map[Role]int{
	RoleStudent: 0,
	RoleStaff:   1,
	RoleTeacher: 2,
	RoleAdmin:   3,
}

// ValidRole reports whether the value names a known role level.
func ValidRole(role Role) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast reports whether role meets or exceeds the required level.
// Unknown roles never pass.
func RoleAtLeast(role, required Role) bool {
	rank, ok := roleRank[role]
	if !ok {
		return false
	}
	requiredRank, ok := roleRank[required]
	if !ok {
		return false
	}
	return rank >= requiredRank
}

// Sub-role codes. Each role level has its own allow-list; a role code from
// another level is rejected at validation time.
const (
	RoleCodeAdminDefault   = "admin_default"
	RoleCodeTeacherDefault = "teacher_default"
	RoleCodeStaffDefault   = "staff_default"
	RoleCodeEquipmentStaff = "equipment_staff"
	RoleCodeActivityStaff  = "activity_staff"
	RoleCodeCateringStaff  = "catering_staff"
	RoleCodeStudentDefault = "student_default"
	RoleCodeGroupLeader    = "group_leader"
)

var validRoleCodes = map[Role][]string{
	RoleAdmin:   {RoleCodeAdminDefault},
	RoleTeacher: {RoleCodeTeacherDefault},
	RoleStaff:   {RoleCodeStaffDefault, RoleCodeEquipmentStaff, RoleCodeActivityStaff, RoleCodeCateringStaff},
	RoleStudent: {RoleCodeStudentDefault, RoleCodeGroupLeader},
}

// DefaultRoleCode returns the default sub-role code for a role level.
func DefaultRoleCode(role Role) string {
	codes, ok := validRoleCodes[role]
	if !ok || len(codes) == 0 {
		return ""
	}
	return codes[0]
}

// ValidRoleCode reports whether the role code belongs to the role level.
func ValidRoleCode(role Role, code string) bool {
	for _, candidate := range validRoleCodes[role] {
		if candidate == code {
			return true
		}
	}
	return false
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// AtLeast reports whether the principal's role meets the required level.
func (p Principal) AtLeast(required Role) bool {
	return RoleAtLeast(p.Role, required)
}
