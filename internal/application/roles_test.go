package application

import "testing"

func TestRoleAtLeast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     Role
		required Role
		want     bool
	}{
		{name: "student meets student", role: RoleStudent, required: RoleStudent, want: true},
		{name: "student below staff", role: RoleStudent, required: RoleStaff, want: false},
		{name: "staff meets staff", role: RoleStaff, required: RoleStaff, want: true},
		{name: "staff below teacher", role: RoleStaff, required: RoleTeacher, want: false},
		{name: "teacher meets staff", role: RoleTeacher, required: RoleStaff, want: true},
		{name: "admin meets teacher", role: RoleAdmin, required: RoleTeacher, want: true},
		{name: "unknown role never passes", role: Role("owner"), required: RoleStudent, want: false},
		{name: "unknown requirement never passes", role: RoleAdmin, required: Role("owner"), want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := RoleAtLeast(tc.role, tc.required); got != tc.want {
				t.Fatalf("RoleAtLeast(%q, %q) = %v, want %v", tc.role, tc.required, got, tc.want)
			}
		})
	}
}

func TestValidRoleCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role Role
		code string
		want bool
	}{
		{name: "admin default", role: RoleAdmin, code: RoleCodeAdminDefault, want: true},
		{name: "teacher default", role: RoleTeacher, code: RoleCodeTeacherDefault, want: true},
		{name: "staff equipment", role: RoleStaff, code: RoleCodeEquipmentStaff, want: true},
		{name: "staff catering", role: RoleStaff, code: RoleCodeCateringStaff, want: true},
		{name: "student group leader", role: RoleStudent, code: RoleCodeGroupLeader, want: true},
		{name: "code from another level", role: RoleStudent, code: RoleCodeStaffDefault, want: false},
		{name: "unknown code", role: RoleAdmin, code: "superuser", want: false},
		{name: "unknown role", role: Role("owner"), code: RoleCodeAdminDefault, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ValidRoleCode(tc.role, tc.code); got != tc.want {
				t.Fatalf("ValidRoleCode(%q, %q) = %v, want %v", tc.role, tc.code, got, tc.want)
			}
		})
	}
}

func TestDefaultRoleCode(t *testing.T) {
	t.Parallel()

	if got := DefaultRoleCode(RoleStaff); got != RoleCodeStaffDefault {
		t.Fatalf("expected staff default code, got %q", got)
	}
	if got := DefaultRoleCode(Role("owner")); got != "" {
		t.Fatalf("expected empty code for unknown role, got %q", got)
	}
}

func TestPrincipalHelpers(t *testing.T) {
	t.Parallel()

	admin := Principal{UserID: "admin-1", Role: RoleAdmin}
	if !admin.IsAdmin() || !admin.AtLeast(RoleTeacher) {
		t.Fatalf("expected admin principal to pass all checks")
	}

	student := Principal{UserID: "student-1", Role: RoleStudent}
	if student.IsAdmin() {
		t.Fatalf("expected student not to be admin")
	}
	if student.AtLeast(RoleStaff) {
		t.Fatalf("expected student to fail staff requirement")
	}
	if !student.AtLeast(RoleStudent) {
		t.Fatalf("expected student to meet student requirement")
	}
}
