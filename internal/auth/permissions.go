package auth

const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleViewer  = "Viewer"
)

const (
	PermLedgerRead      = "ledger.read"
	PermEmployeesWrite  = "employees.write"
	PermAttendanceWrite = "attendance.write"
	PermTasksWrite      = "tasks.write"
	PermLeaveWrite      = "leave.write"
	PermLeaveApprove    = "leave.approve"
	PermRewardsWrite    = "rewards.write"
	PermPayrollRun      = "payroll.run"
	PermReportsWrite    = "reports.write"
	PermSystemAdmin     = "admin.system"
)

var DefaultPermissions = []string{
	PermLedgerRead,
	PermEmployeesWrite,
	PermAttendanceWrite,
	PermTasksWrite,
	PermLeaveWrite,
	PermLeaveApprove,
	PermRewardsWrite,
	PermPayrollRun,
	PermReportsWrite,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleViewer: {
		PermLedgerRead,
	},
	RoleManager: {
		PermLedgerRead,
		PermEmployeesWrite,
		PermAttendanceWrite,
		PermTasksWrite,
		PermLeaveWrite,
		PermLeaveApprove,
		PermRewardsWrite,
		PermPayrollRun,
		PermReportsWrite,
	},
	RoleAdmin: DefaultPermissions,
}

// HasPermission reports whether role grants permission. Unknown roles grant
// nothing.
func HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}

func KnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
