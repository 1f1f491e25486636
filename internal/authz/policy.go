// Package authz holds the role- and ownership-based access rules as pure
// predicates over a resolved principal. Handlers and services consult these
// before every mutating operation; nothing in here touches the database.
package authz

// Principal is the acting user as resolved by the session middleware.
type Principal struct {
	ID          uint64
	IsStaff     bool
	IsSuperuser bool
}

// CanManageUsers reports whether the principal may list, create, update or
// delete user accounts.
func CanManageUsers(p Principal) bool {
	return p.IsStaff
}

// CanAssignUsers reports whether the principal may set a task's assignee
// list. Non-staff users manage only their own tasks and cannot assign work
// to others.
func CanAssignUsers(p Principal) bool {
	return p.IsStaff
}

// CanViewAllTasks reports whether the task visibility filter is bypassed
// entirely for this principal.
func CanViewAllTasks(p Principal) bool {
	return p.IsSuperuser
}

// CanViewTask reports whether a specific task is inside the principal's
// visibility scope: creator, assignee, or superuser.
func CanViewTask(p Principal, creatorID uint64, assigneeIDs []uint64) bool {
	if p.IsSuperuser || creatorID == p.ID {
		return true
	}
	for _, id := range assigneeIDs {
		if id == p.ID {
			return true
		}
	}
	return false
}

// CanModifyTask reports whether the principal may update a task.
func CanModifyTask(p Principal, creatorID uint64) bool {
	return p.IsStaff || creatorID == p.ID
}

// CanDeleteTask reports whether the principal may delete a task.
func CanDeleteTask(p Principal, creatorID uint64) bool {
	return p.IsStaff || creatorID == p.ID
}
