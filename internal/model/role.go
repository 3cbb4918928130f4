package model

import "slices"

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, ADMIN, STAFF
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleStaff       = "STAFF"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Back-office access without user management",
	},
	{
		Code:        RoleStaff,
		Name:        "Staff",
		Description: "Read access plus order and ticket handling",
	},
}

var staffPrivileges = []string{
	PrivProductView, PrivSupplierView, PrivPurchaseOrderView, PrivPurchaseOrderReceive,
	PrivOrderView, PrivOrderCreate, PrivOrderUpdate,
	PrivTicketView, PrivTicketCreate, PrivTicketUpdate,
	PrivSmsView, PrivDashboardView,
}

// DefaultPrivilegesFor picks the privileges a freshly seeded role starts with.
func DefaultPrivilegesFor(roleCode string, all []Privilege) []Privilege {
	var out []Privilege
	for _, p := range all {
		switch roleCode {
		case RoleMasterAdmin:
			out = append(out, p)
		case RoleAdmin:
			if !slices.Contains(UserManagementPrivileges, p.Code) {
				out = append(out, p)
			}
		case RoleStaff:
			if slices.Contains(staffPrivileges, p.Code) {
				out = append(out, p)
			}
		}
	}
	return out
}
