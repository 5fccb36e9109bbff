package model

// Role names seeded at startup. Registration always assigns RoleCustomer;
// the other two exist for administrative surfaces outside this service.
const (
	RoleCustomer   = "CUSTOMER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
)

// Role mirrors the `roles` table plus its permission set loaded from the
// role_permissions join table.
type Role struct {
	ID                   uint64 // roles.id
	Name                 string // roles.name (unique)
	CanManagePermissions bool   // roles.can_manage_permissions
	Permissions          []Permission
}

// Permission mirrors the `permissions` table. Seeded once, read-mostly.
type Permission struct {
	ID          uint64 // permissions.id
	Name        string // permissions.name (unique)
	Description string // permissions.description
}
