// Package seed reconciles the role/permission catalog and the bootstrap
// admin account at process start. The desired state is a static data
// structure, the reconciliation is idempotent: running it against an
// already-seeded database creates nothing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/feastly/food-ordering-backend/internal/model"
	"github.com/feastly/food-ordering-backend/internal/repository"
	"github.com/feastly/food-ordering-backend/internal/utils"
)

// PermissionSpec describes one permission the catalog must contain.
type PermissionSpec struct {
	Name        string
	Description string
}

// RoleSpec describes one role and the permission names granted to it.
type RoleSpec struct {
	Name                 string
	CanManagePermissions bool
	Permissions          []string
}

// AdminSpec describes the bootstrap superadmin account created when absent.
type AdminSpec struct {
	FullName string
	Email    string
	Password string
	Role     string
}

// Catalog is the full desired seed state.
type Catalog struct {
	Permissions []PermissionSpec
	Roles       []RoleSpec
	Admin       *AdminSpec // nil disables the bootstrap account
}

// RoleStore is the slice of the role repository the reconciler needs.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (model.Role, error)
	GetPermissionByName(ctx context.Context, name string) (model.Permission, error)
	CreatePermission(ctx context.Context, name, description string) (model.Permission, error)
	CreateRole(ctx context.Context, name string, canManagePermissions bool, permissionIDs []uint64) (model.Role, error)
}

// UserStore is the slice of the user repository the reconciler needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, fullName, email, passwordHash string, roleID uint64) (model.User, error)
}

// Default returns the catalog this deployment ships with, matching the
// permission grants the rest of the platform expects.
func Default() Catalog {
	return Catalog{
		Permissions: []PermissionSpec{
			{"READ_USERS", "Can read user information"},
			{"WRITE_USERS", "Can create and update users"},
			{"DELETE_USERS", "Can delete users"},
			{"MANAGE_ROLES", "Can manage user roles"},
			{"READ_ORDERS", "Can read order information"},
			{"WRITE_ORDERS", "Can create and update orders"},
			{"DELETE_ORDERS", "Can delete orders"},
			{"MANAGE_MENU", "Can manage menu items"},
			{"MANAGE_RESTAURANTS", "Can manage restaurant information"},
			{"VIEW_ANALYTICS", "Can view system analytics"},
		},
		Roles: []RoleSpec{
			{
				Name:        model.RoleCustomer,
				Permissions: []string{"READ_ORDERS", "WRITE_ORDERS"},
			},
			{
				Name: model.RoleAdmin,
				Permissions: []string{
					"READ_USERS", "READ_ORDERS", "WRITE_ORDERS", "DELETE_ORDERS",
					"MANAGE_MENU", "MANAGE_RESTAURANTS", "VIEW_ANALYTICS",
				},
			},
			{
				Name:                 model.RoleSuperAdmin,
				CanManagePermissions: true,
				Permissions: []string{
					"READ_USERS", "WRITE_USERS", "DELETE_USERS", "MANAGE_ROLES",
					"READ_ORDERS", "WRITE_ORDERS", "DELETE_ORDERS",
					"MANAGE_MENU", "MANAGE_RESTAURANTS", "VIEW_ANALYTICS",
				},
			},
		},
		Admin: &AdminSpec{
			FullName: "System Administrator",
			Email:    "admin@fooddelivery.com",
			Password: "admin123", // change via SEED_ADMIN_PASSWORD in production
			Role:     model.RoleSuperAdmin,
		},
	}
}

// Run reconciles the catalog: permissions first, then roles with their
// grants, then the bootstrap admin. Existing rows are left untouched.
func Run(ctx context.Context, roles RoleStore, users UserStore, bcryptCost int, cat Catalog) error {
	for _, p := range cat.Permissions {
		_, err := roles.GetPermissionByName(ctx, p.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("seed: lookup permission %s: %w", p.Name, err)
		}
		if _, err := roles.CreatePermission(ctx, p.Name, p.Description); err != nil {
			return fmt.Errorf("seed: create permission %s: %w", p.Name, err)
		}
		log.Printf("seed: created permission %s", p.Name)
	}

	for _, r := range cat.Roles {
		_, err := roles.GetByName(ctx, r.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("seed: lookup role %s: %w", r.Name, err)
		}
		var permIDs []uint64
		for _, name := range r.Permissions {
			p, err := roles.GetPermissionByName(ctx, name)
			if err != nil {
				return fmt.Errorf("seed: role %s references missing permission %s: %w", r.Name, name, err)
			}
			permIDs = append(permIDs, p.ID)
		}
		if _, err := roles.CreateRole(ctx, r.Name, r.CanManagePermissions, permIDs); err != nil {
			return fmt.Errorf("seed: create role %s: %w", r.Name, err)
		}
		log.Printf("seed: created role %s with %d permissions", r.Name, len(permIDs))
	}

	if cat.Admin != nil {
		if err := seedAdmin(ctx, roles, users, bcryptCost, *cat.Admin); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, roles RoleStore, users UserStore, bcryptCost int, admin AdminSpec) error {
	_, err := users.GetByEmail(ctx, admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("seed: lookup admin user: %w", err)
	}
	role, err := roles.GetByName(ctx, admin.Role)
	if err != nil {
		return fmt.Errorf("seed: admin role %s: %w", admin.Role, err)
	}
	hash, err := utils.HashPassword(admin.Password, bcryptCost)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}
	if _, err := users.Create(ctx, admin.FullName, admin.Email, hash, role.ID); err != nil {
		return fmt.Errorf("seed: create admin user: %w", err)
	}
	log.Printf("seed: created bootstrap admin %s (change the default password!)", admin.Email)
	return nil
}
