package repository

import (
	"context"
	"database/sql"

	"github.com/feastly/food-ordering-backend/internal/model"
)

// RoleRepo reads the seeded roles and permissions and provides the write
// operations the startup reconciler needs. Roles are read-mostly after
// seeding.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetByName fetches a role and its permission set.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, can_manage_permissions FROM roles WHERE name=? LIMIT 1",
		name).Scan(&role.ID, &role.Name, &role.CanManagePermissions)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.Role{}, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.id, p.name, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ?`, role.ID)
	if err != nil {
		return model.Role{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return model.Role{}, err
		}
		role.Permissions = append(role.Permissions, p)
	}
	return role, rows.Err()
}

// GetPermissionByName fetches a single permission.
func (r *RoleRepo) GetPermissionByName(ctx context.Context, name string) (model.Permission, error) {
	var p model.Permission
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description FROM permissions WHERE name=? LIMIT 1",
		name).Scan(&p.ID, &p.Name, &p.Description)
	if err == sql.ErrNoRows {
		return model.Permission{}, ErrNotFound
	}
	return p, err
}

// CreatePermission inserts a permission row and returns it.
func (r *RoleRepo) CreatePermission(ctx context.Context, name, description string) (model.Permission, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO permissions (name, description) VALUES (?,?)", name, description)
	if err != nil {
		return model.Permission{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Permission{}, err
	}
	return model.Permission{ID: uint64(id), Name: name, Description: description}, nil
}

// CreateRole inserts a role and grants it the given permissions inside one
// transaction, so a partially-granted role never becomes visible.
func (r *RoleRepo) CreateRole(ctx context.Context, name string, canManagePermissions bool, permissionIDs []uint64) (model.Role, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Role{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO roles (name, can_manage_permissions) VALUES (?,?)", name, canManagePermissions)
	if err != nil {
		return model.Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	for _, pid := range permissionIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO role_permissions (role_id, permission_id) VALUES (?,?)", id, pid); err != nil {
			return model.Role{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Role{}, err
	}
	return model.Role{ID: uint64(id), Name: name, CanManagePermissions: canManagePermissions}, nil
}
