package model

import "time"

// User mirrors the `users` table. Full name is stored as a single string;
// response DTOs split it on the first whitespace when a first/last pair is
// required. Email is unique and doubles as the access-token subject.
type User struct {
	ID           uint64    // users.id
	FullName     string    // users.full_name
	Email        string    // users.email (unique)
	PasswordHash string    // users.password_hash
	RoleID       uint64    // users.role_id (references roles.id; 0 when unset)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
