// Package repository implements the durable stores of the identity service
// on top of database/sql (MySQL) and Redis. Sentinel errors defined here let
// higher layers distinguish failure scenarios without inspecting driver
// errors.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Services
// translate this into domain-specific failures (unknown token, no pending
// OTP, missing seed role).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert violates the unique email
// constraint on the users table.
var ErrEmailExists = errors.New("email already exists")
