package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feastly/food-ordering-backend/internal/database"
)

func TestDSN(t *testing.T) {
	cfg := database.Config{
		User: "app", Pass: "s3cret",
		Host: "db.internal", Port: "3306", Name: "identity",
	}
	assert.Equal(t,
		"app:s3cret@tcp(db.internal:3306)/identity?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.DSN())
}

func TestDSNWithoutPassword(t *testing.T) {
	cfg := database.Config{
		User: "root",
		Host: "localhost", Port: "3306", Name: "identity",
	}
	assert.Equal(t,
		"root@tcp(localhost:3306)/identity?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.DSN())
}
