package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/budgetly?sslmode=disable", "pgx5://u:p@localhost:5432/budgetly?sslmode=disable"},
		{"postgresql://localhost/budgetly", "pgx5://localhost/budgetly"},
		{"pgx5://localhost/budgetly", "pgx5://localhost/budgetly"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migrationURL(tt.in))
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
