package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMigrationFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
}

func TestGetLatestVersion(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected int
		wantErr  bool
	}{
		{
			name: "highest up migration wins",
			files: []string{
				"000001_create_customers.up.sql",
				"000001_create_customers.down.sql",
				"000002_create_orders_customer_link.up.sql",
				"000002_create_orders_customer_link.down.sql",
			},
			expected: 2,
		},
		{
			name:     "down-only files are ignored",
			files:    []string{"000003_whatever.down.sql"},
			expected: 0,
			wantErr:  true,
		},
		{
			name:     "non-migration files are ignored",
			files:    []string{"README.md", "000007_add_index.up.sql"},
			expected: 7,
		},
		{
			name:    "empty folder",
			files:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeMigrationFiles(t, dir, tt.files...)

			latest, err := getLatestVersion(dir)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, latest)
		})
	}
}

func TestGetLatestVersionMissingFolder(t *testing.T) {
	_, err := getLatestVersion(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
