package notecache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tubenotes/internal/config"
)

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		cfg      config.CacheConfig
		wantType any
		wantErr  string
	}{
		{
			name:     "default is memory",
			cfg:      config.CacheConfig{},
			wantType: &MemoryStore{},
		},
		{
			name:     "memory",
			cfg:      config.CacheConfig{Driver: DriverMemory},
			wantType: &MemoryStore{},
		},
		{
			name:     "file",
			cfg:      config.CacheConfig{Driver: DriverFile, Directory: filepath.Join(tmpDir, "notes")},
			wantType: &FileStore{},
		},
		{
			name:     "sqlite",
			cfg:      config.CacheConfig{Driver: DriverSQLite, SQLitePath: filepath.Join(tmpDir, "db", "notes.db")},
			wantType: &SQLStore{},
		},
		{
			name:    "unknown",
			cfg:     config.CacheConfig{Driver: "memcached"},
			wantErr: `unknown cache driver "memcached"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(context.Background(), tt.cfg, config.DatabaseConfig{})
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer got.Close()
			assert.IsType(t, tt.wantType, got)
		})
	}
}
