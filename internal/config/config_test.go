package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "ganttboard", cfg.DocumentKey)
	assert.Equal(t, 10, cfg.BackupLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ganttboard.db", filepath.Base(cfg.DBPath))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GANTTBOARD_STORE", "FILE")
	t.Setenv("GANTTBOARD_DATA_DIR", "/tmp/boards")
	t.Setenv("GANTTBOARD_BACKUP_LIMIT", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "/tmp/boards", cfg.DataDir)
	assert.Equal(t, 3, cfg.BackupLimit)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ganttboard.yaml")
	content := "store: file\ndocument_key: roadmap\nbackup_limit: 4\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("GANTTBOARD_BACKUP_LIMIT", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "roadmap", cfg.DocumentKey)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.BackupLimit, "environment wins over the file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want error
	}{
		{"unknown store", "GANTTBOARD_STORE", "postgres", ErrInvalidStore},
		{"zero backups", "GANTTBOARD_BACKUP_LIMIT", "0", ErrInvalidBackupLimit},
		{"blank key", "GANTTBOARD_DOCUMENT_KEY", " ", ErrInvalidDocumentKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
