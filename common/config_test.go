package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Import.BatchSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Import.Delay)
	assert.Equal(t, PacingFixed, cfg.Import.Pacing)
	assert.Equal(t, 5, cfg.Cleanup.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Cleanup.Delay)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "4")
	t.Setenv("IMPORT_BATCH_DELAY", "1s")
	t.Setenv("IMPORT_PACING", "backoff")
	t.Setenv("CLEANUP_PACING", "token_bucket")
	t.Setenv("CLEANUP_RATE_PER_SECOND", "2.5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Import.BatchSize)
	assert.Equal(t, time.Second, cfg.Import.Delay)
	assert.Equal(t, PacingBackoff, cfg.Import.Pacing)
	assert.Equal(t, PacingTokenBucket, cfg.Cleanup.Pacing)
	assert.Equal(t, 2.5, cfg.Cleanup.RatePerSecond)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLUB_TEST_DB_PATH_MARKER=1\nCLEANUP_BATCH_SIZE=7\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("CLUB_TEST_DB_PATH_MARKER")
		os.Unsetenv("CLEANUP_BATCH_SIZE")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Cleanup.BatchSize)
}

func TestBatchOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    BatchOptions
		wantErr bool
	}{
		{"fixed", BatchOptions{BatchSize: 3, Delay: time.Millisecond, Pacing: PacingFixed}, false},
		{"none", BatchOptions{BatchSize: 1, Pacing: PacingNone}, false},
		{"zero batch", BatchOptions{BatchSize: 0, Pacing: PacingFixed}, true},
		{"negative delay", BatchOptions{BatchSize: 1, Delay: -time.Second, Pacing: PacingFixed}, true},
		{"unknown pacing", BatchOptions{BatchSize: 1, Pacing: "jitter"}, true},
		{"token bucket without rate", BatchOptions{BatchSize: 1, Pacing: PacingTokenBucket}, true},
		{"backoff", BatchOptions{BatchSize: 1, Delay: time.Millisecond, Pacing: PacingBackoff, MaxDelay: time.Second}, false},
		{"backoff without max delay", BatchOptions{BatchSize: 1, Delay: time.Millisecond, Pacing: PacingBackoff}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate("import")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
