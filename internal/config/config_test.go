package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Pat")
	cfg.Import.DefaultAccount = "checking"
	cfg.Git.AutoCommit = true

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("Pat")

	assert.Equal(t, "Pat", cfg.Owner.Name)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, 500*time.Millisecond, cfg.Data.SaveDelay)
	assert.Equal(t, "import", cfg.Import.Inbox)
	assert.Equal(t, "USD", cfg.Import.Currency)
	assert.InDelta(t, 0.8, cfg.Reconcile.DuplicateSimilarity, 0.001)
	assert.Equal(t, 5, cfg.Reconcile.TransferWindowDays)
	assert.Equal(t, 4, cfg.Reconcile.MaxGroupSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Git.AutoCommit)

	tol, err := cfg.Reconcile.Tolerance()
	require.NoError(t, err)
	require.True(t, tol.Valid)
	assert.Equal(t, "0.05", tol.Decimal.StringFixed(2))
}

func TestReconcileConfig_Tolerance(t *testing.T) {
	tests := []struct {
		value     string
		wantValid bool
		want      string
	}{
		{value: "", wantValid: false},
		{value: "0", wantValid: true, want: "0.00"},
		{value: "0.10", wantValid: true, want: "0.10"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			tol, err := ReconcileConfig{TransferTolerance: tt.value}.Tolerance()
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, tol.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.want, tol.Decimal.StringFixed(2))
			}
		})
	}
}

func TestLoad_ZeroTolerance(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("reconcile:\n  transfer_tolerance: \"0\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	tol, err := cfg.Reconcile.Tolerance()
	require.NoError(t, err)
	assert.True(t, tol.Valid)
	assert.True(t, tol.Decimal.IsZero())
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("owner:\n  name: Sam\ndata:\n  save_delay: 2s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sam", cfg.Owner.Name)
	assert.Equal(t, 2*time.Second, cfg.Data.SaveDelay)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, 4, cfg.Reconcile.Workers)
}

func TestLoad_BadTolerance(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("reconcile:\n  transfer_tolerance: lots\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "transfer_tolerance")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Pat")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Pat")
	assert.Contains(t, contents, "save_delay: 500ms")
	assert.Contains(t, contents, `transfer_tolerance: "0.05"`)
	assert.Contains(t, contents, "auto_commit: false")
}
