package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FLOWI_DATABASE_DRIVER", "sqlite")
	t.Setenv("FLOWI_DATABASE_SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("FLOWI_DATABASE_LOG_LEVEL", "silent")
	t.Setenv("FLOWI_REDIS_ENABLED", "false")
	t.Setenv("FLOWI_LEDGER_DEFAULT_ORGANIZATION", uuid.NewString())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRateSetAndShow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "rate", "set", "36.50", "--source", "BCV")
	require.NoError(t, err)
	assert.Contains(t, out, "36,5 Bs./$")

	out, err = run(t, "rate", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "36,5 Bs./$")
	assert.Contains(t, out, "(BCV)")
}

func TestRateSet_InvalidEffectiveDate(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "rate", "set", "36.50", "--effective", "16/10/2026")
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "overdue: 0 candidates, 0 flagged, 0 skipped")
	assert.Contains(t, out, "quotations: 0 candidates")
}

func TestDashboard_WithExport(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "receivables.xlsx")

	out, err := run(t, "dashboard", "--export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue          $0.00 / Bs. 0,00")
	assert.Contains(t, out, "receivables written to")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRequiresOrganization(t *testing.T) {
	setupEnv(t)
	t.Setenv("FLOWI_LEDGER_DEFAULT_ORGANIZATION", "")

	_, err := run(t, "sweep")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization is required")
}
