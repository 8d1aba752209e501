package config

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "flowi-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "flowi", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQuery)
		assert.Equal(t, 3, cfg.Ledger.MaxConflictRetries)
		assert.Equal(t, 24*time.Hour, cfg.Ledger.IdempotencyTTL)
		assert.Equal(t, 5, cfg.Ledger.LowStockThreshold)
		assert.Equal(t, time.Hour, cfg.Scheduler.SweepInterval)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "console", cfg.Log.Format)
	})

	t.Run("loads values from environment variables with FLOWI prefix", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("FLOWI_APP_PORT", "9000")
		t.Setenv("FLOWI_DATABASE_DRIVER", "sqlite")
		t.Setenv("FLOWI_DATABASE_SQLITE_PATH", ":memory:")
		t.Setenv("FLOWI_LEDGER_MAX_CONFLICT_RETRIES", "7")
		t.Setenv("FLOWI_SCHEDULER_SWEEP_ENABLED", "true")
		t.Setenv("FLOWI_SCHEDULER_SWEEP_INTERVAL", "15m")
		t.Setenv("FLOWI_REDIS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.SQLitePath)
		assert.Equal(t, 7, cfg.Ledger.MaxConflictRetries)
		assert.True(t, cfg.Scheduler.SweepEnabled)
		assert.Equal(t, 15*time.Minute, cfg.Scheduler.SweepInterval)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})
}

func TestFromViper_Validation(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{
			name:    "unknown driver",
			values:  map[string]any{"database.driver": "mysql"},
			wantErr: "database.driver",
		},
		{
			name:    "idle above open",
			values:  map[string]any{"database.max_open_conns": 2, "database.max_idle_conns": 4},
			wantErr: "cannot exceed",
		},
		{
			name:    "malformed default organization",
			values:  map[string]any{"ledger.default_organization": "acme"},
			wantErr: "must be a UUID",
		},
		{
			name:    "sweep interval too short",
			values:  map[string]any{"scheduler.sweep_enabled": true, "scheduler.sweep_interval": "10s"},
			wantErr: "sweep_interval",
		},
		{
			name:    "sqlite in production",
			values:  map[string]any{"app.env": "production", "database.driver": "sqlite"},
			wantErr: "cannot be sqlite",
		},
		{
			name: "production without password",
			values: map[string]any{
				"app.env": "production", "database.sslmode": "require",
			},
			wantErr: "database.password",
		},
		{
			name: "valid production",
			values: map[string]any{
				"app.env":                     "production",
				"database.password":           "s3cret",
				"database.sslmode":            "require",
				"ledger.default_organization": orgID.String(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			cfg, err := FromViper(v)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, orgID, cfg.Ledger.DefaultOrganizationID())
			assert.Equal(t, "json", cfg.Log.Format)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "flowi", Password: "p@ss word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://flowi:p%40ss%20word@db:5433/ledger?sslmode=disable", d.DSN())
}
