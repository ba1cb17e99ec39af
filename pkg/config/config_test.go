package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Store.Driver)
	require.False(t, cfg.Store.SQL())
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, 30*time.Minute, cfg.Wizard.TTL)
	require.Equal(t, 800*time.Millisecond, cfg.Payment.Delay)
	require.Equal(t, "INR", cfg.Payment.Currency)
	require.Equal(t, "demo_students", cfg.Redis.StudentsKey)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, "edubatch", cfg.NATS.SubjectPrefix)
	require.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"STORE_DRIVER":      " Redis ",
		"PAYMENT_DELAY":     "50ms",
		"WIZARD_TTL":        "not-a-duration",
		"ALLOWED_ORIGINS":   "http://localhost:3000, ,https://edubatch.example",
		"ENABLE_ACADEMICS":  true,
		"CATALOG_CACHE_TTL": "1m",
	}))
	require.NoError(t, err)
	require.Equal(t, StoreRedis, cfg.Store.Driver)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, 50*time.Millisecond, cfg.Payment.Delay)
	require.Equal(t, 30*time.Minute, cfg.Wizard.TTL)
	require.Equal(t, []string{"http://localhost:3000", "https://edubatch.example"}, cfg.CORS.AllowedOrigins)
	require.True(t, cfg.Academics.Enabled)
	require.Equal(t, time.Minute, cfg.Catalog.CacheTTL)
}

func TestFromViperSQLDrivers(t *testing.T) {
	for _, driver := range []string{StorePostgres, StoreSQLite} {
		cfg, err := fromViper(newViper(map[string]interface{}{"STORE_DRIVER": driver}))
		require.NoError(t, err)
		require.True(t, cfg.Store.SQL())
	}
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"STORE_DRIVER": "mongo"}))
	require.EqualError(t, err, "unsupported STORE_DRIVER: mongo")
}
