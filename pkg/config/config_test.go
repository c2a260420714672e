package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.App.StorageDriver)
	assert.Equal(t, 15*time.Second, cfg.DB.TxTimeout)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "postgres://postgres:@localhost:5432/pui_pos?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("DB_TX_TIMEOUT", "30")
	v.Set("EINVOICE_TIMEOUT", "1m")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	v.Set("HTTP_PORT", "9090")
	v.Set("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.App.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.DB.TxTimeout)
	assert.Equal(t, time.Minute, cfg.EInvoice.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString())
}

func TestFromViper_Invalido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mysql")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("APP_ENV", "production")
	_, err = fromViper(v)
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss/w:rd", DBName: "d", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss%2Fw%3Ard@h:5432/d?sslmode=require", c.DSN())
}
