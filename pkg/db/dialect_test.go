package db

import (
	"testing"

	"github.com/smallbiznis/streetsignal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	for _, dbType := range []string{TypePostgres, TypeMySQL, TypeSQLite} {
		d, err := Dialect(config.Config{DBType: dbType, DBPath: ":memory:"})
		require.NoError(t, err, dbType)
		assert.NotNil(t, d)
	}

	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.Config{
		DBHost: "db", DBUser: "street", DBPassword: "secret", DBName: "signal", DBPort: "5433", DBSSLMode: "require",
	})
	assert.Equal(t, "host=db user=street password=secret dbname=signal port=5433 sslmode=require TimeZone=UTC", dsn)
}
