package database

import (
	"testing"

	"students/config"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabaseConfig(driver string) *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:   driver,
		Host:     "primary.db",
		Port:     "5432",
		UserName: "students",
		Password: "s3cret",
		Name:     "students",
	}
}

func TestPostgresDSN_DefaultsSSLModeToDisable(t *testing.T) {
	dbCfg := testDatabaseConfig(DriverPostgres)
	replica := config.ConnectionConfig{Host: "replica.db", Port: "5433", UserName: "reader", Password: "r"}

	dsn := postgresDSN(dbCfg, replica)

	assert.Equal(t, "host=replica.db port=5433 user=reader password=r dbname=students sslmode=disable TimeZone=UTC", dsn)
}

func TestMySQLDSN(t *testing.T) {
	dbCfg := testDatabaseConfig(DriverMySQL)
	conn := config.ConnectionConfig{Host: "primary.db", Port: "3306", UserName: "students", Password: "s3cret"}

	parsed, err := mysql.ParseDSN(mysqlDSN(dbCfg, conn))

	require.NoError(t, err)
	assert.Equal(t, "primary.db:3306", parsed.Addr)
	assert.Equal(t, "students", parsed.User)
	assert.Equal(t, "s3cret", parsed.Passwd)
	assert.Equal(t, "students", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
}

func TestDialector_UnsupportedDriver(t *testing.T) {
	d, err := dialector(testDatabaseConfig("oracle"), config.ConnectionConfig{})

	assert.Nil(t, d)
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestDialector_KnownDrivers(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverMySQL} {
		d, err := dialector(testDatabaseConfig(driver), config.ConnectionConfig{Host: "h", Port: "1"})

		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}
}

func TestOpen_MissingDatabaseSection(t *testing.T) {
	db, err := Open(&config.Config{}, nil)

	assert.Nil(t, db)
	assert.ErrorContains(t, err, "database configuration is missing")
}
