package database

import (
	"testing"

	"placeprep_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	mysqlCfg := &config.DatabaseConfig{
		Driver: "mysql", Host: "db", Port: 3306, User: "app", Password: "pw",
		DBName: "placeprep", Charset: "utf8mb4", ParseTime: true,
	}
	assert.Equal(t, "app:pw@tcp(db:3306)/placeprep?charset=utf8mb4&parseTime=true&loc=Local", DSN(mysqlCfg))

	pgCfg := &config.DatabaseConfig{
		Driver: "postgres", Host: "db.abc.supabase.co", Port: 5432, User: "postgres", Password: "pw", DBName: "postgres",
	}
	assert.Equal(t, "host=db.abc.supabase.co port=5432 user=postgres password=pw dbname=postgres sslmode=require TimeZone=UTC", DSN(pgCfg))

	pgCfg.SSLMode = "disable"
	assert.Contains(t, DSN(pgCfg), "sslmode=disable")
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := dialector(&config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)

	d, err := dialector(&config.DatabaseConfig{Driver: "postgres"})
	assert.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestInitRedisWithoutHost(t *testing.T) {
	rdb, err := InitRedis(&config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
