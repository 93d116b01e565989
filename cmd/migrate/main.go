package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate"
	_ "github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"

	"github.com/hyli-org/attest/common"
)

func main() {
	dbName := os.Getenv("DATABASE_NAME")
	dbHost := os.Getenv("DATABASE_HOST")
	dbPort := os.Getenv("DATABASE_PORT")
	dbUser := os.Getenv("DATABASE_USER")
	dbPassword := os.Getenv("DATABASE_PASSWORD")

	common.PanicIfEmpty(dbName, "DATABASE_NAME not provided")
	common.PanicIfEmpty(dbHost, "DATABASE_HOST not provided")
	common.PanicIfEmpty(dbUser, "DATABASE_USER not provided")

	if dbPort == "" {
		dbPort = "5432"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./ops/migrations"
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dsn)
	if err != nil {
		common.Log.Panicf("failed to initialize migrations; %s", err.Error())
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		common.Log.Panicf("failed to migrate database; %s", err.Error())
	}

	common.Log.Debug("database migrations completed")
}
