//go:build integration
// +build integration

package main

import (
	"os"
	"testing"

	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/storage/migrations"
	"github.com/gravadigital/galawall-api/internal/storage/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests that require a real PostgreSQL database
// Run with: go test -tags=integration

func testConfig() *config.Config {
	cfg := config.Load()
	if testDB := os.Getenv("TEST_DB_NAME"); testDB != "" {
		cfg.DB.Name = testDB
	}
	return cfg
}

func TestDatabaseConnection(t *testing.T) {
	db, err := postgres.Connect(testConfig())
	assert.NoError(t, err, "Should be able to connect to test database")

	if err == nil {
		sqlDB, err := db.DB()
		assert.NoError(t, err)

		err = sqlDB.Ping()
		assert.NoError(t, err, "Should be able to ping the database")

		sqlDB.Close()
	}
}

func TestDatabaseMigrations(t *testing.T) {
	db, err := postgres.Connect(testConfig())
	require.NoError(t, err, "Should be able to connect to test database")
	defer postgres.Close(db)

	err = migrations.RunMigrations(db)
	assert.NoError(t, err, "Should be able to run migrations")

	// Running a second time must be a no-op.
	err = migrations.RunMigrations(db)
	assert.NoError(t, err, "Migrations should be idempotent")
}

func TestParticipantLifecycle(t *testing.T) {
	db, err := postgres.Connect(testConfig())
	require.NoError(t, err)
	defer postgres.Close(db)
	require.NoError(t, migrations.RunMigrations(db))

	repo := postgres.NewParticipantRepository(db)
	require.NoError(t, repo.DeleteAll())

	p := contest.NewParticipant("Integration Amy", "EMP-IT-1", "retro jazz", "https://example.com/a.jpg")
	require.NoError(t, repo.Create(p))
	assert.Equal(t, 1, p.EntryNumber)

	require.NoError(t, repo.IncrementVote(p.ID, 1))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Votes)

	require.NoError(t, repo.DeleteAll())
}

func TestConfigSingleton(t *testing.T) {
	db, err := postgres.Connect(testConfig())
	require.NoError(t, err)
	defer postgres.Close(db)
	require.NoError(t, migrations.RunMigrations(db))

	repo := postgres.NewConfigRepository(db)

	cfg := contest.DefaultConfig()
	cfg.IsVotingOpen = false
	require.NoError(t, repo.Write(cfg))

	got, err := repo.Read()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsVotingOpen)

	// Restore defaults for the next run.
	require.NoError(t, repo.Write(contest.DefaultConfig()))
}
