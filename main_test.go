package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"momo/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCommand()
	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "momo.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", path)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"migrate"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "schema at version 4")

	// Running again is a no-op
	out.Reset()
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"migrate"})
	require.NoError(t, cmd.Execute())

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: path})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	versions, err := database.AppliedVersions(db)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, versions)
}

func TestMigrateCommand_MemoryDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"migrate"})
	assert.Error(t, cmd.Execute())
}

func TestServeCommand_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("RABBITMQ_URL", "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve"})
	assert.Error(t, cmd.Execute())
}
