package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMigrationsPath = "../../migrations"

func openMigrated(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "familytree.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), testMigrationsPath, zap.NewNop()))
	return db
}

func TestMigrationsCreateTables(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	for _, table := range []string{"users", "families", "members", "relationships", "join_requests"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestMigrationsRunOnce(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	require.NoError(t, db.RunMigrations(ctx, testMigrationsPath, zap.NewNop()))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrationsRequireFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	err = db.RunMigrations(context.Background(), t.TempDir(), zap.NewNop())
	assert.Error(t, err)
}

func TestWithTx(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		id, err := tx.ExecReturningID(ctx, "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
			"ada@example.com", "hash", "Ada")
		if err != nil {
			return err
		}
		assert.Positive(t, id)
		return nil
	})
	require.NoError(t, err)

	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
			"charles@example.com", "hash", "Charles"); err != nil {
			return err
		}
		// duplicate email rolls the whole transaction back
		_, err := tx.ExecContext(ctx, "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
			"ada@example.com", "hash", "Ada again")
		return err
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openMigrated(t)

	_, err := db.ExecContext(context.Background(),
		"INSERT INTO members (family_id, name, role, status) VALUES (?, ?, ?, ?)", 999, "Orphan", "member", "active")
	assert.Error(t, err)
}

func TestConcurrentAccess(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	_, err := db.ExecReturningID(ctx, "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"concurrent@example.com", "hash", "Concurrent")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var name string
			err := db.QueryRowContext(ctx, "SELECT name FROM users WHERE email = ?", "concurrent@example.com").Scan(&name)
			assert.NoError(t, err)
			assert.Equal(t, "Concurrent", name)
		}()
	}
	wg.Wait()
}
