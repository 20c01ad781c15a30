package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/bucketgate/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestStore creates a migrated store with a unique table name for test isolation
func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()

	tableName := fmt.Sprintf("objects_%s", getRandomString(t))

	store, err := sqlite.Open(ctx, ":memory:", tableName)
	require.NoError(t, err, "failed to open")

	require.NoError(t, store.Migrate(ctx), "failed to migrate")

	t.Cleanup(func() { _ = store.Close() })

	return store
}
