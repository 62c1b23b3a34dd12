package backends

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewBackend_MemoryWithCompression(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	backend, err := NewBackend(lc, config.Config{
		StorageBackend:  config.StorageMemory,
		StorageCompress: true,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, []storage.Record{{Key: "depot_settings", Payload: []byte(`{"lastBillNumber":3}`)}}))
	got, err := backend.Load(ctx, "depot_settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lastBillNumber":3}`, string(got))

	lc.RequireStart().RequireStop()
}

func TestNewBackend_SQLiteMigratesTable(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	backend, err := NewBackend(lc, config.Config{
		StorageBackend: config.StorageSQLite,
		DBName:         "rythudepot",
		SQLitePath:     filepath.Join(t.TempDir(), "depot.db"),
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = backend.Load(context.Background(), "depot_farmers")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	lc.RequireStart().RequireStop()
}

func TestNewBackend_UnknownBackend(t *testing.T) {
	_, err := NewBackend(fxtest.NewLifecycle(t), config.Config{StorageBackend: "tape"}, zap.NewNop())
	assert.Error(t, err)
}
