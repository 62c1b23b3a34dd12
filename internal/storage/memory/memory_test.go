package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/rythudepot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_SaveLoad(t *testing.T) {
	ctx := context.Background()
	b := New()

	_, err := b.Load(ctx, "depot_farmers")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, b.Save(ctx, []storage.Record{
		{Key: "depot_farmers", Payload: []byte(`[]`)},
		{Key: "depot_settings", Payload: []byte(`{}`)},
	}))

	got, err := b.Load(ctx, "depot_settings")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
	assert.ElementsMatch(t, []string{"depot_farmers", "depot_settings"}, b.Keys())
}

func TestBackend_FailedSaveWritesNothing(t *testing.T) {
	ctx := context.Background()
	b := New()
	require.NoError(t, b.Save(ctx, []storage.Record{{Key: "a", Payload: []byte("1")}}))

	boom := errors.New("quota exceeded")
	b.FailSaves(boom)
	err := b.Save(ctx, []storage.Record{{Key: "a", Payload: []byte("2")}, {Key: "b", Payload: []byte("3")}})
	assert.ErrorIs(t, err, boom)

	b.FailSaves(nil)
	got, err := b.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))
	_, err = b.Load(ctx, "b")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_RejectsEmptyKeyAtomically(t *testing.T) {
	ctx := context.Background()
	b := New()

	err := b.Save(ctx, []storage.Record{{Key: "a", Payload: []byte("1")}, {Key: "", Payload: []byte("2")}})
	require.Error(t, err)

	_, err = b.Load(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
