package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quell/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInventory_AddIsIdempotent(t *testing.T) {
	store := storage.NewMockStore()
	inv := New(store, uuid.New(), testLogger())
	ctx := context.Background()

	added, err := inv.Add(ctx, "Basement Key")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = inv.Add(ctx, "Basement Key")
	require.NoError(t, err)
	assert.False(t, added, "second add reports no change")

	assert.Equal(t, 1, inv.Len())
	assert.Equal(t, 1, store.SaveCalls, "no write for a no-op add")
}

func TestInventory_HasReflectsAdds(t *testing.T) {
	inv := New(storage.NewMockStore(), uuid.New(), testLogger())
	ctx := context.Background()

	for _, name := range []string{"a", "b", "a", "c", "b"} {
		_, err := inv.Add(ctx, name)
		require.NoError(t, err)
	}

	assert.True(t, inv.Has("a"))
	assert.True(t, inv.Has("b"))
	assert.True(t, inv.Has("c"))
	assert.False(t, inv.Has("d"))
	assert.Equal(t, []string{"a", "b", "c"}, inv.Items())
}

func TestInventory_PersistsAcrossReload(t *testing.T) {
	store := storage.NewMockStore()
	id := uuid.New()
	ctx := context.Background()

	first := New(store, id, testLogger())
	_, err := first.Add(ctx, "Basement Key")
	require.NoError(t, err)

	raw, ok := store.Raw(id, RecordName)
	require.True(t, ok)
	assert.JSONEq(t, `["Basement Key"]`, raw)

	reloaded := New(store, id, testLogger())
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.Has("Basement Key"))

	otherSession := New(store, uuid.New(), testLogger())
	require.NoError(t, otherSession.Load(ctx))
	assert.Equal(t, 0, otherSession.Len())
}

func TestInventory_LoadMalformedRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"missing", "", nil},
		{"not json", "{{{", nil},
		{"object", `{"items":["x"]}`, nil},
		{"array of numbers", `[1,2,3]`, nil},
		{"string", `"Basement Key"`, nil},
		{"null", `null`, nil},
		{"valid", `["Basement Key"]`, []string{"Basement Key"}},
		{"duplicates collapsed", `["a","a","b"]`, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStore()
			id := uuid.New()
			store.Put(id, RecordName, tt.raw)

			inv := New(store, id, testLogger())
			require.NoError(t, inv.Load(context.Background()))

			if tt.want == nil {
				assert.Equal(t, 0, inv.Len())
			} else {
				assert.Equal(t, tt.want, inv.Items())
			}
		})
	}
}

func TestInventory_AddAfterMalformedLoadRewritesRecord(t *testing.T) {
	store := storage.NewMockStore()
	id := uuid.New()
	store.Put(id, RecordName, "corrupt")
	ctx := context.Background()

	inv := New(store, id, testLogger())
	require.NoError(t, inv.Load(ctx))
	_, err := inv.Add(ctx, "Basement Key")
	require.NoError(t, err)

	raw, _ := store.Raw(id, RecordName)
	assert.JSONEq(t, `["Basement Key"]`, raw)
}

func TestInventory_SaveFailureKeepsItemInMemory(t *testing.T) {
	store := storage.NewMockStore()
	store.SetSaveError(errors.New("connection refused"))
	inv := New(store, uuid.New(), testLogger())

	added, err := inv.Add(context.Background(), "Basement Key")
	assert.Error(t, err)
	assert.True(t, added)
	assert.True(t, inv.Has("Basement Key"))
}

func TestEncode_EmptyIsArray(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", data)
}

func TestInventory_AddMergesWithStoredRecord(t *testing.T) {
	store := storage.NewMockStore()
	id := uuid.New()
	ctx := context.Background()

	stale := New(store, id, testLogger())
	require.NoError(t, stale.Load(ctx))

	other := New(store, id, testLogger())
	_, err := other.Add(ctx, "Lantern")
	require.NoError(t, err)

	added, err := stale.Add(ctx, "Basement Key")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"Lantern", "Basement Key"}, stale.Items())

	raw, _ := store.Raw(id, RecordName)
	assert.JSONEq(t, `["Lantern", "Basement Key"]`, raw)
}

func TestInventory_AddAlreadyStoredElsewhere(t *testing.T) {
	store := storage.NewMockStore()
	id := uuid.New()
	ctx := context.Background()

	stale := New(store, id, testLogger())
	require.NoError(t, stale.Load(ctx))
	store.Put(id, RecordName, `["Basement Key"]`)

	added, err := stale.Add(ctx, "Basement Key")
	require.NoError(t, err)
	assert.False(t, added, "another writer stored it first")
	assert.Equal(t, []string{"Basement Key"}, stale.Items())
}

func TestInventory_ConcurrentAddsAllPersist(t *testing.T) {
	store := storage.NewMemoryStore(time.Hour)
	id := uuid.New()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inv := New(store, id, testLogger())
			if err := inv.Load(ctx); err != nil {
				t.Error(err)
				return
			}
			added, err := inv.Add(ctx, fmt.Sprintf("item-%d", i))
			assert.NoError(t, err)
			assert.True(t, added)
		}(i)
	}
	wg.Wait()

	inv := New(store, id, testLogger())
	require.NoError(t, inv.Load(ctx))
	assert.Equal(t, n, inv.Len())
}
