package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hypernova-labs/invoice-designer/internal/database"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

func newTestPresets(storage database.KeyValueStore, notifier Notifier) (*CustomizationStore, *PresetStore) {
	live := newTestStore(storage, nil)
	seq := 0
	presets := NewPresetStore(storage, live, notifier, "", testLogger(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("preset-%d", seq)
		}),
	)
	return live, presets
}

func TestPresetStoreSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	live, presets := newTestPresets(database.NewMemoryStore(), notifier)

	_, err := live.SelectTemplate(ctx, "creative-studio")
	require.NoError(t, err)
	_, err = live.Update(ctx, models.ColorsPatch{Primary: models.String("#7c3aed")})
	require.NoError(t, err)
	saved := live.Snapshot()

	preset, err := presets.Save(ctx, "  Studio purple  ")
	require.NoError(t, err)
	assert.Equal(t, "preset-1", preset.ID)
	assert.Equal(t, "Studio purple", preset.Name)
	assert.Equal(t, "creative-studio", preset.TemplateID)
	assert.Equal(t, fixedNow, preset.LastModified)

	// modificar el estado activo no altera el preset guardado
	_, err = live.Update(ctx, models.ColorsPatch{Primary: models.String("#000000")})
	require.NoError(t, err)
	_, err = live.SelectTemplate(ctx, "bold-impact")
	require.NoError(t, err)

	stored, ok := presets.Get(preset.ID)
	require.True(t, ok)
	assert.Equal(t, "#7c3aed", stored.Customization.Colors.Primary)

	found, err := presets.Load(ctx, preset.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, saved, live.Snapshot())

	assert.Equal(t, []string{models.ActionPresetSaved, models.ActionPresetLoaded}, notifier.actions())
}

func TestPresetStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, presets := newTestPresets(database.NewMemoryStore(), nil)

	for _, name := range []string{"Older", "Middle", "Newer"} {
		_, err := presets.Save(ctx, name)
		require.NoError(t, err)
	}

	var names []string
	for _, p := range presets.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Newer", "Middle", "Older"}, names)
}

func TestPresetStoreSaveRequiresName(t *testing.T) {
	_, presets := newTestPresets(database.NewMemoryStore(), nil)

	_, err := presets.Save(context.Background(), "   ")
	assert.True(t, errors.Is(err, ErrPresetNameRequired))
	assert.Empty(t, presets.List())
}

func TestPresetStoreDelete(t *testing.T) {
	ctx := context.Background()
	storage := database.NewMemoryStore()
	notifier := &recordingNotifier{}
	_, presets := newTestPresets(storage, notifier)

	first, err := presets.Save(ctx, "First")
	require.NoError(t, err)
	second, err := presets.Save(ctx, "Second")
	require.NoError(t, err)

	list := presets.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before, err := storage.Get(ctx, PresetsKey)
		require.NoError(t, err)

		found, err := presets.Delete(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Len(t, presets.List(), 2)

		after, err := storage.Get(ctx, PresetsKey)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("existing id", func(t *testing.T) {
		found, err := presets.Delete(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, found)

		list := presets.List()
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID)
	})

	assert.Equal(t, []string{models.ActionPresetSaved, models.ActionPresetSaved, models.ActionPresetDeleted}, notifier.actions())
}

func TestPresetStoreLoadUnknown(t *testing.T) {
	ctx := context.Background()
	live, presets := newTestPresets(database.NewMemoryStore(), nil)
	before := live.Snapshot()

	found, err := presets.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, live.Snapshot())
}

func TestPresetStoreInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("reloads persisted list newest first", func(t *testing.T) {
		storage := database.NewMemoryStore()
		_, presets := newTestPresets(storage, nil)
		_, err := presets.Save(ctx, "A")
		require.NoError(t, err)
		_, err = presets.Save(ctx, "B")
		require.NoError(t, err)

		_, reopened := newTestPresets(storage, nil)
		list := reopened.Initialize(ctx)
		require.Len(t, list, 2)
		assert.Equal(t, "B", list[0].Name)
		assert.Equal(t, "A", list[1].Name)
		assert.Equal(t, fixedNow, list[0].LastModified)
	})

	t.Run("corrupt list starts empty", func(t *testing.T) {
		storage := database.NewMemoryStore()
		require.NoError(t, storage.Set(ctx, PresetsKey, []byte(`[{"id":`)))

		_, presets := newTestPresets(storage, nil)
		assert.Empty(t, presets.Initialize(ctx))
	})

	t.Run("null list starts empty", func(t *testing.T) {
		storage := database.NewMemoryStore()
		require.NoError(t, storage.Set(ctx, PresetsKey, []byte(`null`)))

		_, presets := newTestPresets(storage, nil)
		list := presets.Initialize(ctx)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}

func TestPresetStorePersistFailure(t *testing.T) {
	ctx := context.Background()
	storage := newFlakyStore()
	notifier := &recordingNotifier{}
	_, presets := newTestPresets(storage, notifier)

	storage.failSet = true
	preset, err := presets.Save(ctx, "Offline")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errStorageDown))

	// el preset queda en memoria aunque no se haya guardado
	_, ok := presets.Get(preset.ID)
	assert.True(t, ok)
	assert.Equal(t, []string{models.ActionPresetsFailed}, notifier.actions())
}
