package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/overworld/internal/config"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.RegisterDefaults(config.DefaultEncounters())
	return s
}

func TestStore_DefaultsAreNotOverrides(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "settings.db"))

	v, ok := s.Get(config.KeyShinyRate)
	require.True(t, ok)
	assert.Equal(t, 8192, v)

	_, ok = s.Int(config.KeyShinyRate)
	assert.False(t, ok, "untouched keys fall through the provider chain")

	_, ok = s.Get("voe_nonexistent")
	assert.False(t, ok)
}

func TestStore_SetClampsAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")
	s := openTestStore(t, path)

	got, err := s.Set(ctx, config.KeyMaxDistance, 99)
	require.NoError(t, err)
	assert.Equal(t, 20, got)

	require.NoError(t, s.SetBool(ctx, config.KeyDeleteShiny, true))

	v, ok := s.Int(config.KeyMaxDistance)
	require.True(t, ok)
	assert.Equal(t, 20, v)
	b, ok := s.Bool(config.KeyDeleteShiny)
	require.True(t, ok)
	assert.True(t, b)

	_, err = s.Set(ctx, "voe_nonexistent", 1)
	assert.ErrorIs(t, err, ErrUnknownKey)

	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	v, ok = reopened.Int(config.KeyMaxDistance)
	require.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "settings.db"))

	_, err := s.Set(ctx, config.KeyFusionRate, 3)
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx, config.KeyFusionRate))

	v, _ := s.Get(config.KeyFusionRate)
	assert.Equal(t, 10, v)
	_, ok := s.Int(config.KeyFusionRate)
	assert.False(t, ok)

	assert.ErrorIs(t, s.Reset(ctx, "voe_nonexistent"), ErrUnknownKey)
}

func TestStore_Listeners(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "settings.db"))

	type change struct {
		key      config.Key
		old, new int
	}
	var keyed, all []change
	s.OnChange(config.KeyDisabled, func(k config.Key, old, new int) {
		keyed = append(keyed, change{k, old, new})
	})
	s.OnAnyChange(func(k config.Key, old, new int) {
		all = append(all, change{k, old, new})
	})
	s.OnAnyChange(func(config.Key, int, int) { panic("bad listener") })

	require.NoError(t, s.SetBool(ctx, config.KeyDisabled, true))
	require.NoError(t, s.SetBool(ctx, config.KeyDisabled, true)) // unchanged
	_, err := s.Set(ctx, config.KeyShinyRate, 4096)
	require.NoError(t, err)

	assert.Equal(t, []change{{config.KeyDisabled, 0, 1}}, keyed)
	assert.Equal(t, []change{
		{config.KeyDisabled, 0, 1},
		{config.KeyShinyRate, 8192, 4096},
	}, all)
}

func TestStore_Presets(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "settings.db"))

	_, err := s.Set(ctx, config.KeyOutbreakRadius, 25)
	require.NoError(t, err)
	require.NoError(t, s.SavePreset(ctx, "wide"))

	_, err = s.Set(ctx, config.KeyOutbreakRadius, 5)
	require.NoError(t, err)
	require.NoError(t, s.SavePreset(ctx, "narrow"))

	names, err := s.Presets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"narrow", "wide"}, names)

	require.NoError(t, s.LoadPreset(ctx, "wide"))
	v, _ := s.Get(config.KeyOutbreakRadius)
	assert.Equal(t, 25, v)

	require.NoError(t, s.DeletePreset(ctx, "wide"))
	assert.ErrorIs(t, s.LoadPreset(ctx, "wide"), ErrUnknownPreset)
}

func TestStore_AsProvider(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "settings.db"))

	base := config.DefaultEncounters()
	base.ShinyRate = 512
	tun := config.NewTunables(base, s)

	assert.Equal(t, 512, tun.Int(config.KeyShinyRate), "yaml value when not overridden")

	_, err := s.Set(ctx, config.KeyShinyRate, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, tun.Int(config.KeyShinyRate))

	require.NoError(t, s.SetBool(ctx, config.KeyHordeEnabled, false))
	assert.False(t, tun.Bool(config.KeyHordeEnabled))
}

func TestStore_All(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "settings.db"))
	_, err := s.Set(ctx, config.KeyMaxLevel, 50)
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, len(config.Specs()))
	assert.Equal(t, config.KeyDisabled, all[0].Key)
	for _, st := range all {
		if st.Key == config.KeyMaxLevel {
			assert.True(t, st.Overridden)
			assert.Equal(t, 50, st.Value)
			assert.Equal(t, 100, st.Default)
		}
	}
}
