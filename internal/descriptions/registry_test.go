package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/armlaunch/internal/descriptions/gripper"
	"github.com/aki/armlaunch/internal/descriptions/panda"
	"github.com/aki/armlaunch/internal/launch"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	gen := func() *launch.LaunchDescription { return launch.NewLaunchDescription() }

	require.NoError(t, r.Register("b/b.launch", "second", gen))
	require.NoError(t, r.Register("a/a.launch", "first", gen))

	t.Run("duplicate", func(t *testing.T) {
		err := r.Register("a/a.launch", "again", gen)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("invalid", func(t *testing.T) {
		assert.Error(t, r.Register("", "", gen))
		assert.Error(t, r.Register("c/c.launch", "", nil))
	})

	t.Run("list sorted", func(t *testing.T) {
		entries := r.List()
		require.Len(t, entries, 2)
		assert.Equal(t, "a/a.launch", entries[0].Source)
		assert.Equal(t, "b/b.launch", entries[1].Source)
	})

	t.Run("load", func(t *testing.T) {
		desc, err := r.Load("a/a.launch")
		require.NoError(t, err)
		assert.NotNil(t, desc)

		_, err = r.Load("missing/missing.launch")
		assert.ErrorIs(t, err, launch.ErrUnknownDescription)
	})
}

func TestDefaultRegistry(t *testing.T) {
	entry, err := Get(Default)
	require.NoError(t, err)
	assert.Equal(t, panda.Source, entry.Source)

	_, err = Get(gripper.Source)
	require.NoError(t, err)

	assert.Len(t, List(), 2)

	desc, err := Loader().Load(gripper.Source)
	require.NoError(t, err)
	assert.Len(t, desc.Arguments(), 3)
}
