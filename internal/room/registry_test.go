package room

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCodesAreUnique(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		r, err := reg.Create(DefaultQuestionTimer)
		require.NoError(t, err)
		code := r.Code()
		require.Len(t, code, CodeLength)
		for _, ch := range code {
			require.True(t, strings.ContainsRune(CodeAlphabet, ch), "unexpected character %q", ch)
		}
		require.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Equal(t, 1000, reg.Len())
}

func TestRegistryRetriesOnCollision(t *testing.T) {
	reg := NewRegistry()
	// the first two codes drawn are both "AAAA"
	draws := 0
	reg.intn = func(n int) int {
		draws++
		if draws <= 2*CodeLength {
			return 0
		}
		return 1
	}

	first, err := reg.Create(DefaultQuestionTimer)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", first.Code())

	second, err := reg.Create(DefaultQuestionTimer)
	require.NoError(t, err)
	assert.Equal(t, "BBBB", second.Code())
	assert.Equal(t, 3*CodeLength, draws)
}

func TestRegistryFull(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < codeSpace(); i++ {
		reg.rooms[strconv.Itoa(i)] = nil
	}
	_, err := reg.Create(DefaultQuestionTimer)
	assert.ErrorIs(t, err, ErrRegistryFull)
}

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	r, err := reg.Create(DefaultQuestionTimer)
	require.NoError(t, err)

	got, ok := reg.Get(" " + strings.ToLower(r.Code()) + "\n")
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = reg.Get("")
	assert.False(t, ok)
	_, ok = reg.Get("ZZZZZ")
	assert.False(t, ok)
}

func TestRegistryDeleteOnlyRemovesSameRoom(t *testing.T) {
	reg := NewRegistry()
	r, err := reg.Create(DefaultQuestionTimer)
	require.NoError(t, err)

	impostor := newRoom(r.Code(), DefaultQuestionTimer)
	assert.False(t, reg.Delete(impostor))
	_, ok := reg.Get(r.Code())
	assert.True(t, ok)

	assert.True(t, reg.Delete(r))
	assert.False(t, reg.Delete(r))
	assert.Zero(t, reg.Len())
}

func TestRegistryListIsSorted(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < 20; i++ {
		_, err := reg.Create(DefaultQuestionTimer)
		require.NoError(t, err)
	}
	rooms := reg.List()
	require.Len(t, rooms, 20)
	for i := 1; i < len(rooms); i++ {
		assert.Less(t, rooms[i-1].Code(), rooms[i].Code())
	}
}

func TestNewRoomDefaults(t *testing.T) {
	r := newRoom("ABCD", 0)
	snap := r.Snapshot()
	assert.Nil(t, snap.HostID)
	assert.Equal(t, -1, snap.CurrentQuestionIndex)
	assert.Equal(t, float64(DefaultQuestionTimer), snap.AutoQuestionTimer)
	assert.False(t, snap.RoundActive)
	assert.False(t, snap.AutoLeaderboard)
}
