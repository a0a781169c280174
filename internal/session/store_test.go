package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesOnFirstContact(t *testing.T) {
	st := NewStore([]int64{42})

	s := st.Resolve(1, "Ada")
	require.NotNil(t, s)
	assert.Equal(t, int64(1), s.Identity)
	assert.Equal(t, "Ada", s.FirstName)
	assert.False(t, s.Admin)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StageMenu, s.Stage)

	again := st.Resolve(1, "Ada")
	assert.Same(t, s, again, "second contact reuses the session")
	assert.Equal(t, 1, st.Count())
}

func TestAdminFlag(t *testing.T) {
	st := NewStore([]int64{42})
	assert.True(t, st.Resolve(42, "Root").Admin)
	assert.False(t, st.Resolve(7, "Guest").Admin)
}

func TestReset(t *testing.T) {
	st := NewStore(nil)
	first := st.Resolve(1, "Ada")
	first.History = []string{"Guides"}

	st.Reset(1)
	_, ok := st.Get(1)
	assert.False(t, ok)

	fresh := st.Resolve(1, "Ada")
	assert.NotSame(t, first, fresh)
	assert.Empty(t, fresh.History)
	assert.NotEqual(t, first.ID, fresh.ID)
}
