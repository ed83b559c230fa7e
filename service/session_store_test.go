package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skohli21/utility-bill-analyzer/utils"
)

func TestSessionStoreGetOrCreate(t *testing.T) {
	st := NewSessionStore(time.Hour, testLogger())

	s1 := st.GetOrCreate("")
	require.NotNil(t, s1)

	// Unknown and malformed IDs both mint a fresh session.
	s2 := st.GetOrCreate("definitely-not-a-uuid")
	assert.NotEqual(t, s1.ID, s2.ID)

	s3 := st.GetOrCreate(s1.ID.String())
	assert.Equal(t, s1.ID, s3.ID)
	assert.Equal(t, 2, st.Count())
}

func TestSessionStoreDelete(t *testing.T) {
	st := NewSessionStore(time.Hour, testLogger())
	s := st.GetOrCreate("")

	assert.True(t, st.Delete(s.ID.String()))
	assert.False(t, st.Delete(s.ID.String()))

	_, ok := st.Get(s.ID.String())
	assert.False(t, ok)
}

func TestSessionStoreSweep(t *testing.T) {
	st := NewSessionStore(time.Nanosecond, testLogger())
	s := st.GetOrCreate("")
	s.Update(func(c *utils.BillCollection) {
		assert.Equal(t, 0, c.Len())
	})

	time.Sleep(5 * time.Millisecond)
	st.Sweep()
	assert.Equal(t, 0, st.Count())
}
