package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPebbleStoreRoundTrip(t *testing.T) {
	s, err := OpenPebble(filepath.Join(t.TempDir(), "chat"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("k", []byte("v1")))
	data, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), data)

	require.NoError(t, s.Put("k", []byte("v2")))
	data, _, _ = s.Get("k")
	assert.Equal(t, []byte("v2"), data)
}

func TestPebbleStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat")

	s, err := OpenPebble(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(MessagesKey("ws1"), []byte(`{"ch1":[]}`)))
	require.NoError(t, s.Close())

	s, err = OpenPebble(path)
	require.NoError(t, err)
	defer s.Close()

	data, ok, err := s.Get(MessagesKey("ws1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"ch1":[]}`), data)
}
