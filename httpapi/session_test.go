package httpapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/korylprince/library-desk-server/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	s := httpapi.NewMemorySessionStore(context.Background(), time.Hour, 0, discard)

	key, err := s.Create(7)
	require.NoError(t, err)
	require.Len(t, key, 36)

	sess, err := s.Check(key)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, int64(7), sess.OperatorID)
	assert.True(t, sess.Expires.After(sess.Created))

	for _, bad := range []string{"", "not-a-session", "00000000-0000-0000-0000-000000000000"} {
		sess, err = s.Check(bad)
		assert.NoError(t, err)
		assert.Nil(t, sess, bad)
	}

	other, err := s.Create(8)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	s := httpapi.NewMemorySessionStore(context.Background(), time.Millisecond, 0, discard)

	key, err := s.Create(1)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	sess, err := s.Check(key)
	assert.NoError(t, err)
	assert.Nil(t, sess)

	_, err = s.Create(2)
	require.NoError(t, err)
	_, err = s.Create(3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Expire(time.Now().Add(time.Minute)))
	assert.Equal(t, 0, s.Expire(time.Now().Add(time.Minute)))
}
