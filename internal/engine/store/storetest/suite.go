// Package storetest holds the behavioural tests every store backend must pass.
package storetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/slatedb-go/internal/engine/store"
)

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.KVStore) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.KVStore)
	}{
		{name: "basic_put_get", fn: testBasicPutGet},
		{name: "delete_operations", fn: testDelete},
		{name: "store_closure", fn: testStoreClosure},
		{name: "batch_commit_closure", fn: testBatchCommitAndClose},
		{name: "batch_last_write_wins", fn: testBatchLastWriteWins},
		{name: "bounded_range_iteration", fn: testBoundedRangeIteration},
		{name: "iterator_seek", fn: testIteratorSeek},
		{name: "iterator_validity", fn: testIteratorValidity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close() //nolint:errcheck

			tc.fn(t, s)
		})
	}
}

func put(t *testing.T, s store.KVStore, key, value string) {
	b := s.NewBatch()
	defer b.Close() //nolint:errcheck
	require.NoError(t, b.Put([]byte(key), []byte(value)))
	require.NoError(t, b.Commit(true))
}

func testBasicPutGet(t *testing.T, s store.KVStore) {
	put(t, s, "test-key", "test-value")

	retrieved, err := s.Get([]byte("test-key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("test-value"), retrieved)

	_, err = s.Get([]byte("non-existent"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testDelete(t *testing.T, s store.KVStore) {
	put(t, s, "delete-test", "to-be-deleted")

	b := s.NewBatch()
	require.NoError(t, b.Delete([]byte("delete-test")))
	require.NoError(t, b.Commit(false))

	_, err := s.Get([]byte("delete-test"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testStoreClosure(t *testing.T, s store.KVStore) {
	require.NoError(t, s.Close())

	_, err := s.Get([]byte("key"))
	assert.ErrorIs(t, err, store.ErrClosed)

	_, err = s.NewIterator(nil, nil)
	assert.ErrorIs(t, err, store.ErrClosed)

	// Double close should not error
	assert.NoError(t, s.Close())
}

func testBatchCommitAndClose(t *testing.T, s store.KVStore) {
	b := s.NewBatch()
	require.NoError(t, b.Put([]byte("key"), []byte("value")))
	require.NoError(t, b.Commit(true))

	// Operations after commit should fail
	assert.ErrorIs(t, b.Put([]byte("key2"), []byte("value2")), store.ErrBatchDone)
	assert.ErrorIs(t, b.Delete([]byte("key2")), store.ErrBatchDone)
	assert.ErrorIs(t, b.Commit(true), store.ErrBatchDone)

	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}

func testBatchLastWriteWins(t *testing.T, s store.KVStore) {
	b := s.NewBatch()
	require.NoError(t, b.Put([]byte("k"), []byte("v1")))
	require.NoError(t, b.Put([]byte("k"), []byte("v2")))
	require.NoError(t, b.Put([]byte("gone"), []byte("x")))
	require.NoError(t, b.Delete([]byte("gone")))
	require.NoError(t, b.Commit(true))

	v, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	_, err = s.Get([]byte("gone"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func collect(t *testing.T, it store.Iterator, ok bool) []string {
	var keys []string
	for ; ok; ok = it.Next() {
		_, err := it.Value()
		require.NoError(t, err)
		keys = append(keys, string(it.Key()))
	}
	return keys
}

func testBoundedRangeIteration(t *testing.T, s store.KVStore) {
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		put(t, s, k, "value-"+k)
	}

	it, err := s.NewIterator([]byte("b"), []byte("e"))
	require.NoError(t, err)
	defer it.Close() //nolint:errcheck

	assert.Equal(t, []string{"b", "c", "d"}, collect(t, it, it.First()))
}

func testIteratorSeek(t *testing.T, s store.KVStore) {
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		put(t, s, k, "value-"+k)
	}

	it, err := s.NewIterator([]byte("b"), []byte("e"))
	require.NoError(t, err)
	defer it.Close() //nolint:errcheck

	assert.Equal(t, []string{"c", "d"}, collect(t, it, it.SeekGE([]byte("bb"))))
	assert.False(t, it.SeekGE([]byte("e")))
}

func testIteratorValidity(t *testing.T, s store.KVStore) {
	put(t, s, "key1", "value1")
	put(t, s, "key2", "value2")

	it, err := s.NewIterator(nil, nil)
	require.NoError(t, err)
	defer it.Close() //nolint:errcheck

	// Initial state - iterator is not positioned
	assert.False(t, it.Valid())

	assert.True(t, it.First())
	assert.True(t, it.Valid())
	assert.Equal(t, []byte("key1"), it.Key())

	assert.True(t, it.Next())
	val, err := it.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("value2"), val)

	// No more elements
	assert.False(t, it.Next())
	assert.False(t, it.Valid())

	_, err = it.Value()
	assert.ErrorIs(t, err, store.ErrIteratorInvalid)
}
