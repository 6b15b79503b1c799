// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/kv"
	"github.com/marlinprotocol/contracts-sub002/lvldb"
)

func TestBucketStore(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	s1 := kv.Bucket("s1").NewStore(db)
	s2 := kv.Bucket("s2").NewStore(db)

	require.NoError(t, s1.Put([]byte("k"), []byte("v1")))
	require.NoError(t, s2.Put([]byte("k"), []byte("v2")))

	v, err := s1.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = s2.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	raw, err := db.Get([]byte("s1k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), raw)

	_, err = s1.Get([]byte("missing"))
	assert.True(t, s1.IsNotFound(err))

	v, err = kv.GetOrNil(s1, []byte("missing"))
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestBucketBulkIterate(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	store := kv.Bucket("st").NewStore(db)
	bulk := store.Bulk()
	require.NoError(t, bulk.Put([]byte("a"), []byte("1")))
	require.NoError(t, bulk.Put([]byte("b"), []byte("2")))
	require.NoError(t, bulk.Delete([]byte("c")))
	assert.Equal(t, 3, bulk.Len())
	require.NoError(t, bulk.Write())

	// a key outside the bucket is never visited
	require.NoError(t, db.Put([]byte("zz"), []byte("x")))

	got := map[string]string{}
	err = store.Iterate(kv.Range{}, func(p kv.Pair) bool {
		got[string(p.Key())] = string(p.Value())
		return true
	})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
}
