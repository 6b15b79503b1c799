// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marlinprotocol/contracts-sub002/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := map[string]string{"foo": "bar"}
	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})

	get := func(key string) string {
		v, _, err := sm.Get(key)
		assert.NoError(t, err)
		return v
	}

	assert.Equal(t, 0, sm.Depth())
	assert.Equal(t, "bar", get("foo"))

	assert.Equal(t, 0, sm.Push())
	sm.Put("foo", "baz")
	assert.Equal(t, "baz", get("foo"))
	sm.Put("foo", "baz1")
	assert.Equal(t, "baz1", get("foo"))

	assert.Equal(t, 1, sm.Push())
	sm.Put("foo", "qux")
	assert.Equal(t, "qux", get("foo"))

	sm.Pop()
	assert.Equal(t, 1, sm.Depth())
	assert.Equal(t, "baz1", get("foo"))

	sm.Pop()
	assert.Equal(t, "bar", get("foo"))

	sm.Push()
	sm.Push()
	sm.PopTo(0)
	assert.Equal(t, 0, sm.Depth())
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(string) (int, bool, error) { return 0, false, nil })

	sm.Push()
	sm.Put("a", 1)
	sm.Put("a", 2)
	sm.Push()
	sm.Put("b", 3)

	var keys []string
	var values []int
	sm.Journal(func(k string, v int) bool {
		keys = append(keys, k)
		values = append(values, v)
		return true
	})
	assert.Equal(t, []string{"a", "a", "b"}, keys)
	assert.Equal(t, []int{1, 2, 3}, values)

	sm.Pop()
	count := 0
	sm.Journal(func(string, int) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)

	v, ok, err := sm.Get("b")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestStackedMapSourceError(t *testing.T) {
	sm := stackedmap.New(func(string) (int, bool, error) { return 0, false, errors.New("boom") })

	_, _, err := sm.Get("missing")
	assert.EqualError(t, err, "boom")

	sm.Push()
	sm.Put("k", 7)
	v, ok, err := sm.Get("k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}
