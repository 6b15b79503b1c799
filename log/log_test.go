// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsDefault(t *testing.T) {
	old := Root()
	t.Cleanup(func() { SetDefault(old) })

	logger := WithContext("pkg", "test")

	var buf bytes.Buffer
	h, err := NewHandler("json", &buf, LevelDebug, false)
	require.NoError(t, err)
	SetDefault(NewLogger(h))

	logger.With("stash", 1).Info("created", "owner", "0xabc")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "created", rec["msg"])
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, float64(1), rec["stash"])
	assert.Equal(t, "0xabc", rec["owner"])
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	for _, f := range []string{"", "terminal", "JSON", "logfmt"} {
		h, err := NewHandler(f, &buf, LevelInfo, false)
		assert.NoError(t, err)
		assert.NotNil(t, h)
	}
	_, err := NewHandler("xml", &buf, LevelInfo, false)
	assert.Error(t, err)

	h, err := NewHandler("logfmt", &buf, LevelWarn, false)
	require.NoError(t, err)
	l := NewLogger(h)
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelInfo, FromVerbosity(3))
	assert.Equal(t, LevelDebug, FromVerbosity(4))
	assert.Equal(t, LevelTrace, FromVerbosity(5))
}
