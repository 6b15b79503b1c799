// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"ok", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest},
		{"forbidden", Forbidden(errors.New("no")), http.StatusForbidden},
		{"not found revert", reverts.New(reverts.NotFound, "missing"), http.StatusNotFound},
		{"other revert", reverts.New(reverts.InvalidInput, "invalid"), http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped http error", errors.WithMessage(NotFound(errors.New("x")), "stash"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
				if tt.err != nil {
					return tt.err
				}
				return WriteJSON(w, M{"ok": true})
			})
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestParseUint64(t *testing.T) {
	v, err := ParseUint64("", 7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), v)

	v, err = ParseUint64("42", 7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	_, err = ParseUint64("-1", 7)
	assert.Error(t, err)
}
