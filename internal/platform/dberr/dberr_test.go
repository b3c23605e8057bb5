// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yarnswap/internal/platform/apperr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no_rows", pgx.ErrNoRows, apperr.CodeNotFound, http.StatusNotFound},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound, http.StatusNotFound},
		{"unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, apperr.CodeConflict, http.StatusConflict},
		{"foreign_key_violation", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, apperr.CodeNotFound, http.StatusNotFound},
		{"other_pg_error", &pgconn.PgError{Code: pgerrcode.QueryCanceled}, apperr.CodeInternal, http.StatusInternalServerError},
		{"plain_error", errors.New("conn closed"), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(Wrap(tt.err, "Tag", "find_tag"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.Equal(t, tt.status, ae.HTTPStatus)
			assert.ErrorIs(t, ae, tt.err)
		})
	}
}

func TestWrap_PassThrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "Tag", "find_tag"))

	original := apperr.New(http.StatusConflict, apperr.CodeDuplicateName, "Tag name already in use")
	assert.Same(t, original, Wrap(original, "Tag", "rename_tag"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
