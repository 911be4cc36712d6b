package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("load ticket: %w", pgx.ErrNoRows), CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, CodeConflict, http.StatusConflict},
		{"other pg error", &pgconn.PgError{Code: "40001"}, CodeInternal, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
		{"bad request", NewBadRequest("nope", nil), CodeBadRequest, http.StatusBadRequest},
		{"forbidden", NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
}

func TestMapErrorDoesNotDoubleWrap(t *testing.T) {
	original := NewNotFound("ticket", map[string]any{"custom_ticket_id": "BI-000001"})
	wrapped := fmt.Errorf("assign: %w", original)

	mapped := MapError(wrapped)

	var domainErr *DomainError
	require.True(t, errors.As(mapped, &domainErr))
	assert.Same(t, original, error(domainErr))
	assert.Nil(t, MapError(nil))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewConflict("dup", nil), CodeConflict))
	assert.False(t, HasCode(NewConflict("dup", nil), CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}
