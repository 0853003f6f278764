package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := NotFound("material", 42)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "material 42 not found", err.Error())

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestInUse(t *testing.T) {
	err := InUse("material", 3, 2, "BOM entries")

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "material 3 is in use: referenced by 2 BOM entries", err.Error())
}

func TestStorage(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("failed to check material availability", cause)

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to check material availability", Message(err))

	notFound := NotFound("purchase order", 9)
	assert.Same(t, notFound, Storage("failed to load", notFound))

	assert.Nil(t, Storage("unused", nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("material", 1), http.StatusNotFound},
		{"conflict", Conflict("duplicate sku %q", "M-1"), http.StatusConflict},
		{"in use", InUse("unit", 1, 1, "materials"), http.StatusConflict},
		{"validation", Validation("quantity must be positive"), http.StatusBadRequest},
		{"storage", Storage("failed", errors.New("boom")), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessage_HidesUntypedCauses(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("pq: password authentication failed")))
	assert.Equal(t, "quantity must be positive", Message(Validation("quantity must be positive")))
}
