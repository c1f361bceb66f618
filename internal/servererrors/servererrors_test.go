package servererrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClassifiesByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusInternalServerError, KindInternal},
		{http.StatusTeapot, KindInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := New(tt.status, "boom", nil)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestBadRequestKindName(t *testing.T) {
	err := New(http.StatusBadRequest, ErrInvalidRequestPayload.Error(), nil)
	assert.Equal(t, "bad_request", KindOf(err).String())
}

func TestWrapKeepsCause(t *testing.T) {
	err := fmt.Errorf("add item: %w", Validation(ErrInvalidQuantity, nil))
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, http.StatusUnprocessableEntity, statusByKind[KindOf(err)])
}

func TestPersistenceHidesDriverError(t *testing.T) {
	driver := errors.New("pq: connection refused")
	err := Persistence(driver)
	assert.Equal(t, ErrStoreUnavailable.Error(), err.Error())
	assert.True(t, errors.Is(err, driver))
	assert.Equal(t, KindInternal, KindOf(driver))
}
