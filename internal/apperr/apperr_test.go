package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusPerKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation([]string{"email is required"}).HTTPStatus())
	assert.Equal(t, http.StatusConflict, Conflict("user with this email already exists").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound("User").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("missing credentials").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Configuration("signing secret is not configured").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal("storage failure", errors.New("boom")).HTTPStatus())
}

func TestNotFoundNamesResource(t *testing.T) {
	err := NotFound("User")
	assert.Equal(t, "User not found", err.Message)
	assert.Equal(t, "User not found", err.Error())
}

func TestValidationCarriesOrderedDetails(t *testing.T) {
	details := []string{"email must be a valid email address", "name must be between 2 and 50 characters"}
	err := Validation(details)
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, details, err.Details)
}

func TestFromUnwrapsThroughChain(t *testing.T) {
	cause := Conflict("user with this phone number already exists")
	wrapped := fmt.Errorf("create user: %w", cause)

	got, ok := From(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindConflict, got.Kind)
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
}

func TestFromPlainError(t *testing.T) {
	_, ok := From(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsKind(nil, KindInternal))
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("storage failure", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage failure")
	assert.Contains(t, err.Error(), "connection reset")
}
