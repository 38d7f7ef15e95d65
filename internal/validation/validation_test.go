package validation

import (
	"errors"
	"io"
	"os"
	"testing"

	"identity_service/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func boolPtr(b bool) *bool { return &b }

func validCreateRequest() model.CreateUserRequest {
	return model.CreateUserRequest{
		Email:      "ann@example.com",
		Name:       "Ann",
		Role:       model.RoleUser,
		IsVerified: boolPtr(false),
		Phone:      &model.PhoneInput{CountryCode: "+1", Number: "5551234567"},
		Password:   "longpassword1",
	}
}

func TestCreateRequestValid(t *testing.T) {
	req := validCreateRequest()
	require.NoError(t, binding.Validator.ValidateStruct(req))

	cred, err := req.Credential()
	require.NoError(t, err)
	assert.Equal(t, model.LocalCredential{Password: "longpassword1"}, cred)
}

func TestCreateRequestMessagesAreOrderedPerField(t *testing.T) {
	req := model.CreateUserRequest{
		Email:    "not-an-email",
		Name:     "A",
		Role:     "SUPER",
		Password: "longpassword1",
	}

	err := binding.Validator.ValidateStruct(req)
	require.Error(t, err)

	assert.Equal(t, []string{
		"email must be a valid email address",
		"name must be at least 2 characters long",
		"role must be one of ADMIN, USER",
		"isVerified is required",
		"phone is required",
	}, Messages(err))
}

func TestPhonePatternMessages(t *testing.T) {
	req := validCreateRequest()
	req.Phone = &model.PhoneInput{CountryCode: "254", Number: "12"}

	err := binding.Validator.ValidateStruct(req)
	require.Error(t, err)

	assert.Equal(t, []string{
		"phone.countryCode must be a + followed by 1 to 3 digits",
		"phone.number must be 4 to 14 digits",
	}, Messages(err))
}

func TestCredentialResolution(t *testing.T) {
	local := validCreateRequest()
	cred, err := local.Credential()
	require.NoError(t, err)
	assert.IsType(t, model.LocalCredential{}, cred)

	federated := validCreateRequest()
	federated.Password = ""
	federated.Provider = "google"
	federated.ProviderID = "google-uid-1"
	cred, err = federated.Credential()
	require.NoError(t, err)
	assert.Equal(t, model.FederatedCredential{Provider: "google", ProviderID: "google-uid-1"}, cred)

	both := validCreateRequest()
	both.Provider = "google"
	both.ProviderID = "google-uid-1"
	_, err = both.Credential()
	assert.ErrorIs(t, err, model.ErrBothCredentials)

	neither := validCreateRequest()
	neither.Password = ""
	_, err = neither.Credential()
	assert.ErrorIs(t, err, model.ErrMissingCredential)

	orphanProvider := validCreateRequest()
	orphanProvider.Password = ""
	orphanProvider.Provider = "google"
	_, err = orphanProvider.Credential()
	assert.ErrorIs(t, err, model.ErrProviderIDRequired)

	orphanID := validCreateRequest()
	orphanID.Password = ""
	orphanID.ProviderID = "google-uid-1"
	_, err = orphanID.Credential()
	assert.ErrorIs(t, err, model.ErrProviderIDForbidden)
}

func TestUpdateRequestPartialRules(t *testing.T) {
	empty := model.UpdateUserRequest{}
	require.NoError(t, binding.Validator.ValidateStruct(empty))
	assert.True(t, empty.Empty())

	badEmail := "nope"
	req := model.UpdateUserRequest{Email: &badEmail}
	err := binding.Validator.ValidateStruct(req)
	require.Error(t, err)
	assert.Equal(t, []string{"email must be a valid email address"}, Messages(err))
	assert.False(t, req.Empty())

	shortPassword := "short"
	err = binding.Validator.ValidateStruct(model.UpdateUserRequest{Password: &shortPassword})
	require.Error(t, err)
	assert.Equal(t, []string{"password must be at least 8 characters long"}, Messages(err))
}

func TestMessagesForMalformedBodies(t *testing.T) {
	assert.Equal(t, []string{"request body is required"}, Messages(io.EOF))
	assert.Equal(t, []string{"request body must be valid JSON"}, Messages(errors.New("unexpected token")))
}
