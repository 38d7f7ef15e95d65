package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCredential_Local(t *testing.T) {
	req := CreateUserRequest{Password: "longpassword1"}

	cred, err := req.Credential()
	require.NoError(t, err)

	local, ok := cred.(LocalCredential)
	require.True(t, ok)
	assert.Equal(t, "longpassword1", local.Password)
}

func TestCredential_Federated(t *testing.T) {
	req := CreateUserRequest{Provider: "google", ProviderID: "google-uid-1"}

	cred, err := req.Credential()
	require.NoError(t, err)

	fed, ok := cred.(FederatedCredential)
	require.True(t, ok)
	assert.Equal(t, "google", fed.Provider)
	assert.Equal(t, "google-uid-1", fed.ProviderID)
}

func TestCredential_BothForms(t *testing.T) {
	req := CreateUserRequest{Password: "longpassword1", Provider: "google", ProviderID: "google-uid-1"}

	_, err := req.Credential()
	assert.ErrorIs(t, err, ErrBothCredentials)
}

func TestCredential_Neither(t *testing.T) {
	_, err := CreateUserRequest{}.Credential()
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestCredential_ProviderWithoutID(t *testing.T) {
	_, err := CreateUserRequest{Provider: "google"}.Credential()
	assert.ErrorIs(t, err, ErrProviderIDRequired)
}

func TestCredential_ProviderIDWithoutProvider(t *testing.T) {
	_, err := CreateUserRequest{ProviderID: "google-uid-1"}.Credential()
	assert.ErrorIs(t, err, ErrProviderIDForbidden)
}

func TestIsFederated(t *testing.T) {
	local := User{PasswordHash: strPtr("$2a$10$hash")}
	assert.False(t, local.IsFederated())

	blank := User{Provider: strPtr("")}
	assert.False(t, blank.IsFederated())

	fed := User{Provider: strPtr("google"), ProviderID: strPtr("google-uid-1")}
	assert.True(t, fed.IsFederated())
}

func TestPublicUser_OmitsSecrets(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	u := User{
		ID:           "4f9d9ad2-676f-4437-8896-1cbfe0a2a97f",
		Email:        "ann@example.com",
		Name:         "Ann",
		Role:         RoleUser,
		IsVerified:   true,
		Phone:        Phone{CountryCode: "+1", Number: "5551234567"},
		Credits:      DefaultCredits,
		PasswordHash: strPtr("$2a$10$hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	dto := PublicUser(&u)

	assert.Equal(t, u.ID, dto.ID)
	assert.Equal(t, u.Email, dto.Email)
	assert.Equal(t, u.Name, dto.Name)
	assert.Equal(t, RoleUser, dto.Role)
	assert.True(t, dto.IsVerified)
	assert.Equal(t, u.Phone, dto.Phone)
	assert.Equal(t, DefaultCredits, dto.Credits)
	assert.Equal(t, now, dto.CreatedAt)
	assert.Equal(t, now, dto.UpdatedAt)
}

func TestPublicUsers_PreservesOrder(t *testing.T) {
	users := []User{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	dtos := PublicUsers(users)

	require.Len(t, dtos, 3)
	assert.Equal(t, "a", dtos[0].ID)
	assert.Equal(t, "b", dtos[1].ID)
	assert.Equal(t, "c", dtos[2].ID)

	assert.NotNil(t, PublicUsers(nil))
	assert.Empty(t, PublicUsers(nil))
}

func TestParseLookupAttribute(t *testing.T) {
	for _, valid := range []string{"id", "email", "phone"} {
		attr, ok := ParseLookupAttribute(valid)
		assert.True(t, ok)
		assert.Equal(t, LookupAttribute(valid), attr)
	}

	_, ok := ParseLookupAttribute("credits")
	assert.False(t, ok)
}

func TestUserPatch_Empty(t *testing.T) {
	assert.True(t, UserPatch{}.Empty())
	assert.False(t, UserPatch{Name: strPtr("Ann")}.Empty())
}

func TestUpdateUserRequest_Empty(t *testing.T) {
	assert.True(t, UpdateUserRequest{}.Empty())
	assert.False(t, UpdateUserRequest{Email: strPtr("ann@example.com")}.Empty())
}

func TestPhoneInput_Phone(t *testing.T) {
	in := PhoneInput{CountryCode: "+44", Number: "7700900123"}
	assert.Equal(t, Phone{CountryCode: "+44", Number: "7700900123"}, in.Phone())
}
