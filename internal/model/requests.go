package model

// PhoneInput is the phone object of a create/update payload.
type PhoneInput struct {
	CountryCode string `json:"countryCode" binding:"required,countrycode"`
	Number      string `json:"number" binding:"required,phonedigits"`
}

// Phone converts the input into the stored composite.
func (p PhoneInput) Phone() Phone {
	return Phone{CountryCode: p.CountryCode, Number: p.Number}
}

// CreateUserRequest is the creation payload. IsVerified and Phone are
// pointers so that "required" means present, not non-zero (false is a valid
// isVerified value). Exactly one credential form must be supplied; see
// Credential.
type CreateUserRequest struct {
	Email      string      `json:"email" binding:"required,email,emailpattern"`
	Name       string      `json:"name" binding:"required,min=2,max=50"`
	Role       Role        `json:"role" binding:"required,oneof=ADMIN USER"`
	IsVerified *bool       `json:"isVerified" binding:"required"`
	Phone      *PhoneInput `json:"phone" binding:"required"`
	Password   string      `json:"password" binding:"omitempty,min=8,max=128"`
	Provider   string      `json:"provider" binding:"omitempty,min=1"`
	ProviderID string      `json:"providerId" binding:"omitempty,min=1"`
}

// Credential resolves the payload's credential fields into the tagged union,
// enforcing the local-xor-federated rule by construction.
func (r CreateUserRequest) Credential() (Credential, error) {
	switch {
	case r.Password != "" && (r.Provider != "" || r.ProviderID != ""):
		return nil, ErrBothCredentials
	case r.Provider != "" && r.ProviderID == "":
		return nil, ErrProviderIDRequired
	case r.Provider == "" && r.ProviderID != "":
		return nil, ErrProviderIDForbidden
	case r.Provider != "":
		return FederatedCredential{Provider: r.Provider, ProviderID: r.ProviderID}, nil
	case r.Password != "":
		return LocalCredential{Password: r.Password}, nil
	default:
		return nil, ErrMissingCredential
	}
}

// UpdateUserRequest is the partial-update payload. Every field is optional;
// per-field rules match creation when a field is present. The payload carries
// no provider fields, so an account can never switch credential form, and a
// password change is only accepted for local accounts.
type UpdateUserRequest struct {
	Email      *string     `json:"email" binding:"omitempty,email,emailpattern"`
	Name       *string     `json:"name" binding:"omitempty,min=2,max=50"`
	Role       *Role       `json:"role" binding:"omitempty,oneof=ADMIN USER"`
	IsVerified *bool       `json:"isVerified"`
	Phone      *PhoneInput `json:"phone"`
	Password   *string     `json:"password" binding:"omitempty,min=8,max=128"`
}

// Empty reports whether the payload carries no fields at all.
func (r UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.Name == nil && r.Role == nil &&
		r.IsVerified == nil && r.Phone == nil && r.Password == nil
}
