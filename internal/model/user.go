package model

import (
	"errors"
	"time"
)

// Role of a user within the system. The role is carried through the record
// and exposed in responses; no access decisions are made from it here.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// DefaultCredits is the starting allowance assigned at creation. Credits are
// not client-settable on this surface.
const DefaultCredits = 100

// Phone is the composite phone attribute. The number is the uniqueness key;
// the country code is carried alongside it.
type Phone struct {
	CountryCode string `json:"countryCode"`
	Number      string `json:"number"`
}

// Credential is the tagged union of the two account forms. A record is either
// local (password) or federated (provider + providerId), never both and never
// neither; constructing a Credential is the only way to express the choice.
type Credential interface {
	credential()
}

// LocalCredential is a plaintext password supplied at creation. It is hashed
// before persistence and never stored or logged as-is.
type LocalCredential struct {
	Password string
}

// FederatedCredential identifies an account backed by an external provider.
type FederatedCredential struct {
	Provider   string
	ProviderID string
}

func (LocalCredential) credential()     {}
func (FederatedCredential) credential() {}

var (
	ErrBothCredentials     = errors.New("password and provider credentials cannot both be supplied")
	ErrMissingCredential   = errors.New("either a password or provider credentials are required")
	ErrProviderIDRequired  = errors.New("providerId is required when provider is supplied")
	ErrProviderIDForbidden = errors.New("providerId is not allowed without provider")
)

// User is the stored record. It is internal to the service; the wire shape is
// UserDTO, produced by PublicUser.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	IsVerified   bool
	Phone        Phone
	Credits      int
	PasswordHash *string
	Provider     *string
	ProviderID   *string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFederated reports whether the record is backed by an external provider.
func (u *User) IsFederated() bool {
	return u.Provider != nil && *u.Provider != ""
}

// UserDTO is the sanitized outward representation. It never carries the
// password hash or provider identifiers.
type UserDTO struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified"`
	Phone      Phone     `json:"phone"`
	Credits    int       `json:"credits"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PublicUser transforms a stored record into its wire-safe shape.
func PublicUser(u *User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		Phone:      u.Phone,
		Credits:    u.Credits,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// PublicUsers transforms a list of stored records, preserving order.
func PublicUsers(users []User) []UserDTO {
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, PublicUser(&users[i]))
	}
	return dtos
}

// LookupAttribute is the accessor kind used to key a single-record lookup.
type LookupAttribute string

const (
	LookupByID    LookupAttribute = "id"
	LookupByEmail LookupAttribute = "email"
	LookupByPhone LookupAttribute = "phone"
)

// ParseLookupAttribute validates an accessType path parameter.
func ParseLookupAttribute(s string) (LookupAttribute, bool) {
	switch LookupAttribute(s) {
	case LookupByID, LookupByEmail, LookupByPhone:
		return LookupAttribute(s), true
	default:
		return "", false
	}
}

// UserPatch carries the fields of a partial update. Nil fields are left
// untouched by the repository.
type UserPatch struct {
	Email        *string
	Name         *string
	Role         *Role
	IsVerified   *bool
	Phone        *Phone
	PasswordHash *string
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.Role == nil &&
		p.IsVerified == nil && p.Phone == nil && p.PasswordHash == nil
}
