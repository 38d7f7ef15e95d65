package service

import (
	"context"
	"fmt"

	"identity_service/internal/apperr"
	"identity_service/internal/cache"
	"identity_service/internal/model"
	"identity_service/internal/repository"
	"identity_service/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache keys. The list entry and the per-id entries are invalidated together
// on every write so reads never serve a stale roster.
const (
	cacheKeyAllUsers = "users:all"
	cacheKeyUserByID = "users:id:"
)

func userCacheKey(id string) string { return cacheKeyUserByID + id }

// CreatedUser pairs the sanitized user with the token issued at sign-up.
// Federated accounts carry an empty token; they authenticate with their
// provider, not with a password exchanged here.
type CreatedUser struct {
	User  model.UserDTO `json:"user"`
	Token string        `json:"token"`
}

// UserService provides user identity operations
type UserService interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*CreatedUser, error)
	GetUserByAttribute(ctx context.Context, attr model.LookupAttribute, value string) (*model.UserDTO, error)
	GetAllUsers(ctx context.Context) ([]model.UserDTO, error)
	UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (*model.UserDTO, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
	hasher   *utils.PasswordHasher
	jwtUtil  *utils.JWTUtil
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, hasher *utils.PasswordHasher, jwtUtil *utils.JWTUtil, c *cache.Cache, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		jwtUtil:  jwtUtil,
		cache:    c,
		logger:   logger,
	}
}

// CreateUser registers a new account. Duplicate email and phone are checked
// up front; the partial unique indexes catch the race the checks cannot, and
// the repository reports that as the same Conflict.
func (s *userService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*CreatedUser, error) {
	existing, err := s.userRepo.FindOne(ctx, model.LookupByEmail, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	}

	existing, err = s.userRepo.FindOne(ctx, model.LookupByPhone, req.Phone.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing phone: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this phone number already exists")
	}

	cred, err := req.Credential()
	if err != nil {
		return nil, apperr.Validation([]string{err.Error()})
	}

	user := &model.User{
		ID:         uuid.NewString(),
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		IsVerified: *req.IsVerified,
		Phone:      req.Phone.Phone(),
		Credits:    model.DefaultCredits,
	}

	switch c := cred.(type) {
	case model.LocalCredential:
		hash, err := s.hasher.Hash(ctx, c.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = &hash
	case model.FederatedCredential:
		provider, providerID := c.Provider, c.ProviderID
		user.Provider = &provider
		user.ProviderID = &providerID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	var token string
	if !user.IsFederated() {
		token, err = s.jwtUtil.GenerateToken(user.ID)
		if err != nil {
			// The account exists at this point; report the failure instead of
			// pretending the sign-up did not happen.
			s.logger.Error("user created but token issuance failed",
				zap.String("userId", user.ID), zap.Error(err))
			return nil, fmt.Errorf("user created, but failed to generate token: %w", err)
		}
	}

	s.invalidate(ctx, user.ID)

	s.logger.Info("user created",
		zap.String("userId", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("federated", user.IsFederated()))

	return &CreatedUser{User: model.PublicUser(user), Token: token}, nil
}

// GetUserByAttribute resolves a single active user by id, email, or phone
// number. (nil, nil) means no match; absence is the caller's call, not an
// error. Id lookups go through the read cache.
func (s *userService) GetUserByAttribute(ctx context.Context, attr model.LookupAttribute, value string) (*model.UserDTO, error) {
	if attr == model.LookupByID {
		var cached model.UserDTO
		if hit, err := s.cache.Get(ctx, userCacheKey(value), &cached); err != nil {
			s.logger.Warn("cache read failed", zap.String("key", userCacheKey(value)), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindOne(ctx, attr, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by %s: %w", attr, err)
	}
	if user == nil {
		return nil, nil // Not found
	}

	dto := model.PublicUser(user)
	if attr == model.LookupByID {
		if err := s.cache.Set(ctx, userCacheKey(value), dto); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", userCacheKey(value)), zap.Error(err))
		}
	}
	return &dto, nil
}

// GetAllUsers lists every active user, newest first.
func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserDTO, error) {
	var cached []model.UserDTO
	if hit, err := s.cache.Get(ctx, cacheKeyAllUsers, &cached); err != nil {
		s.logger.Warn("cache read failed", zap.String("key", cacheKeyAllUsers), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := model.PublicUsers(users)
	if err := s.cache.Set(ctx, cacheKeyAllUsers, dtos); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", cacheKeyAllUsers), zap.Error(err))
	}
	return dtos, nil
}

// UpdateUser applies a partial update to an active user. (nil, nil) means the
// id resolves to no active record. Password changes are refused on federated
// accounts; the new password is hashed before it goes anywhere near storage.
func (s *userService) UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (*model.UserDTO, error) {
	user, err := s.userRepo.FindOne(ctx, model.LookupByID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for update: %w", err)
	}
	if user == nil {
		return nil, nil // Not found
	}

	patch := model.UserPatch{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		IsVerified: req.IsVerified,
	}
	if req.Phone != nil {
		phone := req.Phone.Phone()
		patch.Phone = &phone
	}
	if req.Password != nil {
		if user.IsFederated() {
			return nil, apperr.Validation([]string{"password cannot be set on a federated account"})
		}
		hash, err := s.hasher.Hash(ctx, *req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		dto := model.PublicUser(user)
		return &dto, nil // Nothing to change
	}

	updated, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if updated == nil {
		return nil, nil // Deleted between the load and the write
	}

	s.invalidate(ctx, id)

	dto := model.PublicUser(updated)
	return &dto, nil
}

// DeleteUser soft-deletes a user. False means the id resolved to no active
// record, including a repeat of an earlier delete; both are normal outcomes.
func (s *userService) DeleteUser(ctx context.Context, id string) (bool, error) {
	deleted, err := s.userRepo.SoftDelete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	if deleted {
		s.invalidate(ctx, id)
		s.logger.Info("user deleted", zap.String("userId", id))
	}
	return deleted, nil
}

// invalidate drops the list entry plus the per-id entries. Cache trouble is
// logged and otherwise ignored; Postgres stays the source of truth.
func (s *userService) invalidate(ctx context.Context, ids ...string) {
	keys := []string{cacheKeyAllUsers}
	for _, id := range ids {
		keys = append(keys, userCacheKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
