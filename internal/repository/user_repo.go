package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"identity_service/internal/apperr"
	"identity_service/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// userColumns is the canonical column list; every SELECT and RETURNING uses it
// so scanUser stays in step with the schema.
const userColumns = `id, email, name, role, is_verified, phone_country_code, phone_number, credits, password_hash, provider, provider_id, is_deleted, created_at, updated_at`

// lookupColumns whitelists the columns an attribute lookup may target. Lookup
// values arrive from the URL, so the column name is never built from input.
var lookupColumns = map[model.LookupAttribute]string{
	model.LookupByID:    "id",
	model.LookupByEmail: "email",
	model.LookupByPhone: "phone_number",
}

// DB is the subset of *pgxpool.Pool the repository depends on; pgxmock
// satisfies it in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindOne(ctx context.Context, attr model.LookupAttribute, value string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

type userRepository struct {
	db      DB
	timeout time.Duration
}

// NewUserRepository creates a new UserRepository. Every statement runs under
// the given timeout so a stuck connection cannot hold a request open.
func NewUserRepository(db DB, timeout time.Duration) UserRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &userRepository{db: db, timeout: timeout}
}

// Create inserts a new user into the database. The caller assigns the id;
// created_at and updated_at come back from the database so the entity reflects
// the stored row.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sql := `INSERT INTO users (id, email, name, role, is_verified, phone_country_code, phone_number, credits, password_hash, provider, provider_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, sql,
		user.ID, user.Email, user.Name, user.Role, user.IsVerified,
		user.Phone.CountryCode, user.Phone.Number, user.Credits,
		user.PasswordHash, user.Provider, user.ProviderID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if conflict, ok := conflictFromUniqueViolation(err); ok {
			return conflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindOne retrieves an active user by a whitelisted attribute. A missing row
// is (nil, nil); the service layer decides what absence means.
func (r *userRepository) FindOne(ctx context.Context, attr model.LookupAttribute, value string) (*model.User, error) {
	column, ok := lookupColumns[attr]
	if !ok {
		return nil, fmt.Errorf("unsupported lookup attribute: %q", attr)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sql := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 AND is_deleted = FALSE`, userColumns, column)
	user, err := scanUser(r.db.QueryRow(ctx, sql, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", attr, err)
	}
	return user, nil
}

// FindAll retrieves all active users, newest first.
func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sql := fmt.Sprintf(`SELECT %s FROM users WHERE is_deleted = FALSE ORDER BY created_at DESC`, userColumns)
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.Role, &u.IsVerified,
			&u.Phone.CountryCode, &u.Phone.Number, &u.Credits,
			&u.PasswordHash, &u.Provider, &u.ProviderID,
			&u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Update applies the non-nil fields of patch to an active user and returns the
// stored row. (nil, nil) means no active user carries the id.
func (r *userRepository) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var queryBuilder strings.Builder
	queryBuilder.WriteString("UPDATE users SET updated_at = NOW()")
	args := []any{}
	argCount := 1

	if patch.Email != nil {
		queryBuilder.WriteString(fmt.Sprintf(", email = $%d", argCount))
		args = append(args, *patch.Email)
		argCount++
	}
	if patch.Name != nil {
		queryBuilder.WriteString(fmt.Sprintf(", name = $%d", argCount))
		args = append(args, *patch.Name)
		argCount++
	}
	if patch.Role != nil {
		queryBuilder.WriteString(fmt.Sprintf(", role = $%d", argCount))
		args = append(args, *patch.Role)
		argCount++
	}
	if patch.IsVerified != nil {
		queryBuilder.WriteString(fmt.Sprintf(", is_verified = $%d", argCount))
		args = append(args, *patch.IsVerified)
		argCount++
	}
	if patch.Phone != nil {
		queryBuilder.WriteString(fmt.Sprintf(", phone_country_code = $%d, phone_number = $%d", argCount, argCount+1))
		args = append(args, patch.Phone.CountryCode, patch.Phone.Number)
		argCount += 2
	}
	if patch.PasswordHash != nil {
		queryBuilder.WriteString(fmt.Sprintf(", password_hash = $%d", argCount))
		args = append(args, *patch.PasswordHash)
		argCount++
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE id = $%d AND is_deleted = FALSE RETURNING %s", argCount, userColumns))
	args = append(args, id)

	user, err := scanUser(r.db.QueryRow(ctx, queryBuilder.String(), args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		if conflict, ok := conflictFromUniqueViolation(err); ok {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// SoftDelete marks an active user deleted. The boolean reports whether a row
// changed; deleting an unknown or already-deleted id is false, not an error.
func (r *userRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sql := `UPDATE users SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.IsVerified,
		&u.Phone.CountryCode, &u.Phone.Number, &u.Credits,
		&u.PasswordHash, &u.Provider, &u.ProviderID,
		&u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// conflictFromUniqueViolation converts a unique-index violation into the same
// Conflict the proactive duplicate check raises. The partial indexes backstop
// the check-then-insert race: two concurrent creations can both pass the
// lookup, but only one row commits.
func conflictFromUniqueViolation(err error) (*apperr.Error, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil, false
	}
	if strings.Contains(pgErr.ConstraintName, "phone") {
		return apperr.Conflict("User with this phone number already exists"), true
	}
	return apperr.Conflict("User with this email already exists"), true
}
