package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"member_portal/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already registered")
)

// DB is the subset of pgx used by the repositories.
// *pgxpool.Pool and pgxmock pools both satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	IncrementCounter(ctx context.Context, id int, action model.Action) (int64, error)
	GrantAdmin(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

// counterColumns whitelists the column updated for each action.
var counterColumns = map[model.Action]string{
	model.ActionLogin:        "login_count",
	model.ActionLogout:       "logout_count",
	model.ActionSignup:       "signup_count",
	model.ActionMembersView:  "members_view_count",
	model.ActionAdminView:    "admin_view_count",
	model.ActionAPICall:      "api_call_count",
	model.ActionRoleUpdate:   "role_update_count",
	model.ActionUserDeletion: "user_deletion_count",
}

const userColumns = `id, username, email, password_hash, is_admin,
       login_count, logout_count, signup_count, members_view_count,
       admin_view_count, api_call_count, role_update_count, user_deletion_count,
       created_at`

type userRepository struct {
	db DB
}

// NewUserRepository creates a Postgres-backed UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin,
		&u.Usage.Logins, &u.Usage.Logouts, &u.Usage.Signups, &u.Usage.MembersViews,
		&u.Usage.AdminViews, &u.Usage.APICalls, &u.Usage.RoleUpdates, &u.Usage.Deletions,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user. Uniqueness of email and username is enforced
// by the table constraints, so concurrent signups cannot both succeed.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (username, email, password_hash, is_admin)
            VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, user.Username, user.Email, user.PasswordHash, user.IsAdmin).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return ErrDuplicateUsername
			}
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error for finders, the service layer decides
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", where, err)
	}
	return user, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByEmail retrieves a user by email (case-sensitive, as stored)
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

// FindByUsername retrieves a user by username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", username)
}

// List returns every user ordered by ID
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// IncrementCounter atomically adds one to the action's counter and returns
// the new value.
func (r *userRepository) IncrementCounter(ctx context.Context, id int, action model.Action) (int64, error) {
	column, ok := counterColumns[action]
	if !ok {
		return 0, fmt.Errorf("unknown action %q", action)
	}

	sql := fmt.Sprintf(`UPDATE users SET %[1]s = %[1]s + 1 WHERE id = $1 RETURNING %[1]s`, column)
	var value int64
	if err := r.db.QueryRow(ctx, sql, id).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return value, nil
}

// GrantAdmin sets the admin flag of a single user
func (r *userRepository) GrantAdmin(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_admin = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single user
func (r *userRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
