package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code raised when an insert collides
// with a unique index.
const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL. The unique
// index on users.email is the authority for the one-user-per-email
// invariant.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ExistsByEmail reports whether a user row exists for the email.
func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateUser inserts a new user, returning ErrEmailTaken when the email
// unique index rejects the row.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) (User, error) {
	const query = `
		INSERT INTO users (id, email, display_name, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.ProviderID,
		user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}

	return user, nil
}

// FindUserByEmail looks up a user by email; nil means not found.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, display_name, provider_id, created_at
		FROM users
		WHERE email = $1
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toUser(), nil
}

// UpsertProfileImage writes the profile image URL, inserting the profile row
// on first use.
func (r *PostgresRepository) UpsertProfileImage(ctx context.Context, userID uuid.UUID, imageURL string) error {
	const query = `
		INSERT INTO profiles (id, user_id, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET image_url = EXCLUDED.image_url
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, imageURL)
	return err
}

// userRow is a database row representation of User.
type userRow struct {
	ID          uuid.UUID `db:"id"`
	Email       string    `db:"email"`
	DisplayName string    `db:"display_name"`
	ProviderID  int64     `db:"provider_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *userRow) toUser() *User {
	return &User{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		ProviderID:  r.ProviderID,
		CreatedAt:   r.CreatedAt,
	}
}
