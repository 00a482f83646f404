package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/dbx"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation  = "23505"
	pgInvalidTextRepr  = "22P02"
	publicColumns      = `id, username, email, full_name, avatar, cover_image, created_at, updated_at`
	withSecretsColumns = publicColumns + `, password_hash, refresh_token`
)

// PostgresRepository is a Repository over the users table.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a repository running its queries on db,
// which may be a *sql.DB or a *sql.Tx.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser reads one row of publicColumns, followed by the secret columns
// when withSecrets is set.
func scanUser(row rowScanner, withSecrets bool) (*models.User, error) {
	u := &models.User{}
	dest := []any{&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &u.CoverImageURL, &u.CreatedAt, &u.UpdatedAt}

	var refresh sql.NullString
	if withSecrets {
		dest = append(dest, &u.PasswordHash, &refresh)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	u.RefreshToken = refresh.String

	return u, nil
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return common.ErrorConflict
		case pgInvalidTextRepr:
			// malformed uuid: no such account
			return common.ErrorNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// FindByUsernameOrEmail prefers a username match over an email match when
// the two identify different accounts.
func (r *PostgresRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	query :=
		`SELECT ` + withSecretsColumns + ` FROM users
		 WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		 ORDER BY ($1 <> '' AND username = $1) DESC
		 LIMIT 1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, username, email), true)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// Create inserts user. A unique violation on username or email is
// reported as common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, full_name, avatar, cover_image, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`

	c := *user
	err := r.db.QueryRowContext(ctx, query,
		c.Username, c.Email, c.FullName, c.AvatarURL, c.CoverImageURL, c.PasswordHash,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	return &c, nil
}

// FindByID loads the account with the given UUID. A malformed id is
// reported as not found.
func (r *PostgresRepository) FindByID(ctx context.Context, id string, excludeSecrets bool) (*models.User, error) {
	cols := withSecretsColumns
	if excludeSecrets {
		cols = publicColumns
	}
	query := `SELECT ` + cols + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id), !excludeSecrets)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// UpdateRefreshToken stores token, or NULL when token is empty.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	query :=
		`UPDATE users SET refresh_token = NULLIF($2, ''), updated_at = now()
		 WHERE id = $1
		 RETURNING ` + publicColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, token), false)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// UpdatePasswordHash replaces the hash and bumps updated_at.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
