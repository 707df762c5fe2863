// internal/adapters/out/db/user_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	dbcommon "storefront/internal/adapters/out/db/common"
	userdom "storefront/internal/domain/user"
)

type UserRepositoryPG struct {
	DB *sql.DB
}

func NewUserRepositoryPG(db *sql.DB) *UserRepositoryPG {
	return &UserRepositoryPG{DB: db}
}

const userColumns = `
  id, username, email, first_name, last_name, password_hash,
  is_staff, is_active, date_joined, last_login`

func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (userdom.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, strings.TrimSpace(id))
}

func (r *UserRepositoryPG) GetByUsername(ctx context.Context, username string) (userdom.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+` FROM users WHERE username = $1`, strings.TrimSpace(username))
}

func (r *UserRepositoryPG) getOne(ctx context.Context, q string, arg string) (userdom.User, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	u, err := scanUser(run.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return userdom.User{}, userdom.ErrNotFound
		}
		return userdom.User{}, err
	}
	return u, nil
}

func (r *UserRepositoryPG) ExistsUsername(ctx context.Context, username, excludeID string) (bool, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	n, err := dbcommon.QueryCount(ctx, run,
		`SELECT COUNT(*) FROM users WHERE username = $1 AND id <> $2`,
		strings.TrimSpace(username), strings.TrimSpace(excludeID))
	return n > 0, err
}

func (r *UserRepositoryPG) ExistsEmail(ctx context.Context, email, excludeID string) (bool, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	n, err := dbcommon.QueryCount(ctx, run,
		`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2`,
		strings.TrimSpace(email), strings.TrimSpace(excludeID))
	return n > 0, err
}

func (r *UserRepositoryPG) Create(ctx context.Context, u userdom.User) (userdom.User, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
INSERT INTO users (
  id, username, email, first_name, last_name, password_hash,
  is_staff, is_active, date_joined, last_login
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING` + userColumns
	out, err := scanUser(run.QueryRowContext(ctx, q,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsStaff, u.IsActive, u.DateJoined.UTC(), dbcommon.ToDBTime(u.LastLogin),
	))
	if err != nil {
		return userdom.User{}, userUniqueErr(err)
	}
	return out, nil
}

func (r *UserRepositoryPG) Save(ctx context.Context, u userdom.User) (userdom.User, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
UPDATE users SET
  username = $2, email = $3, first_name = $4, last_name = $5, password_hash = $6,
  is_staff = $7, is_active = $8, last_login = $9
WHERE id = $1
RETURNING` + userColumns
	out, err := scanUser(run.QueryRowContext(ctx, q,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsStaff, u.IsActive, dbcommon.ToDBTime(u.LastLogin),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return userdom.User{}, userdom.ErrNotFound
		}
		return userdom.User{}, userUniqueErr(err)
	}
	return out, nil
}

func userUniqueErr(err error) error {
	if !dbcommon.IsUniqueViolation(err) {
		return err
	}
	if strings.Contains(dbcommon.ConstraintName(err), "email") {
		return userdom.ErrEmailTaken
	}
	return userdom.ErrUsernameTaken
}

func scanUser(s dbcommon.RowScanner) (userdom.User, error) {
	var (
		u         userdom.User
		lastLogin sql.NullTime
	)
	if err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsStaff, &u.IsActive, &u.DateJoined, &lastLogin,
	); err != nil {
		return userdom.User{}, err
	}
	u.DateJoined = u.DateJoined.UTC()
	u.LastLogin = dbcommon.FromNullTime(lastLogin)
	return u, nil
}
