// Package users implements the user-record store on PostgreSQL.
package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/dbx"
	"github.com/socialride/identity/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

const userColumns = `id, first_name, last_name, email, prefix, phone, avatar, gender,
	 birth_date, passenger_rate, driver_rate, is_driver, vehicles, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var vehicles []byte
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.Prefix, &user.Phone, &user.Avatar, &user.Gender, &user.BirthDate,
		&user.PassengerRate, &user.DriverRate, &user.IsDriver, &vehicles, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(vehicles) > 0 {
		if err := json.Unmarshal(vehicles, &user.Vehicles); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", common.ErrStoreFailure, err)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return user, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, *models.Credential, error) {
	query := `SELECT u.id, u.first_name, u.last_name, u.email, u.prefix, u.phone, u.avatar, u.gender,
	 u.birth_date, u.passenger_rate, u.driver_rate, u.is_driver, u.vehicles, u.created_at,
	 c.username, c.salt, c.hash
	 FROM users u JOIN credentials c ON c.user_id = u.id
	 WHERE c.username = $1`

	user := &models.User{}
	cred := &models.Credential{}
	var vehicles []byte
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.Prefix, &user.Phone, &user.Avatar, &user.Gender, &user.BirthDate,
		&user.PassengerRate, &user.DriverRate, &user.IsDriver, &vehicles, &user.CreatedAt,
		&cred.Username, &cred.Salt, &cred.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, storeErr(err)
	}
	if len(vehicles) > 0 {
		if err := json.Unmarshal(vehicles, &user.Vehicles); err != nil {
			return nil, nil, storeErr(err)
		}
	}
	cred.UserID = user.ID
	return user, cred, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, user *models.User, cred *models.Credential) (*models.User, error) {
	vehicles, err := json.Marshal(vehiclesOrEmpty(user.Vehicles))
	if err != nil {
		return nil, storeErr(err)
	}

	query :=
		`INSERT INTO users (id, first_name, last_name, email, prefix, phone, avatar, gender,
		 birth_date, passenger_rate, driver_rate, is_driver, vehicles)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Prefix, user.Phone,
		user.Avatar, user.Gender, user.BirthDate, user.PassengerRate, user.DriverRate,
		user.IsDriver, vehicles).Scan(&user.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}

	if cred != nil {
		query :=
			`INSERT INTO credentials (user_id, username, salt, hash)
			 VALUES ($1, $2, $3, $4)`

		if _, err := r.db.ExecContext(ctx, query, user.ID, cred.Username, cred.Salt, cred.Hash); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return nil, common.ErrUsernameTaken
			}
			return nil, storeErr(err)
		}
	}

	return user, nil
}

// Upsert performs the find-or-create-and-merge in a single statement so two
// concurrent logins for the same new identity cannot race. Non-empty
// incoming fields win; empty ones keep the stored value.
func (r *PostgresRepository) Upsert(ctx context.Context, ext models.ExternalIdentity) (*models.User, error) {
	query :=
		`INSERT INTO users (id, first_name, last_name, email, prefix, phone, avatar)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		 	first_name = CASE WHEN EXCLUDED.first_name <> '' THEN EXCLUDED.first_name ELSE users.first_name END,
		 	last_name  = CASE WHEN EXCLUDED.last_name  <> '' THEN EXCLUDED.last_name  ELSE users.last_name  END,
		 	email      = CASE WHEN EXCLUDED.email      <> '' THEN EXCLUDED.email      ELSE users.email      END,
		 	prefix     = CASE WHEN EXCLUDED.prefix     <> '' THEN EXCLUDED.prefix     ELSE users.prefix     END,
		 	phone      = CASE WHEN EXCLUDED.phone      <> '' THEN EXCLUDED.phone      ELSE users.phone      END,
		 	avatar     = CASE WHEN EXCLUDED.avatar     <> '' THEN EXCLUDED.avatar     ELSE users.avatar     END
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		ext.ID, ext.FirstName, ext.LastName, ext.Email, ext.Prefix, ext.Phone, ext.Avatar))
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	vehicles, err := json.Marshal(vehiclesOrEmpty(user.Vehicles))
	if err != nil {
		return nil, storeErr(err)
	}

	query :=
		`UPDATE users SET first_name = $2, last_name = $3, email = $4, prefix = $5,
		 phone = $6, avatar = $7, gender = $8, birth_date = $9, passenger_rate = $10,
		 driver_rate = $11, is_driver = $12, vehicles = $13
		 WHERE id = $1
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Prefix, user.Phone,
		user.Avatar, user.Gender, user.BirthDate, user.PassengerRate, user.DriverRate,
		user.IsDriver, vehicles).Scan(&user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return user, nil
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM credentials WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, storeErr(err)
	}
	return exists, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return storeErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return result, nil
}

func vehiclesOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
