package roles

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, description, permissions, is_active, is_default, created_at, updated_at`

// Get fetches a role by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id=$1`, id)
	return scanRole(row)
}

// GetByName fetches a role by its unique name.
func (r *Repository) GetByName(ctx context.Context, name string) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name=$1`, name)
	return scanRole(row)
}

// List returns all roles ordered by name.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, role Role) (Role, error) {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return Role{}, err
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO roles (name, description, permissions, is_active, is_default, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING `+roleColumns,
		role.Name, role.Description, perms, role.IsActive, role.IsDefault)
	created, err := scanRole(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Role{}, ErrDuplicateName
		}
		return Role{}, err
	}
	return created, nil
}

// Update rewrites name, description, permissions and active flag.
func (r *Repository) Update(ctx context.Context, role Role) (Role, error) {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return Role{}, err
	}
	row := r.pool.QueryRow(ctx, `UPDATE roles SET name=$2, description=$3, permissions=$4, is_active=$5, updated_at=NOW()
WHERE id=$1 RETURNING `+roleColumns,
		role.ID, role.Name, role.Description, perms, role.IsActive)
	updated, err := scanRole(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Role{}, ErrDuplicateName
		}
		return Role{}, err
	}
	return updated, nil
}

// Delete removes a role by ID, reporting whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountUsers reports how many principals reference the role.
func (r *Repository) CountUsers(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role_id=$1`, roleID).Scan(&count)
	return count, err
}

// Seed inserts a default role unless a role with the same name exists.
// When reset is true the stored permission map is overwritten.
func (r *Repository) Seed(ctx context.Context, role Role, reset bool) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}
	if reset {
		_, err = r.pool.Exec(ctx, `INSERT INTO roles (name, description, permissions, is_active, is_default, created_at, updated_at)
VALUES ($1,$2,$3,$4,TRUE,NOW(),NOW())
ON CONFLICT (name) DO UPDATE SET description=EXCLUDED.description, permissions=EXCLUDED.permissions, is_active=EXCLUDED.is_active, is_default=TRUE, updated_at=NOW()`,
			role.Name, role.Description, perms, role.IsActive)
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO roles (name, description, permissions, is_active, is_default, created_at, updated_at)
VALUES ($1,$2,$3,$4,TRUE,NOW(),NOW())
ON CONFLICT (name) DO NOTHING`,
		role.Name, role.Description, perms, role.IsActive)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (Role, error) {
	var role Role
	var perms []byte
	err := row.Scan(&role.ID, &role.Name, &role.Description, &perms, &role.IsActive, &role.IsDefault, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &role.Permissions); err != nil {
			return Role{}, err
		}
	}
	if role.Permissions == nil {
		role.Permissions = map[string]bool{}
	}
	return role, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
