package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/td-airways/flightdesk/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	SetPassword(ctx context.Context, id, hash string) error
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]domain.User, error)
}

const userColumns = `id, first_name, last_name, email, password_hash, phone_no, role,
	is_active, is_verified, created_at, updated_at`

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.PhoneNo, &u.Role,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.QueryRow(ctx, `INSERT INTO users
		(id, first_name, last_name, email, password_hash, phone_no, role, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8)
		RETURNING created_at, updated_at`,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.PhoneNo, user.Role, user.IsVerified).
		Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	return scanUser(row)
}

func (r *PGUserRepository) MarkVerified(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET is_verified=true, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update applies a typed partial update: only non-nil fields are written.
// Password holds the bcrypt hash here.
func (r *PGUserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	set := ""
	args := []any{}
	add := func(col string, val any) {
		args = append(args, val)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s=$%d", col, len(args))
	}

	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.PhoneNo != nil {
		add("phone_no", *upd.PhoneNo)
	}
	if upd.Password != nil {
		add("password_hash", *upd.Password)
	}
	if set == "" {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	row := r.db.QueryRow(ctx, fmt.Sprintf(`UPDATE users SET %s, updated_at=now() WHERE id=$%d RETURNING %s`,
		set, len(args), userColumns), args...)
	return scanUser(row)
}

func (r *PGUserRepository) SetPassword(ctx context.Context, id, hash string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1, updated_at=now() WHERE id=$2`, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate retires the account. The row is kept so the email stays claimed.
func (r *PGUserRepository) Deactivate(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET is_active=false, is_verified=false, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGUserRepository) ListActive(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE is_active=true AND is_verified=true ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

var _ UserRepository = (*PGUserRepository)(nil)
