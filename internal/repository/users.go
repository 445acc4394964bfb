// Package repository wraps all SQL used by the development backend and the
// worker.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fujao/internal/model"
)

// Sentinel errors shared by the Postgres and in-memory stores.
var (
	ErrNotFound       = errors.New("registro não encontrado")
	ErrDuplicateEmail = errors.New("email já cadastrado")
)

// UserRepository persists usuarios rows.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a user and fills in the assigned id.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO usuarios (nome, telefone, cpf, email, hash_senha, criado_em, atualizado_em)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, user.Nome, user.Telefone, user.CPF, user.Email, user.HashSenha, now, now)
	if err := row.Scan(&user.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByID returns a user by id.
func (r *UserRepository) UserByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, nome, telefone, cpf, email, hash_senha FROM usuarios WHERE id=$1
	`, id)
	return scanUser(row)
}

// UserByEmail returns a user by email.
func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, nome, telefone, cpf, email, hash_senha FROM usuarios WHERE email=$1
	`, email)
	return scanUser(row)
}

// UpdateUser rewrites the mutable profile fields.
func (r *UserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE usuarios SET nome=$1, telefone=$2, email=$3, hash_senha=$4, atualizado_em=$5 WHERE id=$6
	`, user.Nome, user.Telefone, user.Email, user.HashSenha, time.Now().UTC(), user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	if err := row.Scan(&user.ID, &user.Nome, &user.Telefone, &user.CPF, &user.Email, &user.HashSenha); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}
