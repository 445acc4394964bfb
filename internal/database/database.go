// Package database owns the Postgres connection pool and the in-code schema
// for the development backend.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}

// EnsureSchema creates the tables if needed. Keeping the migration in code
// makes the dev backend self-contained.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS usuarios (
	id BIGSERIAL PRIMARY KEY,
	nome TEXT NOT NULL,
	telefone TEXT NOT NULL,
	cpf TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	hash_senha TEXT NOT NULL,
	criado_em TIMESTAMPTZ NOT NULL,
	atualizado_em TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS animais (
	id BIGSERIAL PRIMARY KEY,
	nome TEXT NOT NULL,
	especie TEXT NOT NULL,
	raca TEXT,
	tamanho TEXT,
	cor TEXT,
	descricao TEXT,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	perdido BOOLEAN NOT NULL,
	usuario_id BIGINT NOT NULL REFERENCES usuarios(id),
	imagem_base64 TEXT,
	imagem_objeto TEXT,
	criado_em TIMESTAMPTZ NOT NULL,
	atualizado_em TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_animais_perdido ON animais(perdido);
CREATE TABLE IF NOT EXISTS animais_encontrados (
	id BIGSERIAL PRIMARY KEY,
	especie TEXT NOT NULL,
	raca TEXT,
	cor TEXT,
	descricao TEXT,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	usuario_id BIGINT NOT NULL REFERENCES usuarios(id),
	imagem_base64 TEXT,
	criado_em TIMESTAMPTZ NOT NULL
);`
	_, err := pool.Exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
