package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fujao/internal/model"
)

// AnimalRepository persists animais rows.
type AnimalRepository struct {
	pool *pgxpool.Pool
}

// NewAnimalRepository constructs a repository.
func NewAnimalRepository(pool *pgxpool.Pool) *AnimalRepository {
	return &AnimalRepository{pool: pool}
}

const animalColumns = `id, nome, especie, raca, tamanho, cor, descricao, latitude, longitude, perdido, usuario_id, imagem_base64, imagem_objeto`

// CreateAnimal inserts a report and fills in the assigned id.
func (r *AnimalRepository) CreateAnimal(ctx context.Context, animal *model.Animal) error {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO animais (nome, especie, raca, tamanho, cor, descricao, latitude, longitude, perdido, usuario_id, imagem_base64, criado_em, atualizado_em)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`, animal.Nome, animal.Especie, animal.Raca, animal.Tamanho, animal.Cor, animal.Descricao,
		animal.Latitude, animal.Longitude, animal.Perdido, animal.UsuarioID, animal.ImagemBase64, now, now)
	if err := row.Scan(&animal.ID); err != nil {
		return fmt.Errorf("insert animal: %w", err)
	}
	return nil
}

// ListAnimals returns every animal, newest first.
func (r *AnimalRepository) ListAnimals(ctx context.Context) ([]model.Animal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+animalColumns+` FROM animais ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select animals: %w", err)
	}
	defer rows.Close()

	animals := []model.Animal{}
	for rows.Next() {
		animal, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		animals = append(animals, *animal)
	}
	return animals, rows.Err()
}

// AnimalByID returns one animal.
func (r *AnimalRepository) AnimalByID(ctx context.Context, id int64) (*model.Animal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+animalColumns+` FROM animais WHERE id=$1`, id)
	return scanAnimal(row)
}

// UpdateAnimal replaces the mutable fields of a record.
func (r *AnimalRepository) UpdateAnimal(ctx context.Context, animal *model.Animal) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE animais
		SET nome=$1, especie=$2, raca=$3, tamanho=$4, cor=$5, descricao=$6,
			latitude=$7, longitude=$8, perdido=$9, usuario_id=$10, imagem_base64=$11, atualizado_em=$12
		WHERE id=$13
	`, animal.Nome, animal.Especie, animal.Raca, animal.Tamanho, animal.Cor, animal.Descricao,
		animal.Latitude, animal.Longitude, animal.Perdido, animal.UsuarioID, animal.ImagemBase64,
		time.Now().UTC(), animal.ID)
	if err != nil {
		return fmt.Errorf("update animal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetImageObject records where the worker archived the report photo.
func (r *AnimalRepository) SetImageObject(ctx context.Context, id int64, objectKey string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE animais SET imagem_objeto=$1, atualizado_em=$2 WHERE id=$3
	`, objectKey, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set image object: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnimal(row pgx.Row) (*model.Animal, error) {
	var animal model.Animal
	err := row.Scan(&animal.ID, &animal.Nome, &animal.Especie, &animal.Raca, &animal.Tamanho,
		&animal.Cor, &animal.Descricao, &animal.Latitude, &animal.Longitude, &animal.Perdido,
		&animal.UsuarioID, &animal.ImagemBase64, &animal.ImagemObjeto)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select animal: %w", err)
	}
	return &animal, nil
}

// FoundAnimalRepository persists animais_encontrados rows.
type FoundAnimalRepository struct {
	pool *pgxpool.Pool
}

// NewFoundAnimalRepository constructs a repository.
func NewFoundAnimalRepository(pool *pgxpool.Pool) *FoundAnimalRepository {
	return &FoundAnimalRepository{pool: pool}
}

// CreateFoundAnimal inserts a sighting and fills in the assigned id.
func (r *FoundAnimalRepository) CreateFoundAnimal(ctx context.Context, found *model.FoundAnimal) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO animais_encontrados (especie, raca, cor, descricao, latitude, longitude, usuario_id, imagem_base64, criado_em)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, found.Especie, found.Raca, found.Cor, found.Descricao, found.Latitude, found.Longitude,
		found.UsuarioID, found.ImagemBase64, time.Now().UTC())
	if err := row.Scan(&found.ID); err != nil {
		return fmt.Errorf("insert found animal: %w", err)
	}
	return nil
}

// ListFoundAnimals returns every sighting, newest first.
func (r *FoundAnimalRepository) ListFoundAnimals(ctx context.Context) ([]model.FoundAnimal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, especie, raca, cor, descricao, latitude, longitude, usuario_id, imagem_base64
		FROM animais_encontrados ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select found animals: %w", err)
	}
	defer rows.Close()

	found := []model.FoundAnimal{}
	for rows.Next() {
		var f model.FoundAnimal
		if err := rows.Scan(&f.ID, &f.Especie, &f.Raca, &f.Cor, &f.Descricao, &f.Latitude,
			&f.Longitude, &f.UsuarioID, &f.ImagemBase64); err != nil {
			return nil, fmt.Errorf("scan found animal: %w", err)
		}
		found = append(found, f)
	}
	return found, rows.Err()
}
