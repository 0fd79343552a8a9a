package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ch4uTR/TarimKocum/types"
)

// PlantRepository handles persistence for diagnosis records.
type PlantRepository struct {
	db *sql.DB
}

func NewPlantRepository(db *sql.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

func (r *PlantRepository) Create(ctx context.Context, plant types.Plant) (types.Plant, error) {
	plant.CreatedAt = time.Now()

	const query = `
		INSERT INTO plants (file_path, predicted_disease, disease_description, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		plant.FilePath,
		plant.PredictedDisease,
		plant.DiseaseDescription,
		plant.OwnerID,
		plant.CreatedAt,
	).Scan(&plant.ID); err != nil {
		return types.Plant{}, err
	}
	return plant, nil
}

// GetByIDAndOwner returns one record. Ownership is part of the lookup
// predicate: a record owned by someone else reads as ErrNotFound.
func (r *PlantRepository) GetByIDAndOwner(ctx context.Context, id, ownerID int) (types.Plant, error) {
	const query = `
		SELECT id, file_path, predicted_disease, disease_description, owner_id, created_at
		FROM plants
		WHERE id = $1 AND owner_id = $2`
	var plant types.Plant
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&plant.ID,
		&plant.FilePath,
		&plant.PredictedDisease,
		&description,
		&plant.OwnerID,
		&plant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Plant{}, ErrNotFound
		}
		return types.Plant{}, err
	}
	plant.DiseaseDescription = description.String
	return plant, nil
}

// ListByOwner returns all diagnosis records owned by the given user.
func (r *PlantRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.Plant, error) {
	const query = `
		SELECT id, file_path, predicted_disease, disease_description, owner_id, created_at
		FROM plants
		WHERE owner_id = $1`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plants := []types.Plant{}
	for rows.Next() {
		var plant types.Plant
		var description sql.NullString
		if err := rows.Scan(
			&plant.ID,
			&plant.FilePath,
			&plant.PredictedDisease,
			&description,
			&plant.OwnerID,
			&plant.CreatedAt,
		); err != nil {
			return nil, err
		}
		plant.DiseaseDescription = description.String
		plants = append(plants, plant)
	}
	return plants, rows.Err()
}
