package rating

import (
	"context"
	"database/sql"
)

type InterfaceRepository interface {
	CreateRating(ctx context.Context, arg CreateRatingParams) (Rating, error)
	GetRatingsByRecordID(ctx context.Context, recordID string) ([]Rating, error)
}

type Repository struct {
	Conn *sql.DB
}

func NewRatingRepository(conn *sql.DB) *Repository {
	return &Repository{Conn: conn}
}

const ratingColumns = `id, record_id, school_name, photo_url, archive_url, crop_guess, stage,
	health_score, green_fraction, yellow_brown_fraction, edge_density, recommendations, created_at`

const createRating = `INSERT INTO ratings (
	id, record_id, school_name, photo_url, archive_url, crop_guess, stage,
	health_score, green_fraction, yellow_brown_fraction, edge_density, recommendations
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + ratingColumns

const getRatingsByRecordID = `SELECT ` + ratingColumns + `
FROM ratings
WHERE record_id = $1
ORDER BY created_at DESC`

func (r *Repository) CreateRating(ctx context.Context, arg CreateRatingParams) (Rating, error) {
	row := r.Conn.QueryRowContext(ctx, createRating,
		arg.ID,
		arg.RecordID,
		arg.SchoolName,
		arg.PhotoURL,
		arg.ArchiveURL,
		arg.CropGuess,
		arg.Stage,
		arg.HealthScore,
		arg.GreenFraction,
		arg.YellowBrownFraction,
		arg.EdgeDensity,
		arg.Recommendations,
	)
	return scanRating(row)
}

func (r *Repository) GetRatingsByRecordID(ctx context.Context, recordID string) ([]Rating, error) {
	rows, err := r.Conn.QueryContext(ctx, getRatingsByRecordID, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Rating
	for rows.Next() {
		i, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRating(row scanner) (Rating, error) {
	var i Rating
	err := row.Scan(
		&i.ID,
		&i.RecordID,
		&i.SchoolName,
		&i.PhotoURL,
		&i.ArchiveURL,
		&i.CropGuess,
		&i.Stage,
		&i.HealthScore,
		&i.GreenFraction,
		&i.YellowBrownFraction,
		&i.EdgeDensity,
		&i.Recommendations,
		&i.CreatedAt,
	)
	return i, err
}
