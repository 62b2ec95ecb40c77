package rating

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type RatePayload struct {
	RecordID   string  `json:"record_id" validate:"required"`
	PhotoURL   string  `json:"photo_url" validate:"required,http_url"`
	SchoolName *string `json:"school_name"`
}

type RateResponse struct {
	RecordID        string   `json:"record_id"`
	CropGuess       string   `json:"crop_guess"`
	Stage           string   `json:"stage"`
	HealthScore     float64  `json:"health_score"`
	Recommendations []string `json:"recommendations"`
	Note            string   `json:"note,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Table  string `json:"table"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Rating is one row of the rating history.
type Rating struct {
	ID                  uuid.UUID      `db:"id"`
	RecordID            string         `db:"record_id"`
	SchoolName          sql.NullString `db:"school_name"`
	PhotoURL            string         `db:"photo_url"`
	ArchiveURL          sql.NullString `db:"archive_url"`
	CropGuess           string         `db:"crop_guess"`
	Stage               string         `db:"stage"`
	HealthScore         float64        `db:"health_score"`
	GreenFraction       float64        `db:"green_fraction"`
	YellowBrownFraction float64        `db:"yellow_brown_fraction"`
	EdgeDensity         float64        `db:"edge_density"`
	Recommendations     string         `db:"recommendations"`
	CreatedAt           time.Time      `db:"created_at"`
}

type CreateRatingParams struct {
	ID                  uuid.UUID
	RecordID            string
	SchoolName          sql.NullString
	PhotoURL            string
	ArchiveURL          sql.NullString
	CropGuess           string
	Stage               string
	HealthScore         float64
	GreenFraction       float64
	YellowBrownFraction float64
	EdgeDensity         float64
	Recommendations     string
}

type RatingHistoryResponse struct {
	ID                  uuid.UUID `json:"id"`
	RecordID            string    `json:"record_id"`
	SchoolName          string    `json:"school_name,omitempty"`
	PhotoURL            string    `json:"photo_url"`
	ArchiveURL          string    `json:"archive_url,omitempty"`
	CropGuess           string    `json:"crop_guess"`
	Stage               string    `json:"stage"`
	HealthScore         float64   `json:"health_score"`
	GreenFraction       float64   `json:"green_fraction"`
	YellowBrownFraction float64   `json:"yellow_brown_fraction"`
	EdgeDensity         float64   `json:"edge_density"`
	Recommendations     []string  `json:"recommendations"`
	CreatedAt           time.Time `json:"created_at"`
}
