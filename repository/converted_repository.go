package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Hummify/model"
)

// ConvertedRepository defines data operations for converted artifacts.
type ConvertedRepository interface {
	CreateConverted(artifact *model.ConvertedArtifact) (int64, error)
	GetConvertedByID(id int64) (*model.ConvertedArtifact, error)
	GetConvertedOlderThan(cutoff time.Time) ([]*model.ConvertedArtifact, error)
	DeleteConverted(id int64) error
}

// mysqlConvertedRepository implements ConvertedRepository for MySQL.
type mysqlConvertedRepository struct {
	DB *sql.DB
}

// NewMySQLConvertedRepository creates a new instance of mysqlConvertedRepository.
func NewMySQLConvertedRepository(db *sql.DB) ConvertedRepository {
	return &mysqlConvertedRepository{DB: db}
}

const convertedColumns = `id, notes, instrument, object_id, url, tempo, duration, created_at`

// CreateConverted persists a new converted artifact. The row is immutable
// after this insert; re-conversion always creates a fresh row.
func (r *mysqlConvertedRepository) CreateConverted(artifact *model.ConvertedArtifact) (int64, error) {
	query := `INSERT INTO converted_artifacts (notes, instrument, object_id, url, tempo, duration, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateConverted: %w", err)
	}
	defer stmt.Close()

	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now()
	}
	res, err := stmt.Exec(artifact.Notes, artifact.Instrument, artifact.ObjectID, artifact.URL,
		artifact.Tempo, artifact.Duration, artifact.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateConverted: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateConverted: %w", err)
	}
	artifact.ID = id
	return id, nil
}

// GetConvertedByID retrieves a converted artifact by its ID.
func (r *mysqlConvertedRepository) GetConvertedByID(id int64) (*model.ConvertedArtifact, error) {
	query := `SELECT ` + convertedColumns + ` FROM converted_artifacts WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	artifact := &model.ConvertedArtifact{}
	err := row.Scan(&artifact.ID, &artifact.Notes, &artifact.Instrument, &artifact.ObjectID,
		&artifact.URL, &artifact.Tempo, &artifact.Duration, &artifact.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Artifact not found (possibly already reclaimed)
		}
		return nil, fmt.Errorf("failed to scan converted artifact by ID %d: %w", id, err)
	}
	return artifact, nil
}

// GetConvertedOlderThan retrieves converted artifacts created before the
// cutoff, used by the reclamation sweeper.
func (r *mysqlConvertedRepository) GetConvertedOlderThan(cutoff time.Time) ([]*model.ConvertedArtifact, error) {
	query := `SELECT ` + convertedColumns + ` FROM converted_artifacts WHERE created_at < ?`
	rows, err := r.DB.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query converted artifacts older than %s: %w", cutoff, err)
	}
	defer rows.Close()

	artifacts := make([]*model.ConvertedArtifact, 0)
	for rows.Next() {
		artifact := &model.ConvertedArtifact{}
		err := rows.Scan(&artifact.ID, &artifact.Notes, &artifact.Instrument, &artifact.ObjectID,
			&artifact.URL, &artifact.Tempo, &artifact.Duration, &artifact.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan converted artifact row: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during converted artifact rows iteration: %w", err)
	}
	return artifacts, nil
}

// DeleteConverted removes a converted artifact row. Deleting a missing row
// is a no-op.
func (r *mysqlConvertedRepository) DeleteConverted(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM converted_artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteConverted for ID %d: %w", id, err)
	}
	return nil
}
