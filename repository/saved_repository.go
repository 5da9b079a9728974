package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Hummify/model"
)

// SavedRepository defines data operations for saved (promoted) artifacts.
type SavedRepository interface {
	CreateSaved(artifact *model.SavedArtifact) (int64, error)
	GetSavedByID(id int64) (*model.SavedArtifact, error)
	GetSavedByIDAndUser(id, userID int64) (*model.SavedArtifact, error)
	GetSavedByUserID(userID int64) ([]*model.SavedArtifact, error)
	// ExistsByObjectID reports whether any saved artifact references the
	// given blob store object. This is the sweeper's retention check.
	ExistsByObjectID(objectID string) (bool, error)
	DeleteSaved(id int64) error
}

// mysqlSavedRepository implements SavedRepository for MySQL.
type mysqlSavedRepository struct {
	DB *sql.DB
}

// NewMySQLSavedRepository creates a new instance of mysqlSavedRepository.
func NewMySQLSavedRepository(db *sql.DB) SavedRepository {
	return &mysqlSavedRepository{DB: db}
}

const savedColumns = `id, user_id, name, notes, instrument, object_id, url, tempo, duration, created_at, updated_at`

// CreateSaved persists a new saved artifact.
func (r *mysqlSavedRepository) CreateSaved(artifact *model.SavedArtifact) (int64, error) {
	query := `INSERT INTO saved_artifacts (user_id, name, notes, instrument, object_id, url, tempo, duration, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateSaved: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = now
	}
	artifact.UpdatedAt = now

	res, err := stmt.Exec(artifact.UserID, artifact.Name, artifact.Notes, artifact.Instrument,
		artifact.ObjectID, artifact.URL, artifact.Tempo, artifact.Duration, artifact.CreatedAt, artifact.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateSaved: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSaved: %w", err)
	}
	artifact.ID = id
	return id, nil
}

// GetSavedByID retrieves a saved artifact by its ID.
func (r *mysqlSavedRepository) GetSavedByID(id int64) (*model.SavedArtifact, error) {
	query := `SELECT ` + savedColumns + ` FROM saved_artifacts WHERE id = ?`
	return r.scanOne(r.DB.QueryRow(query, id), id)
}

// GetSavedByIDAndUser retrieves a saved artifact only if it belongs to the
// given user. Returns nil when the row exists but the owner differs.
func (r *mysqlSavedRepository) GetSavedByIDAndUser(id, userID int64) (*model.SavedArtifact, error) {
	query := `SELECT ` + savedColumns + ` FROM saved_artifacts WHERE id = ? AND user_id = ?`
	return r.scanOne(r.DB.QueryRow(query, id, userID), id)
}

// GetSavedByUserID retrieves all saved artifacts for a user, newest first.
func (r *mysqlSavedRepository) GetSavedByUserID(userID int64) ([]*model.SavedArtifact, error) {
	query := `SELECT ` + savedColumns + ` FROM saved_artifacts WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved artifacts for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	artifacts := make([]*model.SavedArtifact, 0)
	for rows.Next() {
		artifact := &model.SavedArtifact{}
		err := rows.Scan(&artifact.ID, &artifact.UserID, &artifact.Name, &artifact.Notes,
			&artifact.Instrument, &artifact.ObjectID, &artifact.URL, &artifact.Tempo,
			&artifact.Duration, &artifact.CreatedAt, &artifact.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved artifact row: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during saved artifact rows iteration: %w", err)
	}
	return artifacts, nil
}

// ExistsByObjectID runs a point-in-time existence check for any saved
// artifact referencing the object id.
func (r *mysqlSavedRepository) ExistsByObjectID(objectID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM saved_artifacts WHERE object_id = ?)`
	if err := r.DB.QueryRow(query, objectID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check saved artifact existence for object %s: %w", objectID, err)
	}
	return exists, nil
}

// DeleteSaved removes a saved artifact row. Deleting a missing row is a no-op.
func (r *mysqlSavedRepository) DeleteSaved(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM saved_artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteSaved for ID %d: %w", id, err)
	}
	return nil
}

func (r *mysqlSavedRepository) scanOne(row *sql.Row, id int64) (*model.SavedArtifact, error) {
	artifact := &model.SavedArtifact{}
	err := row.Scan(&artifact.ID, &artifact.UserID, &artifact.Name, &artifact.Notes,
		&artifact.Instrument, &artifact.ObjectID, &artifact.URL, &artifact.Tempo,
		&artifact.Duration, &artifact.CreatedAt, &artifact.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Saved artifact not found
		}
		return nil, fmt.Errorf("failed to scan saved artifact by ID %d: %w", id, err)
	}
	return artifact, nil
}
