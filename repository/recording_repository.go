package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Hummify/model"
)

// RecordingRepository defines data operations for uploaded hum recordings.
type RecordingRepository interface {
	CreateRecording(rec *model.UploadedRecording) (int64, error)
	GetRecordingByID(id int64) (*model.UploadedRecording, error)
	GetRecordingsByUserID(userID int64) ([]*model.UploadedRecording, error)
	GetRecordingsOlderThan(cutoff time.Time) ([]*model.UploadedRecording, error)
	DeleteRecording(id int64) error
}

// mysqlRecordingRepository implements RecordingRepository for MySQL.
type mysqlRecordingRepository struct {
	DB *sql.DB
}

// NewMySQLRecordingRepository creates a new instance of mysqlRecordingRepository.
func NewMySQLRecordingRepository(db *sql.DB) RecordingRepository {
	return &mysqlRecordingRepository{DB: db}
}

const recordingColumns = `id, user_id, object_id, url, original_filename, created_at`

// CreateRecording adds a new uploaded recording to the database.
func (r *mysqlRecordingRepository) CreateRecording(rec *model.UploadedRecording) (int64, error) {
	query := `INSERT INTO uploaded_recordings (user_id, object_id, url, original_filename, created_at)
	           VALUES (?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateRecording: %w", err)
	}
	defer stmt.Close()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := stmt.Exec(rec.UserID, rec.ObjectID, rec.URL, rec.OriginalFilename, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateRecording: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateRecording: %w", err)
	}
	rec.ID = id
	return id, nil
}

// GetRecordingByID retrieves a recording by its ID.
func (r *mysqlRecordingRepository) GetRecordingByID(id int64) (*model.UploadedRecording, error) {
	query := `SELECT ` + recordingColumns + ` FROM uploaded_recordings WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	rec := &model.UploadedRecording{}
	err := row.Scan(&rec.ID, &rec.UserID, &rec.ObjectID, &rec.URL, &rec.OriginalFilename, &rec.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Recording not found
		}
		return nil, fmt.Errorf("failed to scan recording by ID %d: %w", id, err)
	}
	return rec, nil
}

// GetRecordingsByUserID retrieves all recordings uploaded by a user, newest first.
func (r *mysqlRecordingRepository) GetRecordingsByUserID(userID int64) ([]*model.UploadedRecording, error) {
	query := `SELECT ` + recordingColumns + ` FROM uploaded_recordings WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	return scanRecordings(rows)
}

// GetRecordingsOlderThan retrieves recordings created before the cutoff,
// used by the reclamation sweeper.
func (r *mysqlRecordingRepository) GetRecordingsOlderThan(cutoff time.Time) ([]*model.UploadedRecording, error) {
	query := `SELECT ` + recordingColumns + ` FROM uploaded_recordings WHERE created_at < ?`
	rows, err := r.DB.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings older than %s: %w", cutoff, err)
	}
	defer rows.Close()

	return scanRecordings(rows)
}

// DeleteRecording removes a recording row. Deleting a missing row is a no-op.
func (r *mysqlRecordingRepository) DeleteRecording(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM uploaded_recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteRecording for ID %d: %w", id, err)
	}
	return nil
}

func scanRecordings(rows *sql.Rows) ([]*model.UploadedRecording, error) {
	recordings := make([]*model.UploadedRecording, 0)
	for rows.Next() {
		rec := &model.UploadedRecording{}
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.ObjectID, &rec.URL, &rec.OriginalFilename, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording row: %w", err)
		}
		recordings = append(recordings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during recording rows iteration: %w", err)
	}
	return recordings, nil
}
