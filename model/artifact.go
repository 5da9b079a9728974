package model

import "time"

// UploadedRecording represents a raw hummed recording uploaded by a user.
// Recordings are never mutated; the reclamation sweeper removes them once
// they age past the retention window.
type UploadedRecording struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           int64     `json:"userId" gorm:"index"`
	ObjectID         string    `json:"objectId" gorm:"size:512;not null"` // blob store object key
	URL              string    `json:"url" gorm:"size:1024;not null"`
	OriginalFilename string    `json:"originalFilename" gorm:"size:255"`
	CreatedAt        time.Time `json:"createdAt" gorm:"index"`
}

// ConvertedArtifact represents one synthesis result: the notes that were
// rendered, the instrument, and the resulting blob store object. Immutable
// after creation. Unless a SavedArtifact references its object, it is
// reclaimed after the retention window.
type ConvertedArtifact struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Notes      Notes     `json:"notes" gorm:"type:json;not null"`
	Instrument string    `json:"instrument" gorm:"size:100;not null"`
	ObjectID   string    `json:"objectId" gorm:"size:512;not null;index"`
	URL        string    `json:"url" gorm:"size:1024;not null"`
	Tempo      int       `json:"tempo" gorm:"default:120"`
	Duration   float64   `json:"duration"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// SavedArtifact is a user's permanent keep of a converted artifact. It
// carries a denormalized copy of the note sequence and shares the blob
// store object with its source ConvertedArtifact. The existence of a
// SavedArtifact referencing an object id is what protects that object
// from reclamation.
type SavedArtifact struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"userId" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	Notes      Notes     `json:"notes" gorm:"type:json;not null"`
	Instrument string    `json:"instrument" gorm:"size:100;not null"`
	ObjectID   string    `json:"objectId" gorm:"size:512;not null;index"`
	URL        string    `json:"url" gorm:"size:1024;not null"`
	Tempo      int       `json:"tempo" gorm:"default:120"`
	Duration   float64   `json:"duration"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
