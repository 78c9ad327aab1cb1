package database

import (
	"time"

	"github.com/gametrack/gametrack/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for session records
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Count returns the number of session records ever written. Sequence
// numbers are derived from it at append time.
func (r *Repository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&models.SessionRecord{}).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count session records")
	}
	return count, nil
}

// Append inserts a completed session record. The table is append-only;
// nothing in this program updates or deletes rows.
func (r *Repository) Append(record *models.SessionRecord) error {
	result := r.db.Create(record)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to append session record")
	}
	return nil
}

// GetAllRecords retrieves the full session history in sequence order.
// Used once at startup to seed the running total.
func (r *Repository) GetAllRecords() ([]models.SessionRecord, error) {
	var records []models.SessionRecord
	result := r.db.Order("sequence ASC").Find(&records)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query session records")
	}
	return records, nil
}

// GetRecordsSince retrieves records whose start is at or after the given
// time. The wire timestamp format sorts lexicographically, so a string
// comparison is enough.
func (r *Repository) GetRecordsSince(since time.Time) ([]models.SessionRecord, error) {
	var records []models.SessionRecord
	result := r.db.Where("start >= ?", models.FormatTime(since)).Order("sequence ASC").Find(&records)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query session records")
	}
	return records, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all session records from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM session_records")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear session records")
	}
	return nil
}
