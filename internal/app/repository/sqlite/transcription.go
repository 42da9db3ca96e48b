package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"media-transcriber/internal/app/errors"
	"media-transcriber/internal/app/model"
	"media-transcriber/internal/app/repository"
)

var _ repository.TranscriptionDAO = (*SQLiteDB)(nil)

const selectColumns = `id, file_name, file_path, file_hash, file_size, audio_duration, model_used,
	language, transcription, confidence, processing_time_ms, from_cache, has_error,
	error_message, created_at`

type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB wraps an open connection whose schema is already in place.
func NewSQLiteDB(db *sql.DB) *SQLiteDB {
	return &SQLiteDB{db: db}
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) Record(ctx context.Context, r *model.TranscriptionRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	insertSQL := `INSERT INTO transcriptions (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := sdb.db.ExecContext(ctx, insertSQL,
		r.ID, r.FileName, r.FilePath, r.FileHash, r.FileSize, r.AudioDuration, r.ModelUsed,
		r.Language, r.Transcription, r.Confidence, r.ProcessingTimeMs, r.FromCache, r.HasError,
		r.ErrorMessage, r.CreatedAt)
	if err != nil {
		return errors.Wrapf(errors.ErrInsertFailed, "failed to insert transcription: %v", err)
	}
	return nil
}

func (sdb *SQLiteDB) GetByFileHash(ctx context.Context, fileHash string) (*model.TranscriptionRecord, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE file_hash = ? AND has_error = 0
		ORDER BY created_at DESC
		LIMIT 1`

	r, err := scanRecord(sdb.db.QueryRowContext(ctx, query, fileHash))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrQueryFailed, "%v", err)
	}
	return r, nil
}

func (sdb *SQLiteDB) List(ctx context.Context, limit int) ([]model.TranscriptionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := sdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrQueryFailed, "%v", err)
	}
	defer rows.Close()

	records := make([]model.TranscriptionRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrQueryFailed, "db scan failed: %v", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrQueryFailed, "%v", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*model.TranscriptionRecord, error) {
	var r model.TranscriptionRecord
	err := row.Scan(&r.ID, &r.FileName, &r.FilePath, &r.FileHash, &r.FileSize, &r.AudioDuration, &r.ModelUsed,
		&r.Language, &r.Transcription, &r.Confidence, &r.ProcessingTimeMs, &r.FromCache, &r.HasError,
		&r.ErrorMessage, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
