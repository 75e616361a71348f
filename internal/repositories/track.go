package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

const trackColumns = `id, title, artist, album, duration, cover, audio_src, genre`

// TrackRepository reads and writes the tracks table.
type TrackRepository struct {
	db *sql.DB
}

// Health is the result of a database round trip.
type Health struct {
	ServerTime    time.Time
	SQLiteVersion string
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// List returns every track, newest (highest id) first.
func (r *TrackRepository) List(ctx context.Context) ([]models.TrackRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks ORDER BY id DESC`)
	if err != nil {
		return nil, storageErr("failed to query tracks", err)
	}
	defer rows.Close()

	tracks := []models.TrackRow{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("row iteration error", err)
	}

	return tracks, nil
}

// Get retrieves a single track, returning [shared.ErrTrackNotFound] when absent.
func (r *TrackRepository) Get(ctx context.Context, id int64) (*models.TrackRow, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)

	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &track, nil
}

// Create inserts a track and returns the stored row with its assigned id.
//
// Optional columns default to "" and genre to "Unknown".
func (r *TrackRepository) Create(ctx context.Context, req models.CreateTrackRequest) (*models.TrackRow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.WithDefaults()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO tracks (title, artist, album, duration, cover, audio_src, genre)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.Title, req.Artist, req.Album, req.Duration, req.Cover, req.AudioURL, req.Genre)
	if err != nil {
		return nil, storageErr("failed to insert track", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("failed to read inserted id", err)
	}

	return r.Get(ctx, id)
}

// Delete removes a track. Deleting an absent id is not an error.
// The returned bool reports whether a row was removed.
func (r *TrackRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return false, storageErr("failed to delete track", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to get affected rows", err)
	}
	return n > 0, nil
}

// Count returns the number of rows in the tracks table.
func (r *TrackRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, storageErr("failed to count tracks", err)
	}
	return n, nil
}

// Ping performs a round trip and reports the database clock and engine version.
func (r *TrackRepository) Ping(ctx context.Context) (*Health, error) {
	var (
		now     string
		version string
	)
	err := r.db.QueryRowContext(ctx, `SELECT strftime('%Y-%m-%dT%H:%M:%SZ', 'now'), sqlite_version()`).Scan(&now, &version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	ts, err := time.Parse(time.RFC3339, now)
	if err != nil {
		ts = time.Now().UTC()
	}
	return &Health{ServerTime: ts, SQLiteVersion: version}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTrack scans one row of trackColumns, mapping NULLs to empty strings.
func scanTrack(s scanner) (models.TrackRow, error) {
	var track models.TrackRow
	var album, duration, cover, audioSrc, genre sql.NullString

	err := s.Scan(&track.ID, &track.Title, &track.Artist, &album, &duration, &cover, &audioSrc, &genre)
	if errors.Is(err, sql.ErrNoRows) {
		return track, err
	}
	if err != nil {
		return track, storageErr("failed to scan track", err)
	}

	track.Album = nullString(album)
	track.Duration = nullString(duration)
	track.Cover = nullString(cover)
	track.AudioSrc = nullString(audioSrc)
	track.Genre = nullString(genre)
	return track, nil
}
