package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/music"
	"github.com/desertthunder/songbook/internal/shared"
)

const songColumns = `id, sequence, title, artist, song_key, month_added, year_added, start_melody, language,
	tempo, capo, range_low, range_high, content, created_at, updated_at, deleted_at`

// SongRepository implements models.Repository[*models.PersistedSong] for the song catalog.
//
// Songbook membership lives in song_songbooks and is rewritten with the song on every write.
type SongRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedSong] = (*SongRepository)(nil)

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new [models.PersistedSong] with a fresh sequence. An ID is generated unless the song already has one.
func (r *SongRepository) Create(song *models.PersistedSong) error {
	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	song.SetSequence(sequence)

	if song.ID() == "" {
		song.SetID(shared.GenerateID())
	}

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertSong(tx, song); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`

	song, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	books, err := r.songbooks(id)
	if err != nil {
		return nil, err
	}
	song.SetSong(song.Song().WithSongbooks(books...))

	return song, nil
}

// Update modifies an existing song and replaces its songbook membership
func (r *SongRepository) Update(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)
	s := song.Song()
	low, high := rangeColumns(s.Range)

	query := `
		UPDATE songs
		SET title = ?, artist = ?, song_key = ?, month_added = ?, year_added = ?, start_melody = ?, language = ?,
			tempo = ?, capo = ?, range_low = ?, range_high = ?, content = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(query,
		s.Title, s.Artist, int(s.Key), s.DateAdded.Month, s.DateAdded.Year, s.StartMelody, s.Language,
		s.Tempo, s.Capo, low, high, s.Content, now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrSongNotFound, song.ID())
	}

	if err := writeSongbooks(tx, song.ID(), s.Songbooks); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrSongNotFound, id)
	}

	return nil
}

// List retrieves all songs matching the given criteria in sequence order, excluding soft-deleted songs.
//
// Supported criteria: "language" (string) and "songbook" (string).
func (r *SongRepository) List(criteria map[string]any) ([]*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	args := []any{}

	if language, ok := criteria["language"].(string); ok && language != "" {
		query += " AND language = ?"
		args = append(args, language)
	}

	if songbook, ok := criteria["songbook"].(string); ok && songbook != "" {
		query += " AND id IN (SELECT song_id FROM song_songbooks WHERE songbook = ?)"
		args = append(args, songbook)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.PersistedSong
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	// Membership is loaded after the cursor is released so a single-connection pool cannot deadlock.
	books, err := r.allSongbooks()
	if err != nil {
		return nil, err
	}
	for _, song := range songs {
		song.SetSong(song.Song().WithSongbooks(books[song.ID()]...))
	}

	return songs, nil
}

// Songs returns every stored song as a plain record, in sequence order.
func (r *SongRepository) Songs() ([]models.Song, error) {
	persisted, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(persisted))
	for _, p := range persisted {
		songs = append(songs, p.Song())
	}
	return songs, nil
}

// ReplaceAll removes the current catalog, including soft-deleted rows, and inserts songs in one transaction.
//
// Either every song is stored or the previous catalog stays untouched. Songs keep their document IDs;
// the rest get generated ones.
func (r *SongRepository) ReplaceAll(songs []models.Song) ([]*models.PersistedSong, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM song_songbooks`); err != nil {
		return nil, fmt.Errorf("failed to clear songbooks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM songs`); err != nil {
		return nil, fmt.Errorf("failed to clear songs: %w", err)
	}

	var start int
	if err := tx.QueryRow(`SELECT value FROM songs_sequence WHERE id = 1`).Scan(&start); err != nil {
		return nil, fmt.Errorf("failed to get sequence value: %w", err)
	}

	stored := make([]*models.PersistedSong, 0, len(songs))
	for i, s := range songs {
		p := models.NewPersistedSong(start+i+1, s)
		if p.ID() == "" {
			p.SetID(shared.GenerateID())
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("song %d (%s): validation failed: %w", i, s.Title, err)
		}
		if err := insertSong(tx, p); err != nil {
			return nil, fmt.Errorf("song %d (%s): %w", i, s.Title, err)
		}
		stored = append(stored, p)
	}

	if _, err := tx.Exec(`UPDATE songs_sequence SET value = ? WHERE id = 1`, start+len(songs)); err != nil {
		return nil, fmt.Errorf("failed to advance sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit catalog: %w", err)
	}
	return stored, nil
}

// Count returns the number of songs that are not soft-deleted.
func (r *SongRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM songs WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

func insertSong(tx *sql.Tx, song *models.PersistedSong) error {
	s := song.Song()
	low, high := rangeColumns(s.Range)

	query := `
		INSERT INTO songs (id, sequence, title, artist, song_key, month_added, year_added, start_melody, language,
			tempo, capo, range_low, range_high, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query,
		song.ID(), song.Sequence(),
		s.Title, s.Artist, int(s.Key), s.DateAdded.Month, s.DateAdded.Year, s.StartMelody, s.Language,
		s.Tempo, s.Capo, low, high, s.Content,
		song.CreatedAt(), song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return writeSongbooks(tx, song.ID(), s.Songbooks)
}

func writeSongbooks(tx *sql.Tx, id string, books []string) error {
	if _, err := tx.Exec(`DELETE FROM song_songbooks WHERE song_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear songbooks: %w", err)
	}
	for _, book := range books {
		if _, err := tx.Exec(`INSERT INTO song_songbooks (song_id, songbook) VALUES (?, ?)`, id, book); err != nil {
			return fmt.Errorf("failed to insert songbook %q: %w", book, err)
		}
	}
	return nil
}

func (r *SongRepository) songbooks(id string) ([]string, error) {
	rows, err := r.db.Query(`SELECT songbook FROM song_songbooks WHERE song_id = ? ORDER BY songbook`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query songbooks: %w", err)
	}
	defer rows.Close()

	var books []string
	for rows.Next() {
		var book string
		if err := rows.Scan(&book); err != nil {
			return nil, fmt.Errorf("failed to scan songbook: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *SongRepository) allSongbooks() (map[string][]string, error) {
	rows, err := r.db.Query(`SELECT song_id, songbook FROM song_songbooks ORDER BY song_id, songbook`)
	if err != nil {
		return nil, fmt.Errorf("failed to query songbooks: %w", err)
	}
	defer rows.Close()

	books := make(map[string][]string)
	for rows.Next() {
		var id, book string
		if err := rows.Scan(&id, &book); err != nil {
			return nil, fmt.Errorf("failed to scan songbook: %w", err)
		}
		books[id] = append(books[id], book)
	}
	return books, rows.Err()
}

func rangeColumns(vr *music.VocalRange) (any, any) {
	if vr == nil {
		return nil, nil
	}
	return vr.Low, vr.High
}

type scanner interface {
	Scan(dest ...any) error
}

// scanOne scans a single [sql.Row] into a [models.PersistedSong]
func (r *SongRepository) scanOne(row *sql.Row) (*models.PersistedSong, error) {
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSongNotFound
	}
	return song, err
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedSong]
func (r *SongRepository) scanRow(rows *sql.Rows) (*models.PersistedSong, error) {
	return scanSong(rows)
}

func scanSong(s scanner) (*models.PersistedSong, error) {
	var (
		id          string
		sequence    int
		title       string
		artist      string
		key         int
		month       int
		year        int
		startMelody string
		language    string
		tempo       int
		capo        int
		rangeLow    sql.NullInt64
		rangeHigh   sql.NullInt64
		content     string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &title, &artist, &key, &month, &year, &startMelody, &language,
		&tempo, &capo, &rangeLow, &rangeHigh, &content, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	dto := models.Song{
		ID:          id,
		Title:       title,
		Artist:      artist,
		Key:         music.Key(key),
		DateAdded:   models.DateAdded{Month: month, Year: year},
		StartMelody: startMelody,
		Language:    language,
		Tempo:       tempo,
		Capo:        capo,
		Content:     content,
	}
	if rangeLow.Valid && rangeHigh.Valid {
		if vr, ok := music.NewVocalRange(int(rangeLow.Int64), int(rangeHigh.Int64)); ok {
			dto.Range = vr
		}
	}

	song := models.NewPersistedSong(sequence, dto)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}
