package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// ImportRepository keeps the history of catalog imports.
type ImportRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new ImportRepository with the given database connection
func NewImportRepository(db *sql.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// Start records a run that has begun but not finished.
func (r *ImportRepository) Start(run *models.ImportRun) error {
	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err := r.db.Exec(
		`INSERT INTO imports (id, source, imported, failed, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID(), run.Source(), run.Imported(), run.Failed(), run.StartedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import: %w", err)
	}
	return nil
}

// Finish stores the counts and completion time of a run started with [ImportRepository.Start].
func (r *ImportRepository) Finish(run *models.ImportRun) error {
	if !run.Done() {
		return fmt.Errorf("import %s has not completed", run.ID())
	}

	result, err := r.db.Exec(
		`UPDATE imports SET imported = ?, failed = ?, completed_at = ? WHERE id = ?`,
		run.Imported(), run.Failed(), *run.CompletedAt(), run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update import: %w", err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	} else if rows == 0 {
		return fmt.Errorf("import not found: %s", run.ID())
	}
	return nil
}

// Latest returns the most recently started run.
func (r *ImportRepository) Latest() (*models.ImportRun, error) {
	var (
		id          string
		source      string
		imported    int
		failed      int
		startedAt   time.Time
		completedAt sql.NullTime
	)

	err := r.db.QueryRow(
		`SELECT id, source, imported, failed, started_at, completed_at FROM imports ORDER BY started_at DESC LIMIT 1`,
	).Scan(&id, &source, &imported, &failed, &startedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no imports recorded")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan import: %w", err)
	}

	run := models.NewImportRun(source)
	run.SetID(id)
	run.SetStartedAt(startedAt)
	run.SetCounts(imported, failed)
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	return run, nil
}
