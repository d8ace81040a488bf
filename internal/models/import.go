package models

import (
	"errors"
	"time"
)

// ImportRun records one catalog import: where it came from and how many records made it in.
type ImportRun struct {
	id          string
	source      string
	imported    int
	failed      int
	startedAt   time.Time
	completedAt *time.Time
}

var _ Model = (*ImportRun)(nil)

// NewImportRun starts a run for the named source.
func NewImportRun(source string) *ImportRun {
	return &ImportRun{source: source, startedAt: time.Now()}
}

func (r *ImportRun) ID() string              { return r.id }
func (r *ImportRun) Source() string          { return r.source }
func (r *ImportRun) Imported() int           { return r.imported }
func (r *ImportRun) Failed() int             { return r.failed }
func (r *ImportRun) StartedAt() time.Time    { return r.startedAt }
func (r *ImportRun) CompletedAt() *time.Time { return r.completedAt }
func (r *ImportRun) CreatedAt() time.Time    { return r.startedAt }

// UpdatedAt is the completion time once the run has finished.
func (r *ImportRun) UpdatedAt() time.Time {
	if r.completedAt != nil {
		return *r.completedAt
	}
	return r.startedAt
}

func (r *ImportRun) SetID(id string)             { r.id = id }
func (r *ImportRun) SetStartedAt(t time.Time)    { r.startedAt = t }
func (r *ImportRun) SetCompletedAt(t *time.Time) { r.completedAt = t }

// Complete stamps the run as finished with the given counts.
func (r *ImportRun) Complete(imported, failed int) {
	now := time.Now()
	r.imported = imported
	r.failed = failed
	r.completedAt = &now
}

// Done reports whether [ImportRun.Complete] has been called.
func (r *ImportRun) Done() bool { return r.completedAt != nil }

// SetCounts restores stored counts without touching completion.
func (r *ImportRun) SetCounts(imported, failed int) {
	r.imported = imported
	r.failed = failed
}

func (r *ImportRun) Validate() error {
	switch {
	case r.source == "":
		return errors.New("import source is required")
	case r.imported < 0 || r.failed < 0:
		return errors.New("import counts must not be negative")
	}
	return nil
}
