package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	BuildCatalog
	PersistCatalog
	ImportComplete
	ExportSongbook
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case BuildCatalog:
		return "build_catalog"
	case PersistCatalog:
		return "persist_catalog"
	case ImportComplete:
		return "import_complete"
	case ExportSongbook:
		return "export_songbook"
	default:
		return ""
	}
}

func fetchSourceUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching catalog from %s...", name),
	}
}

func buildCatalogUpdate(records int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Building catalog from %d records...", records),
	}
}

func persistUpdate(songs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Storing %d songs...", songs),
	}
}

func importCompletedUpdate(res *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportComplete,
		Step:    res.Imported,
		Total:   res.Total,
		Message: fmt.Sprintf("Imported %d of %d records (%d skipped)", res.Imported, res.Total, len(res.Failures)),
		Data:    res,
	}
}

func exportingSongbookUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongbook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, songs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongbook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d songs)", step, total, name, songs),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongbook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
