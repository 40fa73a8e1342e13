package tasks

import (
	"fmt"
)

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
	SeedLoaded Phase = iota
	ImportCategories
	ImportEntries
	InvalidateCache
	ExportCategory
)

func (p Phase) String() string {
	switch p {
	case SeedLoaded:
		return "seed_loaded"
	case ImportCategories:
		return "import_categories"
	case ImportEntries:
		return "import_entries"
	case InvalidateCache:
		return "invalidate_cache"
	case ExportCategory:
		return "export_category"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func seedLoadedUpdate(categories, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SeedLoaded,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded seed: %d categories, %d entries", categories, entries),
	}
}

func categoryUpdate(step, total int, name string, created bool) ProgressUpdate {
	verb := "exists"
	if created {
		verb = "created"
	}
	return ProgressUpdate{
		Phase:   ImportCategories,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Category %s: %s", step, total, verb, name),
	}
}

func entryImportedUpdate(step, total int, title string, versions int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportEntries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d versions)", step, total, title, versions),
	}
}

func entryFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportEntries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func invalidatedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   InvalidateCache,
		Step:    1,
		Total:   1,
		Message: "Catalog cache invalidated",
	}
}

func exportingCategoryUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d entries)", step, total, name, entries),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
