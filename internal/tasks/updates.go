package tasks

import (
	"fmt"

	"github.com/desertthunder/sonic57/internal/models"
)

// ProgressUpdate is one event from a long-running ingestion, sent to the CLI
// or UI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, such as the created track
}

// Phase of an ingestion.
type Phase int

const (
	Validate Phase = iota
	ResolveMedia
	ExtractMetadata
	Commit
	Import
)

func (p Phase) String() string {
	switch p {
	case Validate:
		return "validate"
	case ResolveMedia:
		return "resolve_media"
	case ExtractMetadata:
		return "extract_metadata"
	case Commit:
		return "commit"
	case Import:
		return "import"
	default:
		return ""
	}
}

func validateUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Validating %q...", title),
	}
}

func resolveUpdate(step, total int, field string, ref models.MediaRef) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveMedia,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving %s (%s: %s)...", field, ref.Kind, ref.Name()),
	}
}

func extractUpdate(format string) ProgressUpdate {
	msg := "Reading audio metadata..."
	if format != "" {
		msg = fmt.Sprintf("Reading audio metadata (%s)...", format)
	}
	return ProgressUpdate{
		Phase:   ExtractMetadata,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func commitUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Commit,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating %q in catalog...", title),
	}
}

func committedUpdate(tr *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Commit,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Created %s (ID: %s)", tr.Label(), tr.ID),
		Data:    tr,
	}
}

func importingUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Import,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Importing: %s...", step, total, title),
	}
}

func importCompletedUpdate(step, total int, tr *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Import,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (ID: %s)", step, total, tr.Label(), tr.ID),
		Data:    tr,
	}
}

func importFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Import,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
