package pipeline

import "ncaam/ingestion/internal/models"

// Kind tags the result of fetching one identifier.
type Kind int

const (
	// KindComplete carries rows to write.
	KindComplete Kind = iota
	// KindIncomplete is skipped silently, e.g. a game not yet played.
	KindIncomplete
	// KindAbsent is an expected upstream 404, counted apart from errors.
	KindAbsent
	// KindFailed is logged to the error sink and counted.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindComplete:
		return "complete"
	case KindIncomplete:
		return "incomplete"
	case KindAbsent:
		return "absent"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result for one identifier.
type Outcome struct {
	ID    string
	Kind  Kind
	Batch models.Batch
	Err   error
}

// Complete wraps the rows produced for id.
func Complete(id string, batch models.Batch) Outcome {
	return Outcome{ID: id, Kind: KindComplete, Batch: batch}
}

// Incomplete marks id as not ready yet.
func Incomplete(id string) Outcome {
	return Outcome{ID: id, Kind: KindIncomplete}
}

// Absent marks id as having nothing upstream.
func Absent(id string) Outcome {
	return Outcome{ID: id, Kind: KindAbsent}
}

// Failed records why id could not be fetched.
func Failed(id string, err error) Outcome {
	return Outcome{ID: id, Kind: KindFailed, Err: err}
}
