package extract

import "fmt"

// Status is the lifecycle stage an Event reports.
type Status string

const (
	// StatusStarted is emitted when a unit of work picks up a derivation.
	StatusStarted Status = "started"
	// StatusCompleted is emitted when a derivation has been described,
	// emitted, and all of its children scheduled.
	StatusCompleted Status = "completed"
	// StatusSkipped is emitted for an occurrence whose output path was
	// already claimed by another unit of work.
	StatusSkipped Status = "skipped"
)

// Event is one progress report. Events are purely observational: they are
// delivered best-effort on a separate channel and never influence the
// result stream.
type Event struct {
	Status        Status
	WorkerID      int64
	AttributePath string
}

func (e Event) String() string {
	return fmt.Sprintf("worker %d %s %s", e.WorkerID, e.Status, e.AttributePath)
}
