// Package progress defines the event structures emitted by the scrape
// pipeline so that rendering stays decoupled from control flow.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart     Stage = "RUN_START"
	StageRunDone      Stage = "RUN_DONE"
	StageFetchAttempt Stage = "FETCH_ATTEMPT"
	StagePageOK       Stage = "PAGE_OK"
	StagePageError    Stage = "PAGE_ERROR"
)

// Event captures a single milestone of a batch scrape run.
type Event struct {
	// RunID uniquely identifies one batch run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle or fetch milestone occurred.
	Stage Stage
	// URL is the category page being processed, when applicable.
	URL string
	// Attempt and MaxAttempts scope FETCH_ATTEMPT events.
	Attempt     int
	MaxAttempts int
	// Heading is set on PAGE_OK with the validated category heading.
	Heading string
	// Entries carries the extracted entry count for PAGE_OK, or the total
	// category count for RUN_DONE.
	Entries int
	// Dur captures latency for page completions and whole runs.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageFetchAttempt:
		if e.URL == "" {
			return errors.New("fetch attempt requires url")
		}
		if e.Attempt < 1 || e.MaxAttempts < e.Attempt {
			return errors.New("fetch attempt counters are inconsistent")
		}
	case StagePageOK, StagePageError:
		if e.URL == "" {
			return fmt.Errorf("%s requires url", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for display.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// NewRunID generates the binary run ID for a batch run.
func NewRunID() [16]byte {
	id := uuid.New()
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
