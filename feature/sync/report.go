package sync

import (
	"fmt"
	"time"

	"cvsync/core/reconcile"
)

// Direction names which system is authoritative for a run.
type Direction string

const (
	// FromCloudVision imports devices, system tags and ports into Nautobot.
	FromCloudVision Direction = "from-cloudvision"
	// ToCloudVision pushes Nautobot tags and their assignments to CloudVision.
	ToCloudVision Direction = "to-cloudvision"
)

// Directions lists every supported direction.
func Directions() []Direction {
	return []Direction{FromCloudVision, ToCloudVision}
}

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown direction %q (want %s or %s)", s, FromCloudVision, ToCloudVision)
}

// Sides of a run, as accepted by Service.Lookup.
const (
	SideCloudVision = "cloudvision"
	SideNautobot    = "nautobot"
)

// ObjectRef is a failed change resolved to the backend object it concerns.
type ObjectRef struct {
	Type   reconcile.Type `json:"type"`
	Key    reconcile.Key  `json:"key"`
	Side   string         `json:"side"`
	Object any            `json:"object,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Report is the outcome of one run.
type Report struct {
	ID         string             `json:"id"`
	Direction  Direction          `json:"direction"`
	DryRun     bool               `json:"dry_run"`
	Cancelled  bool               `json:"cancelled"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Summary    *reconcile.Summary `json:"summary"`
	Objects    []ObjectRef        `json:"objects,omitempty"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
