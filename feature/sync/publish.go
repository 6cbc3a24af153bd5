package sync

import (
	"context"

	"cvsync/core/messaging"
	"cvsync/core/reconcile"
)

// ReportEvent is the message announced for every finished run.
type ReportEvent struct {
	ID        string          `json:"id"`
	Direction Direction       `json:"direction"`
	DryRun    bool            `json:"dry_run"`
	Cancelled bool            `json:"cancelled"`
	Totals    reconcile.Tally `json:"totals"`
	Failures  []ObjectRef     `json:"failures,omitempty"`
}

// Announcer publishes a ReportEvent per run on the direction's subject.
type Announcer struct {
	pub *messaging.Publisher
}

// NewAnnouncer creates a sink publishing through pub.
func NewAnnouncer(pub *messaging.Publisher) *Announcer {
	return &Announcer{pub: pub}
}

// Name implements Sink.
func (a *Announcer) Name() string { return "nats" }

// Handle implements Sink.
func (a *Announcer) Handle(ctx context.Context, report *Report) error {
	event := ReportEvent{
		ID:        report.ID,
		Direction: report.Direction,
		DryRun:    report.DryRun,
		Cancelled: report.Cancelled,
		Failures:  report.Objects,
	}
	if report.Summary != nil {
		event.Totals = report.Summary.Totals
	}
	return a.pub.PublishJSON(ctx, string(report.Direction), event)
}
